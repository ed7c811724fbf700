package document

import (
	"strings"

	"github.com/dshills/modalcore/internal/engine/cursor"
)

// Document is the read-only accessor the modal core uses to interpret
// positions against the current document.
type Document interface {
	// LineCount returns the number of lines; an empty document has one line.
	LineCount() int

	// LineText returns the text of a line without its line break.
	LineText(line int) string

	// LineLength returns the number of characters on a line.
	LineLength(line int) int

	// CharAt returns the character at p, or false past line end.
	CharAt(p cursor.Position) (rune, bool)

	// Clamp moves p onto a valid position: line in [0, LineCount), column in
	// [0, LineLength(line)].
	Clamp(p cursor.Position) cursor.Position

	// LineEnd returns the position just past the last character of a line.
	LineEnd(line int) cursor.Position

	// DocumentEnd returns the end of the last line.
	DocumentEnd() cursor.Position

	// TextRange returns the text between two positions in document order.
	TextRange(start, end cursor.Position) string

	// Text returns the full document content.
	Text() string
}

// lines implements Document over a slice of line strings.
type lines []string

func (l lines) LineCount() int {
	return len(l)
}

func (l lines) LineText(line int) string {
	if line < 0 || line >= len(l) {
		return ""
	}
	return l[line]
}

func (l lines) LineLength(line int) int {
	return len([]rune(l.LineText(line)))
}

func (l lines) CharAt(p cursor.Position) (rune, bool) {
	runes := []rune(l.LineText(p.Line))
	if p.Line < 0 || p.Line >= len(l) || p.Column < 0 || p.Column >= len(runes) {
		return 0, false
	}
	return runes[p.Column], true
}

func (l lines) Clamp(p cursor.Position) cursor.Position {
	line := min(max(p.Line, 0), len(l)-1)
	column := min(max(p.Column, 0), l.LineLength(line))
	return cursor.Pos(line, column)
}

func (l lines) LineEnd(line int) cursor.Position {
	line = min(max(line, 0), len(l)-1)
	return cursor.Pos(line, l.LineLength(line))
}

func (l lines) DocumentEnd() cursor.Position {
	return l.LineEnd(len(l) - 1)
}

func (l lines) TextRange(start, end cursor.Position) string {
	if end.Before(start) {
		start, end = end, start
	}
	start, end = l.Clamp(start), l.Clamp(end)

	if start.Line == end.Line {
		runes := []rune(l[start.Line])
		return string(runes[start.Column:end.Column])
	}

	var sb strings.Builder
	sb.WriteString(string([]rune(l[start.Line])[start.Column:]))
	for line := start.Line + 1; line < end.Line; line++ {
		sb.WriteByte('\n')
		sb.WriteString(l[line])
	}
	sb.WriteByte('\n')
	sb.WriteString(string([]rune(l[end.Line])[:end.Column]))
	return sb.String()
}

func (l lines) Text() string {
	return strings.Join(l, "\n")
}

// splitLines splits text into lines, normalizing line endings to LF.
func splitLines(text string) lines {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
