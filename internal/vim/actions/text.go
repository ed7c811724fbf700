package actions

import (
	"unicode"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/document"
)

type charClass uint8

const (
	classSpace charClass = iota
	classWord
	classPunct
)

func classOf(r rune) charClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	default:
		return classPunct
	}
}

func lineRunes(doc document.Document, line int) []rune {
	return []rune(doc.LineText(line))
}

// nextWordStart returns the start of the next word after p. An empty line
// counts as a word. Past the last word it returns the end of the document.
func nextWordStart(doc document.Document, p cursor.Position) cursor.Position {
	line, col := p.Line, p.Column
	runes := lineRunes(doc, line)
	if col < len(runes) {
		c := classOf(runes[col])
		for c != classSpace && col < len(runes) && classOf(runes[col]) == c {
			col++
		}
	}
	for {
		for col < len(runes) && classOf(runes[col]) == classSpace {
			col++
		}
		if col < len(runes) {
			return cursor.Pos(line, col)
		}
		if line+1 >= doc.LineCount() {
			return doc.LineEnd(line)
		}
		line++
		col = 0
		runes = lineRunes(doc, line)
		if len(runes) == 0 {
			return cursor.Pos(line, 0)
		}
	}
}

// prevWordStart returns the start of the word before p.
func prevWordStart(doc document.Document, p cursor.Position) cursor.Position {
	line := p.Line
	runes := lineRunes(doc, line)
	col := min(p.Column, len(runes))
	for {
		for col > 0 && classOf(runes[col-1]) == classSpace {
			col--
		}
		if col > 0 {
			break
		}
		if line == 0 {
			return cursor.Pos(0, 0)
		}
		line--
		runes = lineRunes(doc, line)
		col = len(runes)
		if col == 0 {
			return cursor.Pos(line, 0)
		}
	}
	c := classOf(runes[col-1])
	for col > 0 && classOf(runes[col-1]) == c {
		col--
	}
	return cursor.Pos(line, col)
}

// nextWordEnd returns the last character of the word ending after p.
func nextWordEnd(doc document.Document, p cursor.Position) cursor.Position {
	line, col := p.Line, p.Column+1
	runes := lineRunes(doc, line)
	for {
		for col < len(runes) && classOf(runes[col]) == classSpace {
			col++
		}
		if col < len(runes) {
			break
		}
		if line+1 >= doc.LineCount() {
			return cursor.Pos(line, max(len(runes)-1, 0))
		}
		line++
		col = 0
		runes = lineRunes(doc, line)
	}
	c := classOf(runes[col])
	for col+1 < len(runes) && classOf(runes[col+1]) == c {
		col++
	}
	return cursor.Pos(line, col)
}

// firstNonBlank returns the first non-whitespace character of a line, or
// its end when the line is blank.
func firstNonBlank(doc document.Document, line int) cursor.Position {
	runes := lineRunes(doc, line)
	for i, r := range runes {
		if !unicode.IsSpace(r) {
			return cursor.Pos(line, i)
		}
	}
	return cursor.Pos(line, len(runes))
}

// findChar finds the count-th occurrence of ch on p's line, searching
// forward or backward. With till the result stops one short of the match.
func findChar(doc document.Document, p cursor.Position, ch string, count int, forward, till bool) (cursor.Position, bool) {
	target := []rune(ch)
	if len(target) != 1 {
		return p, false
	}
	runes := lineRunes(doc, p.Line)
	col := p.Column
	for n := 0; n < count; n++ {
		found := false
		if forward {
			for i := col + 1; i < len(runes); i++ {
				if runes[i] == target[0] {
					col, found = i, true
					break
				}
			}
		} else {
			for i := col - 1; i >= 0; i-- {
				if runes[i] == target[0] {
					col, found = i, true
					break
				}
			}
		}
		if !found {
			return p, false
		}
	}
	if till {
		if forward {
			col--
		} else {
			col++
		}
	}
	return cursor.Pos(p.Line, col), true
}

// findText finds the next literal occurrence of pattern after (or before)
// from, wrapping around the document.
func findText(doc document.Document, from cursor.Position, pattern string, forward bool) (cursor.Position, bool) {
	needle := []rune(pattern)
	if len(needle) == 0 {
		return from, false
	}

	var matches []cursor.Position
	for line := 0; line < doc.LineCount(); line++ {
		runes := lineRunes(doc, line)
		for col := 0; col+len(needle) <= len(runes); col++ {
			if string(runes[col:col+len(needle)]) == pattern {
				matches = append(matches, cursor.Pos(line, col))
			}
		}
	}
	if len(matches) == 0 {
		return from, false
	}

	if forward {
		for _, m := range matches {
			if m.After(from) {
				return m, true
			}
		}
		return matches[0], true
	}
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i].Before(from) {
			return matches[i], true
		}
	}
	return matches[len(matches)-1], true
}

// rightThroughLineBreak returns the position after p, moving onto the next
// line when p is already at or past the end of its line.
func rightThroughLineBreak(doc document.Document, p cursor.Position) cursor.Position {
	if p.Column < doc.LineLength(p.Line) {
		return p.Right()
	}
	if p.Line+1 < doc.LineCount() {
		return cursor.Pos(p.Line+1, 0)
	}
	return doc.LineEnd(p.Line)
}

var surroundPairs = map[string][2]rune{
	"(": {'(', ')'}, ")": {'(', ')'}, "b": {'(', ')'},
	"[": {'[', ']'}, "]": {'[', ']'},
	"{": {'{', '}'}, "}": {'{', '}'}, "B": {'{', '}'},
	"<": {'<', '>'}, ">": {'<', '>'},
	`"`: {'"', '"'}, "'": {'\'', '\''}, "`": {'`', '`'},
}

// findSurround locates the pair named by ch around p on p's line.
func findSurround(doc document.Document, p cursor.Position, ch string) (openPos, closePos cursor.Position, ok bool) {
	pair, known := surroundPairs[ch]
	if !known {
		return p, p, false
	}
	runes := lineRunes(doc, p.Line)
	col := min(p.Column, len(runes)-1)
	if col < 0 {
		return p, p, false
	}

	openIdx := -1
	if pair[0] == pair[1] {
		for i := col; i >= 0; i-- {
			if runes[i] == pair[0] {
				openIdx = i
				break
			}
		}
	} else {
		depth := 0
		for i := col; i >= 0; i-- {
			switch {
			case runes[i] == pair[1] && i != col:
				depth++
			case runes[i] == pair[0]:
				if depth == 0 {
					openIdx = i
				} else {
					depth--
				}
			}
			if openIdx >= 0 {
				break
			}
		}
	}
	if openIdx < 0 {
		return p, p, false
	}

	depth := 0
	for i := openIdx + 1; i < len(runes); i++ {
		switch {
		case runes[i] == pair[1] && depth == 0:
			return cursor.Pos(p.Line, openIdx), cursor.Pos(p.Line, i), true
		case runes[i] == pair[1]:
			depth--
		case runes[i] == pair[0] && pair[0] != pair[1]:
			depth++
		}
	}
	return p, p, false
}
