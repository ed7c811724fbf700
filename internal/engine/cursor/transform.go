package cursor

import "strings"

// Edit describes replacing the text between Start and End with NewText.
// Start and End are in document order.
type Edit struct {
	Start   Position
	End     Position
	NewText string
}

// EndOfInsert returns the position just after NewText once the edit is applied.
func (e Edit) EndOfInsert() Position {
	lines := strings.Count(e.NewText, "\n")
	if lines == 0 {
		return Position{Line: e.Start.Line, Column: e.Start.Column + len([]rune(e.NewText))}
	}
	tail := e.NewText[strings.LastIndex(e.NewText, "\n")+1:]
	return Position{Line: e.Start.Line + lines, Column: len([]rune(tail))}
}

// TransformPosition updates a position after an edit.
//
// Transformation rules:
//   - Position before the edit start: unchanged
//   - Position at or after the edit end: shifted by the edit's delta
//   - Position inside the replaced text: moved to the end of the new text
func TransformPosition(p Position, e Edit) Position {
	if p.Before(e.Start) || (p == e.Start && e.Start != e.End) {
		return p
	}
	if p.Before(e.End) {
		return e.EndOfInsert()
	}

	insertEnd := e.EndOfInsert()
	if p.Line == e.End.Line {
		return Position{Line: insertEnd.Line, Column: insertEnd.Column + (p.Column - e.End.Column)}
	}
	return Position{Line: p.Line + (insertEnd.Line - e.End.Line), Column: p.Column}
}

// TransformRange updates a cursor after an edit. Both ends move independently.
func TransformRange(r Range, e Edit) Range {
	return Range{Start: TransformPosition(r.Start, e), Stop: TransformPosition(r.Stop, e)}
}
