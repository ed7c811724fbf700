package cursor

import "fmt"

// Position is a zero-based line and column in a document snapshot.
// A Position never owns document content; whether it is valid depends on the
// snapshot it is interpreted against.
type Position struct {
	Line   int
	Column int
}

// Pos is shorthand for constructing a Position.
func Pos(line, column int) Position {
	return Position{Line: line, Column: column}
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// Equals returns true if both positions are identical.
func (p Position) Equals(other Position) bool {
	return p == other
}

// BeforeOrEqual returns true if p comes before or at other.
func (p Position) BeforeOrEqual(other Position) bool {
	return p.Compare(other) <= 0
}

// WithColumn returns a copy of p on the same line at the given column.
func (p Position) WithColumn(column int) Position {
	return Position{Line: p.Line, Column: column}
}

// Translate returns p moved by the given line and column deltas.
// Negative results are clamped to zero.
func (p Position) Translate(lines, columns int) Position {
	return Position{Line: max(p.Line+lines, 0), Column: max(p.Column+columns, 0)}
}

// Left returns the position one column to the left, stopping at column 0.
func (p Position) Left() Position {
	return p.Translate(0, -1)
}

// Right returns the position one column to the right.
// It does not know about line lengths; callers clamp against a document.
func (p Position) Right() Position {
	return p.Translate(0, 1)
}

// Min returns the earlier of two positions.
func Min(a, b Position) Position {
	if a.After(b) {
		return b
	}
	return a
}

// Max returns the later of two positions.
func Max(a, b Position) Position {
	if a.Before(b) {
		return b
	}
	return a
}
