package cursor

import "fmt"

// Range is one cursor: Start is the selection anchor, Stop is where the
// cursor is. Start may come after Stop.
type Range struct {
	Start Position
	Stop  Position
}

// At creates a zero-width range (a plain cursor) at p.
func At(p Position) Range {
	return Range{Start: p, Stop: p}
}

// NewRange creates a range from start to stop, preserving direction.
func NewRange(start, stop Position) Range {
	return Range{Start: start, Stop: stop}
}

// String returns a string representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s->%s]", r.Start, r.Stop)
}

// IsEmpty returns true if the range has no extent.
func (r Range) IsEmpty() bool {
	return r.Start == r.Stop
}

// IsForward returns true if Start is at or before Stop.
func (r Range) IsForward() bool {
	return r.Start.BeforeOrEqual(r.Stop)
}

// Ordered returns the range's bounds in document order.
func (r Range) Ordered() (Position, Position) {
	if r.Start.After(r.Stop) {
		return r.Stop, r.Start
	}
	return r.Start, r.Stop
}

// Normalize returns a forward copy of the range.
func (r Range) Normalize() Range {
	s, e := r.Ordered()
	return Range{Start: s, Stop: e}
}

// WithStop returns a copy of r with a new stop, keeping the anchor.
func (r Range) WithStop(p Position) Range {
	return Range{Start: r.Start, Stop: p}
}

// WithStart returns a copy of r with a new anchor.
func (r Range) WithStart(p Position) Range {
	return Range{Start: p, Stop: r.Stop}
}

// Collapse returns a zero-width range at Stop.
func (r Range) Collapse() Range {
	return At(r.Stop)
}

// Flip swaps anchor and stop.
func (r Range) Flip() Range {
	return Range{Start: r.Stop, Stop: r.Start}
}

// Contains reports whether p lies inside the range, bounds included.
// An empty range contains only its own position.
func (r Range) Contains(p Position) bool {
	s, e := r.Ordered()
	return !p.Before(s) && !p.After(e)
}
