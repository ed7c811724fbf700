package cursor

import "sort"

// Set manages the cursors of one editor instance.
// Order is insertion order and maps onto host selection indices; index 0 is
// the primary cursor. A Set always holds at least one cursor.
type Set struct {
	ranges []Range
}

// NewSet creates a cursor set with a single primary cursor.
func NewSet(primary Range) *Set {
	return &Set{ranges: []Range{primary}}
}

// NewSetFromSlice creates a cursor set from ranges, keeping their order.
// An empty slice yields a single cursor at the document origin.
func NewSetFromSlice(ranges []Range) *Set {
	if len(ranges) == 0 {
		return NewSet(At(Position{}))
	}
	cs := &Set{ranges: make([]Range, len(ranges))}
	copy(cs.ranges, ranges)
	return cs
}

// Primary returns the primary (index 0) cursor.
func (cs *Set) Primary() Range {
	return cs.ranges[0]
}

// All returns a copy of all cursors.
func (cs *Set) All() []Range {
	result := make([]Range, len(cs.ranges))
	copy(result, cs.ranges)
	return result
}

// Len returns the number of cursors.
func (cs *Set) Len() int {
	return len(cs.ranges)
}

// IsMulti returns true if there is more than one cursor.
func (cs *Set) IsMulti() bool {
	return len(cs.ranges) > 1
}

// Get returns the cursor at index, or the zero range when out of bounds.
func (cs *Set) Get(index int) Range {
	if index < 0 || index >= len(cs.ranges) {
		return Range{}
	}
	return cs.ranges[index]
}

// Set replaces the cursor at index. Out-of-range indices are ignored.
func (cs *Set) Set(index int, r Range) {
	if index < 0 || index >= len(cs.ranges) {
		return
	}
	cs.ranges[index] = r
}

// Append adds a cursor after the existing ones.
func (cs *Set) Append(r Range) {
	cs.ranges = append(cs.ranges, r)
}

// Replace swaps in a new list of cursors. An empty list keeps the current
// primary so the set never becomes empty.
func (cs *Set) Replace(ranges []Range) {
	if len(ranges) == 0 {
		cs.ranges = cs.ranges[:1]
		return
	}
	cs.ranges = make([]Range, len(ranges))
	copy(cs.ranges, ranges)
}

// RemoveIndices deletes the cursors at the given indices, working from the
// highest index down so earlier indices stay valid. Index 0 is never removed.
func (cs *Set) RemoveIndices(indices []int) {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	last := -1
	for _, idx := range sorted {
		if idx == last || idx <= 0 || idx >= len(cs.ranges) {
			continue
		}
		cs.ranges = append(cs.ranges[:idx], cs.ranges[idx+1:]...)
		last = idx
	}
}

// KeepPrimary drops every cursor except the primary.
func (cs *Set) KeepPrimary() {
	cs.ranges = cs.ranges[:1]
}

// Map replaces every cursor with f applied to it.
func (cs *Set) Map(f func(i int, r Range) Range) {
	for i, r := range cs.ranges {
		cs.ranges[i] = f(i, r)
	}
}

// Stops returns the stop position of every cursor, in order.
func (cs *Set) Stops() []Position {
	result := make([]Position, len(cs.ranges))
	for i, r := range cs.ranges {
		result[i] = r.Stop
	}
	return result
}

// Clone returns an independent copy of the set.
func (cs *Set) Clone() *Set {
	return NewSetFromSlice(cs.ranges)
}

// Equal reports whether both sets hold the same cursors in the same order.
func (cs *Set) Equal(other *Set) bool {
	if other == nil || len(cs.ranges) != len(other.ranges) {
		return false
	}
	for i := range cs.ranges {
		if cs.ranges[i] != other.ranges[i] {
			return false
		}
	}
	return true
}
