// Package cursor provides the position and cursor primitives of the modal core.
//
// The cursor package handles:
//
//   - Line/column positions with the Position type
//   - One cursor or selection as a (Start, Stop) pair via Range
//   - Ordered multi-cursor support with Set
//   - Position transformation after text edits
//
// Range Model:
//
// A Range is not ordered. Start is where a selection was anchored and Stop is
// where the cursor currently is, so Start may come after Stop for a backward
// Visual selection. A Range with Start == Stop is a plain cursor.
//
// Multi-Cursor Support:
//
// Set keeps cursors in insertion order, which maps one-to-one onto the host
// editor's selection indices. Index 0 is the primary cursor; no operation on a
// Set removes it and a Set never becomes empty.
//
// Basic usage:
//
//	cs := cursor.NewSet(cursor.At(cursor.Pos(0, 4)))
//	cs.Append(cursor.At(cursor.Pos(3, 0)))
//	cs.RemoveIndices([]int{0, 1}) // index 0 survives
//
// Thread Safety:
//
// Position and Range are immutable value types. Set is not thread-safe; each
// editor instance owns its Set exclusively.
package cursor
