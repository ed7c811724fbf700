// Package transform describes the edits actions ask the host to make.
//
// Commands and operators never touch the document directly. They queue
// Transformation values; the core hands text edits to an Executor in
// declaration order and replays DotRepeat and MacroReplay entries itself.
package transform

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/mo"

	"github.com/dshills/modalcore/internal/engine/cursor"
)

// Kind identifies a transformation variant.
type Kind uint8

const (
	InsertText Kind = iota
	DeleteRange
	ReplaceRange
	DotRepeat
	MacroReplay
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case InsertText:
		return "insert"
	case DeleteRange:
		return "delete"
	case ReplaceRange:
		return "replace"
	case DotRepeat:
		return "dot"
	case MacroReplay:
		return "macro"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Transformation is one queued edit or replay request.
type Transformation struct {
	Kind Kind

	// CursorIndex is the index of the cursor that produced the edit.
	CursorIndex int

	// Start and End bound the affected text in document order.
	// For InsertText both equal the insertion point.
	Start cursor.Position
	End   cursor.Position

	// Text is inserted at Start, replacing Start..End.
	Text string

	// Register names the macro register for MacroReplay.
	Register string

	// Count is the replay count for DotRepeat and MacroReplay.
	Count int

	// Cursor is where the producing cursor should be, in the coordinates of
	// the document with only this edit applied.
	Cursor mo.Option[cursor.Range]
}

// Insert creates an insertion at p.
func Insert(index int, p cursor.Position, text string) Transformation {
	return Transformation{Kind: InsertText, CursorIndex: index, Start: p, End: p, Text: text}
}

// Delete creates a deletion of start..end.
func Delete(index int, start, end cursor.Position) Transformation {
	start, end = cursor.Min(start, end), cursor.Max(start, end)
	return Transformation{Kind: DeleteRange, CursorIndex: index, Start: start, End: end}
}

// Replace creates a replacement of start..end with text.
func Replace(index int, start, end cursor.Position, text string) Transformation {
	start, end = cursor.Min(start, end), cursor.Max(start, end)
	return Transformation{Kind: ReplaceRange, CursorIndex: index, Start: start, End: end, Text: text}
}

// Dot requests a replay of the last repeatable command.
func Dot(count int) Transformation {
	return Transformation{Kind: DotRepeat, Count: max(count, 1)}
}

// Macro requests a replay of the macro stored in register.
func Macro(register string, count int) Transformation {
	return Transformation{Kind: MacroReplay, Register: register, Count: max(count, 1)}
}

// WithCursor returns t with its resulting cursor set.
func (t Transformation) WithCursor(r cursor.Range) Transformation {
	t.Cursor = mo.Some(r)
	return t
}

// IsTextEdit reports whether t changes document text.
func (t Transformation) IsTextEdit() bool {
	return t.Kind == InsertText || t.Kind == DeleteRange || t.Kind == ReplaceRange
}

// Edit returns the text edit t describes.
func (t Transformation) Edit() cursor.Edit {
	return cursor.Edit{Start: t.Start, End: t.End, NewText: t.Text}
}

// String returns a compact description for logging.
func (t Transformation) String() string {
	switch t.Kind {
	case DotRepeat:
		return fmt.Sprintf("dot x%d", t.Count)
	case MacroReplay:
		return fmt.Sprintf("macro @%s x%d", t.Register, t.Count)
	default:
		return fmt.Sprintf("%s #%d %s-%s %q", t.Kind, t.CursorIndex, t.Start, t.End, t.Text)
	}
}

// Executor applies text edits to the host document.
// All edits in one call refer to the document as it was before the call and
// must not overlap; the executor applies them as a single batch.
type Executor interface {
	Apply(ctx context.Context, edits []Transformation) error
}

// SortReverse orders text edits from the end of the document to the start,
// the order in which a batch can be applied one edit at a time without
// invalidating the positions of the edits still to come.
// The sort is stable for edits at the same position.
func SortReverse(list []Transformation) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Start.After(list[j].Start)
	})
}

// ResultCursors returns the final cursor for every cursor index that
// requested one. Each requested cursor is shifted by the other edits of the
// batch that lie before it in the document.
func ResultCursors(list []Transformation) map[int]cursor.Range {
	var edits []Transformation
	for _, t := range list {
		if t.IsTextEdit() {
			edits = append(edits, t)
		}
	}
	SortReverse(edits)

	result := make(map[int]cursor.Range)
	for _, t := range list {
		r, ok := t.Cursor.Get()
		if !ok {
			continue
		}
		for _, other := range edits {
			if other.Start.Before(t.Start) {
				r = cursor.TransformRange(r, other.Edit())
			}
		}
		result[t.CursorIndex] = r
	}
	return result
}

// Partition splits a queue into text edits and replay requests, keeping
// declaration order within each group.
func Partition(list []Transformation) (edits, replays []Transformation) {
	for _, t := range list {
		if t.IsTextEdit() {
			edits = append(edits, t)
		} else {
			replays = append(replays, t)
		}
	}
	return edits, replays
}
