package modehandler

import (
	"context"
	"slices"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/input/mode"
)

// SelectionKind classifies what changed the host selection.
type SelectionKind uint8

const (
	SelectionUnknown SelectionKind = iota
	SelectionKeyboard
	SelectionPointer
)

func (k SelectionKind) String() string {
	switch k {
	case SelectionKeyboard:
		return "keyboard"
	case SelectionPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// SelectionChange is a host notification that the selections changed.
// Each selection runs from anchor (Start) to active end (Stop).
type SelectionChange struct {
	Selections []cursor.Range
	Kind       SelectionKind
}

// HandleSelectionChange reconciles host selections with the cursors.
// Notifications may be stale or duplicated; the payload is the only
// source of truth.
func (h *ModeHandler) HandleSelectionChange(ctx context.Context, ch SelectionChange) {
	s := h.state
	if s.IgnoreIntermediateSelections || len(ch.Selections) == 0 || s.Mode() == mode.Disabled {
		return
	}
	if h.isEcho(ch.Selections) {
		return
	}
	s.Doc = h.editor.Document()

	m := s.Mode()
	h.log.Debug("selection change", "kind", ch.Kind, "count", len(ch.Selections), "mode", m)

	if m != mode.VisualBlock && (len(ch.Selections) != s.Cursors.Len() || s.Cursors.IsMulti()) {
		h.adoptAll(ctx, ch.Selections, m)
		return
	}

	sel := cursor.NewRange(s.Doc.Clamp(ch.Selections[0].Start), s.Doc.Clamp(ch.Selections[0].Stop))
	if ch.Kind == SelectionPointer {
		h.pointerSelection(ctx, sel, m)
		return
	}
	h.keyboardSelection(ctx, sel, m)
}

// isEcho drops, once, a notification matching the cursors we last wrote.
func (h *ModeHandler) isEcho(selections []cursor.Range) bool {
	if h.lastWritten == nil || !slices.Equal(h.lastWritten, selections) {
		return false
	}
	h.lastWritten = nil
	return true
}

// adoptAll rebuilds the cursors one to one from the selections. A new
// non-empty selection enters Visual mode unless no previous cursor lies
// inside any of them, which is how a snippet insertion looks.
func (h *ModeHandler) adoptAll(ctx context.Context, selections []cursor.Range, m mode.Mode) {
	s := h.state
	previous := s.Cursors.Stops()

	ranges := make([]cursor.Range, len(selections))
	nonEmpty := false
	for i, sel := range selections {
		ranges[i] = cursor.NewRange(s.Doc.Clamp(sel.Start), s.Doc.Clamp(sel.Stop))
		nonEmpty = nonEmpty || !ranges[i].IsEmpty()
	}
	s.Cursors.Replace(ranges)

	if nonEmpty && (m == mode.Normal || m.IsInsertLike()) && containsAny(ranges, previous) {
		s.SetMode(mode.Visual)
	}
	h.refreshQuiet(ctx)
}

func containsAny(ranges []cursor.Range, positions []cursor.Position) bool {
	for _, p := range positions {
		for _, r := range ranges {
			if r.Contains(p) {
				return true
			}
		}
	}
	return false
}

// keyboardSelection handles keyboard and programmatic selection changes.
func (h *ModeHandler) keyboardSelection(ctx context.Context, sel cursor.Range, m mode.Mode) {
	s := h.state
	if m.IsVisual() {
		return
	}
	if m == mode.Normal && sel.IsEmpty() {
		n := s.Doc.LineLength(sel.Stop.Line)
		primary := s.Cursors.Primary().Stop
		// The host reporting end of line while we hold the last character
		// is our own clamp coming back.
		if n > 0 && sel.Stop.Column == n && primary == cursor.Pos(sel.Stop.Line, n-1) {
			return
		}
	}
	s.Cursors.Replace([]cursor.Range{sel})
	h.refreshQuiet(ctx)
}

// pointerSelection handles clicks and drags.
func (h *ModeHandler) pointerSelection(ctx context.Context, sel cursor.Range, m mode.Mode) {
	s := h.state

	if sel.IsEmpty() {
		p := sel.Stop
		if m.IsVisual() {
			s.SetMode(mode.Normal)
			m = mode.Normal
		}
		// A click at or past the end of a line lands on the last character
		// in Normal mode, ending any insertion.
		if n := s.Doc.LineLength(p.Line); n > 0 && p.Column >= n {
			p.Column = n - 1
			if m.IsInsertLike() {
				h.checkpoint(true)
				s.ResetCommand()
			}
			s.SetMode(mode.Normal)
		}
		s.Cursors.Replace([]cursor.Range{cursor.At(p)})
		h.refreshQuiet(ctx)
		return
	}

	if sel.Start.Line == sel.Stop.Line {
		n := s.Doc.LineLength(sel.Start.Line)
		lo, hi := sel.Ordered()
		if lo.Column >= n-1 && hi.Column <= n {
			return
		}
	}

	s.Cursors.Replace([]cursor.Range{sel})
	if h.cfg.MouseSelectionGoesIntoVisualMode && m != mode.Insert && !m.IsVisual() {
		s.SetMode(mode.Visual)
	}
	h.refreshQuiet(ctx)
}
