package modehandler

import (
	"context"
	"slices"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/vim"
)

// replayDot runs the previous full action count times. Undo steps are not
// closed per action; the replay as a whole forms one step.
func (h *ModeHandler) replayDot(ctx context.Context, count int) error {
	s := h.state
	actions := slices.Clone(s.PreviousFullAction)
	if len(actions) == 0 {
		return vim.NewError(vim.ErrNoPreviousCommand, "")
	}

	saved, wasReplaying := s.Recorded, s.IsReplayingDot
	s.IsReplayingDot = true
	defer func() {
		s.Recorded = saved
		s.IsReplayingDot = wasReplaying
	}()

	for range max(count, 1) {
		s.Recorded = vim.NewRecordedState()
		if e, ok := s.PreviousVisual.Get(); ok {
			h.selectExtent(e)
		}
		for _, a := range actions {
			if err := h.run(ctx, a); err != nil {
				return err
			}
			h.refresh(ctx, false)
			if s.LastMovementFailed {
				return nil
			}
		}
	}

	h.checkpoint(!s.IsReplayingMacro && !s.Remap.Active())
	return nil
}

// visualExtent measures the selection start..stop, stop inclusive.
func visualExtent(m mode.Mode, start, stop cursor.Position) vim.VisualExtent {
	e := vim.VisualExtent{Mode: m, Lines: stop.Line - start.Line}
	switch {
	case m == mode.VisualBlock:
		e.Columns = max(stop.Column-start.Column, start.Column-stop.Column)
	case e.Lines == 0:
		e.Columns = stop.Column - start.Column
	default:
		e.Columns = stop.Column
	}
	return e
}

// selectExtent enters e's Visual mode and selects an extent the size of e
// from every cursor, in host form.
func (h *ModeHandler) selectExtent(e vim.VisualExtent) {
	s := h.state
	s.Doc = h.editor.Document()
	s.SetMode(e.Mode)
	s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range {
		start := r.Stop
		stop := cursor.Pos(start.Line+e.Lines, e.Columns)
		if e.Lines == 0 || e.Mode == mode.VisualBlock {
			stop.Column = start.Column + e.Columns
		}
		stop = clampIn(s.Doc, stop, mode.Normal)
		return cursor.NewRange(start, stepRight(s.Doc, stop))
	})
}

// replayMacro replays register reg count times, one undo step per
// iteration. Registers holding plain text are replayed as typed keys.
func (h *ModeHandler) replayMacro(ctx context.Context, reg string, count int) error {
	s := h.state
	content, err := s.Registers.Get(reg)
	if err != nil {
		return err
	}
	if h.macroDepth >= h.cfg.MaxMapDepth {
		return vim.NewError(vim.ErrRecursiveMapping, "@"+reg)
	}
	s.Registers.SetLastMacro(reg)

	saved, wasReplaying := s.Recorded, s.IsReplayingMacro
	s.IsReplayingMacro = true
	h.macroDepth++
	defer func() {
		h.macroDepth--
		s.Recorded = saved
		s.IsReplayingMacro = wasReplaying
	}()

	if !content.IsMacro() {
		keys := key.Split(content.Joined())
		for range max(count, 1) {
			s.Recorded = vim.NewRecordedState()
			res, err := h.ReplayKeys(ctx, keys, ReplayOptions{Recursive: true})
			if err != nil {
				return err
			}
			if res.IsAborted() {
				h.log.Debug("macro aborted", "register", reg, "reason", res.Reason)
				return nil
			}
		}
		return nil
	}

	h.log.Debug("replay macro", "register", reg, "actions", len(content.Actions), "count", count)
	for range max(count, 1) {
		s.Recorded = vim.NewRecordedState()
		for _, a := range content.Actions {
			for _, k := range a.Keys {
				h.recordKey(k)
			}
			if err := h.run(ctx, a); err != nil {
				return err
			}
			h.refresh(ctx, false)
			if s.LastMovementFailed {
				h.checkpoint(!s.Remap.Active())
				return nil
			}
		}
		h.checkpoint(!s.Remap.Active())
	}
	return nil
}
