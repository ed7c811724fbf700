package modehandler

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/mo"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/document"
	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/vim"
)

// closingPairs maps a closing bracket or quote to its opener.
var closingPairs = map[string]rune{
	")": '(', "]": '[', "}": '{', ">": '<', `"`: '"', "'": '\'',
}

// run executes a resolved action against every cursor.
func (h *ModeHandler) run(ctx context.Context, a vim.Action) error {
	s := h.state
	startMode := s.Mode()
	wasReturnToInsert := s.ReturnToInsertAfterCommand
	before := s.Cursors.Primary().Stop
	h.log.Debug("run", "action", a, "mode", startMode)

	s.IgnoreIntermediateSelections = true
	defer func() { s.IgnoreIntermediateSelections = false }()

	s.Recorded.AddAction(a)
	h.shiftVisualStops(startMode, false)
	h.clampCursors(startMode)

	completed := false
	switch a.Kind() {
	case vim.Movement:
		done, err := h.runMovement(ctx, a)
		if err != nil {
			return err
		}
		completed = done

	case vim.Command:
		if err := a.Def.Exec(ctx, s, a); err != nil {
			return err
		}
		s.Doc = h.editor.Document()
		if err := h.applyTransformations(ctx); err != nil {
			return err
		}
		completed = a.Def.Complete || s.Recorded.Finished()
	}

	if s.Recorded.OperatorReady(s.Mode()) {
		if err := h.runOperator(ctx); err != nil {
			return err
		}
		completed = true
	}

	endMode := s.Mode()
	repeatable := completed && endMode == mode.Normal &&
		!startMode.IsTransientInput() && s.Recorded.IsRepeatable()
	forceCheckpoint := endMode == mode.Insert && h.closedPair(a)

	if endMode.IsVisual() && !s.IsReplayingDot {
		p := s.Cursors.Primary()
		s.LastVisualSelection = mo.Some(vim.VisualSelection{Mode: endMode, Start: p.Start, End: p.Stop})
	}
	h.shiftVisualStops(endMode, true)

	if completed {
		h.finishCommand(repeatable, wasReturnToInsert)
	}

	h.checkpoint((repeatable || forceCheckpoint) && !s.IsReplaying() && !s.Remap.Active())

	s.Doc = h.editor.Document()
	h.finalizeCursors()

	if a.Def.IsJump {
		if after := s.Cursors.Primary().Stop; after != before {
			s.Jumps.RecordJump(
				vim.Jump{EditorID: s.EditorID, Position: before},
				vim.Jump{EditorID: s.EditorID, Position: after},
			)
		}
	}
	return nil
}

// runMovement applies a movement to each cursor as if it were the only
// one. It reports whether the movement completed the command.
func (h *ModeHandler) runMovement(ctx context.Context, a vim.Action) (bool, error) {
	s := h.state
	m := s.Mode()
	count := s.Recorded.EffectiveCount()
	keepAnchor := m.IsVisual() || s.Recorded.HasPendingOperator()

	all := s.Cursors.All()
	saved := s.Cursors
	results := make([]cursor.Range, len(all))
	var removed []int
	failed := false

	for i, c := range all {
		s.Cursors = cursor.NewSet(c)
		res, err := a.Def.Move(ctx, s, a, c.Stop, count)
		if err != nil {
			s.Cursors = saved
			return false, err
		}
		switch {
		case res.Failed:
			failed = true
			results[i] = c
			continue
		case res.Removed:
			results[i] = c
			if i > 0 {
				removed = append(removed, i)
			}
			continue
		case res.IsRange:
			results[i] = cursor.NewRange(res.Start, res.Stop)
		case keepAnchor:
			results[i] = c.WithStop(res.Stop)
		default:
			results[i] = cursor.At(res.Stop)
		}
		if rm, ok := res.RegisterMode.Get(); ok {
			s.Recorded.RegisterMode = mo.Some(rm)
		}
		results[i] = cursor.NewRange(s.Doc.Clamp(results[i].Start), s.Doc.Clamp(results[i].Stop))
	}

	s.Cursors = saved
	s.Cursors.Replace(results)
	s.Cursors.RemoveIndices(removed)
	s.Recorded.Count = 0

	if failed {
		h.log.Debug("movement failed", "action", a)
		s.LastMovementFailed = true
		s.ResetCommand()
		return false, nil
	}
	return !s.Recorded.HasPendingOperator(), nil
}

// runOperator runs the pending operator once per cursor over the ranges
// the cursors describe.
func (h *ModeHandler) runOperator(ctx context.Context) error {
	s := h.state
	rec := s.Recorded
	op, _ := rec.Operator.Get()
	rec.MarkOperatorRun()

	m := s.Mode()
	switch m {
	case mode.VisualLine:
		rec.RegisterMode = mo.Some(vim.Linewise)
	case mode.VisualBlock:
		rec.RegisterMode = mo.Some(vim.Blockwise)
	}
	linewise := rec.EffectiveRegisterMode(m) == vim.Linewise
	repeat := rec.IsOperatorRepeat() && op.Def.OperateRepeat != nil
	count := rec.EffectiveCount()

	// Ranges are computed up front; the operator may leave Visual mode.
	cursors := s.Cursors.All()
	starts := make([]cursor.Position, len(cursors))
	stops := make([]cursor.Position, len(cursors))
	for i, c := range cursors {
		start, stop := c.Ordered()
		switch {
		case linewise:
			start, stop = cursor.Pos(start.Line, 0), s.Doc.LineEnd(stop.Line)
		case m.IsVisual():
			stop = stepRight(s.Doc, stop)
		}
		starts[i], stops[i] = start, stop
	}
	if m.IsVisual() {
		start, stop := cursors[0].Ordered()
		rec.Visual = mo.Some(visualExtent(m, start, stop))
	}

	results := make([]cursor.Range, len(cursors))
	for i, c := range cursors {
		var (
			r   cursor.Range
			err error
		)
		if repeat {
			r, err = op.Def.OperateRepeat(ctx, s, op, c.Stop, count, i)
		} else {
			r, err = op.Def.Operate(ctx, s, op, starts[i], stops[i], i)
		}
		if err != nil {
			return err
		}
		results[i] = r
	}
	s.Cursors.Replace(results)
	return h.applyTransformations(ctx)
}

// applyTransformations hands queued edits to the executor as one batch,
// moves the cursors to where the edits put them and runs queued replays.
func (h *ModeHandler) applyTransformations(ctx context.Context) error {
	s := h.state
	edits, replays := transform.Partition(s.Recorded.TakeTransformations())

	if len(edits) > 0 {
		h.log.Debug("apply edits", "count", len(edits))
		if err := h.executor.Apply(ctx, edits); err != nil {
			return fmt.Errorf("apply edits: %w", err)
		}
		s.Doc = h.editor.Document()

		requested := transform.ResultCursors(edits)
		ordered := slices.Clone(edits)
		transform.SortReverse(ordered)
		s.Cursors.Map(func(i int, r cursor.Range) cursor.Range {
			if res, ok := requested[i]; ok {
				return res
			}
			for _, t := range ordered {
				r = cursor.TransformRange(r, t.Edit())
			}
			return r
		})
	}

	for _, t := range replays {
		var err error
		switch t.Kind {
		case transform.DotRepeat:
			err = h.replayDot(ctx, t.Count)
		case transform.MacroReplay:
			err = h.replayMacro(ctx, t.Register, t.Count)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// finishCommand stores what a completed command leaves behind and starts
// a new transcript.
func (h *ModeHandler) finishCommand(repeatable, wasReturnToInsert bool) {
	s := h.state
	rec := s.Recorded

	if repeatable && !s.IsReplayingDot {
		s.PreviousFullAction = slices.Clone(rec.ActionsRun)
		s.PreviousVisual = rec.Visual
	}
	if m, ok := s.Macro.Get(); ok && !s.IsReplaying() {
		for _, a := range rec.ActionsRun {
			if !a.Def.NoMacroRecord {
				m.Actions = append(m.Actions, a)
			}
		}
	}
	if rec.IsInsertion && s.Mode() == mode.Normal {
		s.Registers.SetLastInserted(rec.InsertedText)
	}
	s.ResetCommand()

	if wasReturnToInsert && s.ReturnToInsertAfterCommand {
		s.ReturnToInsertAfterCommand = false
		s.SetMode(mode.Insert)
	}
}

// closedPair reports whether the typed key closed a bracket or quote pair
// right at the primary cursor.
func (h *ModeHandler) closedPair(a vim.Action) bool {
	if len(a.Keys) == 0 {
		return false
	}
	open, ok := closingPairs[a.Keys[len(a.Keys)-1]]
	if !ok {
		return false
	}
	doc := h.editor.Document()
	p := h.state.Cursors.Primary().Stop
	closeRune := []rune(a.Keys[len(a.Keys)-1])[0]

	prev1, ok1 := doc.CharAt(p.Translate(0, -1))
	prev2, ok2 := doc.CharAt(p.Translate(0, -2))
	at, okAt := doc.CharAt(p)
	return (ok2 && ok1 && prev2 == open && prev1 == closeRune) ||
		(ok1 && okAt && prev1 == open && at == closeRune)
}

// shiftVisualStops converts between the host's exclusive selection end and
// the inclusive stop actions work with.
func (h *ModeHandler) shiftVisualStops(m mode.Mode, toHost bool) {
	if !m.IsVisual() {
		return
	}
	s := h.state
	s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range {
		if toHost {
			if !r.Stop.Before(r.Start) {
				r.Stop = stepRight(s.Doc, r.Stop)
			}
			return r
		}
		if r.Start.Before(r.Stop) {
			r.Stop = stepLeft(s.Doc, r.Stop)
		}
		return r
	})
}

// clampCursors keeps every cursor inside the document before an action.
func (h *ModeHandler) clampCursors(m mode.Mode) {
	s := h.state
	doc := s.Doc
	s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range {
		return cursor.NewRange(clampIn(doc, r.Start, m), clampIn(doc, r.Stop, m))
	})
}

// finalizeCursors collapses cursors in Normal mode and clamps them for the
// final mode.
func (h *ModeHandler) finalizeCursors() {
	s := h.state
	m := s.Mode()
	if m == mode.Normal {
		s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range { return r.Collapse() })
	}
	h.clampCursors(m)
}

// clampIn clamps p to the document. Normal mode keeps the cursor on a
// character; Visual modes may sit one past the last character.
func clampIn(doc document.Document, p cursor.Position, m mode.Mode) cursor.Position {
	p = doc.Clamp(p)
	if m == mode.Normal {
		if n := doc.LineLength(p.Line); n > 0 && p.Column >= n {
			p.Column = n - 1
		}
	}
	return p
}

// stepRight moves one character right, through the line break at the end
// of a line.
func stepRight(doc document.Document, p cursor.Position) cursor.Position {
	if p.Column < doc.LineLength(p.Line) {
		return p.Right()
	}
	if p.Line+1 < doc.LineCount() {
		return cursor.Pos(p.Line+1, 0)
	}
	return doc.LineEnd(p.Line)
}

// stepLeft is the inverse of stepRight.
func stepLeft(doc document.Document, p cursor.Position) cursor.Position {
	if p.Column > 0 {
		return p.Left()
	}
	if p.Line > 0 {
		return doc.LineEnd(p.Line - 1)
	}
	return p
}
