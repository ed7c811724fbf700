package actions

import (
	"context"
	"strings"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/vim"
)

func operators() []*vim.Definition {
	return []*vim.Definition{
		{
			Name:          "delete",
			Kind:          vim.Operator,
			Keys:          [][]string{{"d"}},
			Modes:         motionModes,
			Repeatable:    true,
			Operate:       operateDelete,
			OperateRepeat: repeatDelete,
		},
		{
			Name:          "change",
			Kind:          vim.Operator,
			Keys:          [][]string{{"c"}},
			Modes:         motionModes,
			Repeatable:    true,
			Operate:       operateChange,
			OperateRepeat: repeatChange,
		},
		{
			Name:          "yank",
			Kind:          vim.Operator,
			Keys:          [][]string{{"y"}},
			Modes:         motionModes,
			Operate:       operateYank,
			OperateRepeat: repeatYank,
		},
		{
			Name:       "visual-delete-char",
			Kind:       vim.Operator,
			Keys:       [][]string{{"x"}, {"<Del>"}},
			Modes:      visualModes,
			Repeatable: true,
			Operate:    operateDelete,
		},
	}
}

// storeText writes text captured by the cursor at index into the selected
// register, and into the numbered or small-delete register when the
// unnamed register is in use.
func storeText(s *vim.State, index int, text string, m vim.RegisterMode, yank bool) error {
	reg := s.Recorded.Register
	if err := s.Registers.PutEntry(reg, index, text, m); err != nil {
		return err
	}
	if reg != vim.DefaultRegister {
		return nil
	}
	switch {
	case yank:
		return s.Registers.PutEntry(vim.LastYankRegister, index, text, m)
	case m == vim.Charwise && !strings.Contains(text, "\n"):
		return s.Registers.PutEntry(vim.SmallDeleteRegister, index, text, m)
	}
	return nil
}

// deleteLines queues the removal of whole lines first..last, line breaks
// included, and returns where the cursor lands.
func deleteLines(s *vim.State, index, first, last int) (cursor.Range, string) {
	doc := s.Doc
	last = min(last, doc.LineCount()-1)
	text := doc.TextRange(cursor.Pos(first, 0), doc.LineEnd(last))

	next := cursor.Pos(first, 0)
	var start, end cursor.Position
	switch {
	case last+1 < doc.LineCount():
		start, end = cursor.Pos(first, 0), cursor.Pos(last+1, 0)
	case first > 0:
		start, end = doc.LineEnd(first-1), doc.LineEnd(last)
		next = cursor.Pos(first-1, 0)
	default:
		start, end = cursor.Pos(0, 0), doc.DocumentEnd()
	}

	r := cursor.At(next)
	s.Queue(transform.Delete(index, start, end).WithCursor(r))
	return r, text
}

// clearLines queues emptying lines first..last into a single blank line.
func clearLines(s *vim.State, index, first, last int) (cursor.Range, string) {
	doc := s.Doc
	last = min(last, doc.LineCount()-1)
	text := doc.TextRange(cursor.Pos(first, 0), doc.LineEnd(last))
	r := cursor.At(cursor.Pos(first, 0))
	s.Queue(transform.Delete(index, cursor.Pos(first, 0), doc.LineEnd(last)).WithCursor(r))
	return r, text
}

func operateDelete(_ context.Context, s *vim.State, _ vim.Action, start, stop cursor.Position, index int) (cursor.Range, error) {
	m := s.Recorded.EffectiveRegisterMode(s.Mode())
	leaveVisual(s)

	if m == vim.Linewise {
		r, text := deleteLines(s, index, start.Line, stop.Line)
		return r, storeText(s, index, text, m, false)
	}

	text := s.Doc.TextRange(start, stop)
	r := cursor.At(start)
	if start != stop {
		s.Queue(transform.Delete(index, start, stop).WithCursor(r))
	}
	return r, storeText(s, index, text, m, false)
}

func repeatDelete(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count, index int) (cursor.Range, error) {
	r, text := deleteLines(s, index, p.Line, p.Line+max(count, 1)-1)
	return r, storeText(s, index, text, vim.Linewise, false)
}

func operateChange(_ context.Context, s *vim.State, _ vim.Action, start, stop cursor.Position, index int) (cursor.Range, error) {
	m := s.Recorded.EffectiveRegisterMode(s.Mode())

	var (
		r    cursor.Range
		text string
	)
	if m == vim.Linewise {
		r, text = clearLines(s, index, start.Line, stop.Line)
	} else {
		text = s.Doc.TextRange(start, stop)
		r = cursor.At(start)
		if start != stop {
			s.Queue(transform.Delete(index, start, stop).WithCursor(r))
		}
	}
	s.SetMode(mode.Insert)
	return r, storeText(s, index, text, m, false)
}

func repeatChange(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count, index int) (cursor.Range, error) {
	r, text := clearLines(s, index, p.Line, p.Line+max(count, 1)-1)
	s.SetMode(mode.Insert)
	return r, storeText(s, index, text, vim.Linewise, false)
}

func operateYank(_ context.Context, s *vim.State, _ vim.Action, start, stop cursor.Position, index int) (cursor.Range, error) {
	m := s.Recorded.EffectiveRegisterMode(s.Mode())
	leaveVisual(s)

	var text string
	if m == vim.Linewise {
		text = s.Doc.TextRange(cursor.Pos(start.Line, 0), s.Doc.LineEnd(stop.Line))
	} else {
		text = s.Doc.TextRange(start, stop)
	}
	return cursor.At(start), storeText(s, index, text, m, true)
}

func repeatYank(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count, index int) (cursor.Range, error) {
	last := min(p.Line+max(count, 1)-1, s.Doc.LineCount()-1)
	text := s.Doc.TextRange(cursor.Pos(p.Line, 0), s.Doc.LineEnd(last))
	return cursor.At(p), storeText(s, index, text, vim.Linewise, true)
}
