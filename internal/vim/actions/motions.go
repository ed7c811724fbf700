package actions

import (
	"context"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/vim"
)

func movements() []*vim.Definition {
	return []*vim.Definition{
		{
			Name:  "left",
			Kind:  vim.Movement,
			Keys:  [][]string{{"h"}, {"<Left>"}},
			Modes: motionModes,
			Move:  moveLeft,
		},
		{
			Name:  "right",
			Kind:  vim.Movement,
			Keys:  [][]string{{"l"}, {"<Right>"}, {" "}},
			Modes: motionModes,
			Move:  moveRight,
		},
		{
			Name:  "down",
			Kind:  vim.Movement,
			Keys:  [][]string{{"j"}, {"<Down>"}},
			Modes: motionModes,
			Move:  moveDown,
		},
		{
			Name:  "up",
			Kind:  vim.Movement,
			Keys:  [][]string{{"k"}, {"<Up>"}},
			Modes: motionModes,
			Move:  moveUp,
		},
		{
			Name:  "word",
			Kind:  vim.Movement,
			Keys:  [][]string{{"w"}},
			Modes: motionModes,
			Move:  moveWord,
		},
		{
			Name:  "back-word",
			Kind:  vim.Movement,
			Keys:  [][]string{{"b"}},
			Modes: motionModes,
			Move:  moveBackWord,
		},
		{
			Name:  "word-end",
			Kind:  vim.Movement,
			Keys:  [][]string{{"e"}},
			Modes: motionModes,
			Move:  moveWordEnd,
		},
		{
			Name:  "line-begin",
			Kind:  vim.Movement,
			Keys:  [][]string{{"0"}, {"<Home>"}},
			Modes: motionModes,
			When:  vim.NoCountInProgress,
			Move: func(_ context.Context, _ *vim.State, _ vim.Action, p cursor.Position, _ int) (vim.MovementResult, error) {
				return vim.To(p.WithColumn(0)), nil
			},
		},
		{
			Name:  "first-non-blank",
			Kind:  vim.Movement,
			Keys:  [][]string{{"^"}},
			Modes: motionModes,
			Move: func(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, _ int) (vim.MovementResult, error) {
				return vim.To(firstNonBlank(s.Doc, p.Line)), nil
			},
		},
		{
			Name:  "line-end",
			Kind:  vim.Movement,
			Keys:  [][]string{{"$"}, {"<End>"}},
			Modes: motionModes,
			Move:  moveLineEnd,
		},
		{
			Name:   "goto-first-line",
			Kind:   vim.Movement,
			Keys:   [][]string{{"g", "g"}},
			Modes:  motionModes,
			IsJump: true,
			Move: func(_ context.Context, s *vim.State, _ vim.Action, _ cursor.Position, count int) (vim.MovementResult, error) {
				line := max(count, 1) - 1
				return gotoLine(s, line), nil
			},
		},
		{
			Name:   "goto-last-line",
			Kind:   vim.Movement,
			Keys:   [][]string{{"G"}},
			Modes:  motionModes,
			IsJump: true,
			Move: func(_ context.Context, s *vim.State, _ vim.Action, _ cursor.Position, count int) (vim.MovementResult, error) {
				line := s.Doc.LineCount() - 1
				if count > 0 {
					line = count - 1
				}
				return gotoLine(s, line), nil
			},
		},
		findMotion("find-forward", "f", true, false),
		findMotion("find-backward", "F", false, false),
		findMotion("till-forward", "t", true, true),
		findMotion("till-backward", "T", false, true),
		{
			Name:   "search-next",
			Kind:   vim.Movement,
			Keys:   [][]string{{"n"}},
			Modes:  motionModes,
			IsJump: true,
			Move:   searchMotion(false),
		},
		{
			Name:   "search-previous",
			Kind:   vim.Movement,
			Keys:   [][]string{{"N"}},
			Modes:  motionModes,
			IsJump: true,
			Move:   searchMotion(true),
		},
		{
			Name:   "goto-mark",
			Kind:   vim.Movement,
			Keys:   [][]string{{"`", vim.CharacterArg}, {"'", vim.CharacterArg}},
			Modes:  motionModes,
			IsJump: true,
			Move:   moveToMark,
		},
		{
			Name:  "insert-arrow",
			Kind:  vim.Movement,
			Keys:  [][]string{{"<Left>"}, {"<Right>"}, {"<Up>"}, {"<Down>"}},
			Modes: typingModes,
			Move:  moveArrow,
		},
	}
}

func moveLeft(_ context.Context, _ *vim.State, _ vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
	return vim.To(p.Translate(0, -max(count, 1))), nil
}

func moveRight(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
	col := min(p.Column+max(count, 1), s.Doc.LineLength(p.Line))
	return vim.To(p.WithColumn(col)), nil
}

func moveDown(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
	line := min(p.Line+max(count, 1), s.Doc.LineCount()-1)
	return vim.To(cursor.Pos(line, p.Column)).WithRegisterMode(vim.Linewise), nil
}

func moveUp(_ context.Context, _ *vim.State, _ vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
	return vim.To(p.Translate(-max(count, 1), 0)).WithRegisterMode(vim.Linewise), nil
}

func moveWord(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
	stop := p
	for range max(count, 1) {
		stop = nextWordStart(s.Doc, stop)
	}
	// An operator never takes the line break after the last word.
	if s.Recorded.HasPendingOperator() && stop.Line > p.Line && stop.Column == 0 {
		stop = s.Doc.LineEnd(stop.Line - 1)
	}
	return vim.To(stop), nil
}

func moveBackWord(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
	stop := p
	for range max(count, 1) {
		stop = prevWordStart(s.Doc, stop)
	}
	return vim.To(stop), nil
}

func moveWordEnd(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
	stop := p
	for range max(count, 1) {
		stop = nextWordEnd(s.Doc, stop)
	}
	return vim.To(inclusive(s, stop)), nil
}

func moveLineEnd(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
	line := min(p.Line+max(count, 1)-1, s.Doc.LineCount()-1)
	return vim.To(s.Doc.LineEnd(line)), nil
}

func gotoLine(s *vim.State, line int) vim.MovementResult {
	line = min(max(line, 0), s.Doc.LineCount()-1)
	return vim.To(firstNonBlank(s.Doc, line)).WithRegisterMode(vim.Linewise)
}

// inclusive extends a stop over its character when an operator will use
// it, since operator ranges exclude their end.
func inclusive(s *vim.State, p cursor.Position) cursor.Position {
	if s.Recorded.HasPendingOperator() {
		return p.Right()
	}
	return p
}

func findMotion(name, k string, forward, till bool) *vim.Definition {
	return &vim.Definition{
		Name:  name,
		Kind:  vim.Movement,
		Keys:  [][]string{{k, vim.CharacterArg}},
		Modes: motionModes,
		Move: func(_ context.Context, s *vim.State, a vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
			ch := key.Character(a.Arg(vim.CharacterArg))
			stop, ok := findChar(s.Doc, p, ch, max(count, 1), forward, till)
			if !ok {
				return vim.Failed(), nil
			}
			if forward {
				stop = inclusive(s, stop)
			}
			return vim.To(stop), nil
		},
	}
}

func searchMotion(reverse bool) vim.MovementFunc {
	return func(_ context.Context, s *vim.State, _ vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
		if s.Search.Pattern == "" {
			return vim.Failed(), nil
		}
		forward := s.Search.Forward != reverse
		stop := p
		for range max(count, 1) {
			next, ok := findText(s.Doc, stop, s.Search.Pattern, forward)
			if !ok {
				return vim.MovementResult{}, vim.NewError(vim.ErrPatternNotFound, s.Search.Pattern)
			}
			stop = next
		}
		return vim.To(stop), nil
	}
}

func moveToMark(_ context.Context, s *vim.State, a vim.Action, p cursor.Position, _ int) (vim.MovementResult, error) {
	name := key.Character(a.Arg(vim.CharacterArg))
	if s.History == nil {
		return vim.MovementResult{}, vim.NewError(vim.ErrMarkNotSet, name)
	}
	target, ok := s.History.Marks()[name]
	if !ok {
		return vim.MovementResult{}, vim.NewError(vim.ErrMarkNotSet, name)
	}
	target = s.Doc.Clamp(target)
	if a.Keys[0] == "'" {
		return gotoLine(s, target.Line), nil
	}
	return vim.To(target), nil
}

func moveArrow(ctx context.Context, s *vim.State, a vim.Action, p cursor.Position, count int) (vim.MovementResult, error) {
	switch a.Keys[0] {
	case "<Left>":
		return moveLeft(ctx, s, a, p, count)
	case "<Right>":
		return moveRight(ctx, s, a, p, count)
	case "<Up>":
		return moveUp(ctx, s, a, p, count)
	default:
		return moveDown(ctx, s, a, p, count)
	}
}
