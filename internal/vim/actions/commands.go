package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/mo"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/history"
	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/vim"
)

func commands() []*vim.Definition {
	return []*vim.Definition{
		{
			Name:  "count",
			Kind:  vim.Command,
			Keys:  [][]string{{vim.NumberArg}},
			Modes: motionModes,
			When: func(s *vim.State, keys []string) bool {
				return keys[len(keys)-1] != "0" || s.Recorded.Count > 0
			},
			Exec: func(_ context.Context, s *vim.State, a vim.Action) error {
				s.Recorded.Count, _ = vim.AccumulateDigit(s.Recorded.Count, a.Arg(vim.NumberArg))
				return nil
			},
		},
		{
			Name:  "select-register",
			Kind:  vim.Command,
			Keys:  [][]string{{`"`, vim.RegisterArg}},
			Modes: motionModes,
			Exec: func(_ context.Context, s *vim.State, a vim.Action) error {
				s.Recorded.Register = a.Arg(vim.RegisterArg)
				return nil
			},
		},
		{
			Name:       "delete-char",
			Kind:       vim.Command,
			Keys:       [][]string{{"x"}, {"<Del>"}},
			Modes:      normalOnly,
			Complete:   true,
			Repeatable: true,
			Exec:       execDeleteChar,
		},
		{
			Name:       "put-after",
			Kind:       vim.Command,
			Keys:       [][]string{{"p"}},
			Modes:      normalOnly,
			Complete:   true,
			Repeatable: true,
			Exec:       putText(true),
		},
		{
			Name:       "put-before",
			Kind:       vim.Command,
			Keys:       [][]string{{"P"}},
			Modes:      normalOnly,
			Complete:   true,
			Repeatable: true,
			Exec:       putText(false),
		},
		{
			Name:     "undo",
			Kind:     vim.Command,
			Keys:     [][]string{{"u"}},
			Modes:    normalOnly,
			Complete: true,
			Exec:     execUndo,
		},
		{
			Name:     "redo",
			Kind:     vim.Command,
			Keys:     [][]string{{"<C-r>"}},
			Modes:    normalOnly,
			Complete: true,
			Exec:     execRedo,
		},
		{
			Name:       "insert",
			Kind:       vim.Command,
			Keys:       [][]string{{"i"}, {"<Insert>"}},
			Modes:      normalOnly,
			Repeatable: true,
			Exec:       enterInsert(func(_ *vim.State, r cursor.Range) cursor.Position { return r.Stop }),
		},
		{
			Name:       "append",
			Kind:       vim.Command,
			Keys:       [][]string{{"a"}},
			Modes:      normalOnly,
			Repeatable: true,
			Exec: enterInsert(func(s *vim.State, r cursor.Range) cursor.Position {
				return cursor.Pos(r.Stop.Line, min(r.Stop.Column+1, s.Doc.LineLength(r.Stop.Line)))
			}),
		},
		{
			Name:       "append-line-end",
			Kind:       vim.Command,
			Keys:       [][]string{{"A"}},
			Modes:      normalOnly,
			Repeatable: true,
			Exec: enterInsert(func(s *vim.State, r cursor.Range) cursor.Position {
				return s.Doc.LineEnd(r.Stop.Line)
			}),
		},
		{
			Name:       "insert-line-start",
			Kind:       vim.Command,
			Keys:       [][]string{{"I"}},
			Modes:      normalOnly,
			Repeatable: true,
			Exec: enterInsert(func(s *vim.State, r cursor.Range) cursor.Position {
				return firstNonBlank(s.Doc, r.Stop.Line)
			}),
		},
		{
			Name:       "open-line-below",
			Kind:       vim.Command,
			Keys:       [][]string{{"o"}},
			Modes:      normalOnly,
			Repeatable: true,
			Exec:       openLine(true),
		},
		{
			Name:       "open-line-above",
			Kind:       vim.Command,
			Keys:       [][]string{{"O"}},
			Modes:      normalOnly,
			Repeatable: true,
			Exec:       openLine(false),
		},
		{
			Name:       "replace-mode",
			Kind:       vim.Command,
			Keys:       [][]string{{"R"}},
			Modes:      normalOnly,
			Repeatable: true,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				s.SetMode(mode.Replace)
				return nil
			},
		},
		visualToggle("visual", "v", mode.Visual),
		visualToggle("visual-line", "V", mode.VisualLine),
		visualToggle("visual-block", "<C-v>", mode.VisualBlock),
		{
			Name:     "visual-swap-ends",
			Kind:     vim.Command,
			Keys:     [][]string{{"o"}},
			Modes:    visualModes,
			Complete: true,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range { return r.Flip() })
				return nil
			},
		},
		{
			Name:     "reselect-visual",
			Kind:     vim.Command,
			Keys:     [][]string{{"g", "v"}},
			Modes:    normalOnly,
			Complete: true,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				sel, ok := s.LastVisualSelection.Get()
				if !ok {
					return nil
				}
				s.SetMode(sel.Mode)
				s.Cursors.Replace([]cursor.Range{cursor.NewRange(s.Doc.Clamp(sel.Start), s.Doc.Clamp(sel.End))})
				return nil
			},
		},
		{
			Name:     "escape",
			Kind:     vim.Command,
			Keys:     [][]string{{key.Escape}},
			Modes:    motionModes,
			Complete: true,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				if s.Mode().IsVisual() {
					leaveVisual(s)
					return nil
				}
				s.Cursors.KeepPrimary()
				s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range { return r.Collapse() })
				return nil
			},
		},
		{
			Name:     "copy",
			Kind:     vim.Command,
			Keys:     [][]string{{key.Copy}},
			Modes:    motionModes,
			Complete: true,
			Exec:     execCopy,
		},
		{
			Name:     "dot-repeat",
			Kind:     vim.Command,
			Keys:     [][]string{{"."}},
			Modes:    normalOnly,
			Complete: true,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				if len(s.PreviousFullAction) == 0 {
					return nil
				}
				s.Queue(transform.Dot(s.Recorded.EffectiveCount()))
				return nil
			},
		},
		{
			Name:          "record-macro",
			Kind:          vim.Command,
			Keys:          [][]string{{"q", vim.RegisterArg}},
			Modes:         normalOnly,
			Complete:      true,
			NoMacroRecord: true,
			When:          func(s *vim.State, _ []string) bool { return !s.IsRecordingMacro() },
			Exec:          execStartRecording,
		},
		{
			Name:          "stop-recording",
			Kind:          vim.Command,
			Keys:          [][]string{{"q"}},
			Modes:         normalOnly,
			Complete:      true,
			NoMacroRecord: true,
			When:          func(s *vim.State, _ []string) bool { return s.IsRecordingMacro() },
			Exec:          execStopRecording,
		},
		{
			Name:     "replay-macro",
			Kind:     vim.Command,
			Keys:     [][]string{{"@", vim.RegisterArg}},
			Modes:    normalOnly,
			Complete: true,
			Exec: func(_ context.Context, s *vim.State, a vim.Action) error {
				reg := strings.ToLower(a.Arg(vim.RegisterArg))
				s.Queue(transform.Macro(reg, s.Recorded.EffectiveCount()))
				return nil
			},
		},
		{
			Name:     "replay-last-macro",
			Kind:     vim.Command,
			Keys:     [][]string{{"@", "@"}},
			Modes:    normalOnly,
			Complete: true,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				reg, ok := s.Registers.LastMacro()
				if !ok {
					return vim.NewError(vim.ErrNoPreviousRegister, "")
				}
				s.Queue(transform.Macro(reg, s.Recorded.EffectiveCount()))
				return nil
			},
		},
		{
			Name:       "delete-surround",
			Kind:       vim.Command,
			Keys:       [][]string{{"d", "s", vim.CharacterArg}},
			Modes:      normalOnly,
			Complete:   true,
			Repeatable: true,
			When:       vim.NoOperatorPending,
			// Once "ds" is typed only the surround character is missing.
			WaitingPseudo: mo.Some(mode.SurroundInput),
			Exec:          execDeleteSurround,
		},
		{
			Name:     "jump-back",
			Kind:     vim.Command,
			Keys:     [][]string{{"<C-o>"}},
			Modes:    normalOnly,
			Complete: true,
			Exec:     execJumpBack,
		},
		{
			Name:     "jump-forward",
			Kind:     vim.Command,
			Keys:     [][]string{{"<C-i>"}, {"<Tab>"}},
			Modes:    normalOnly,
			Complete: true,
			Exec:     execJumpForward,
		},
		{
			Name:  "search-forward",
			Kind:  vim.Command,
			Keys:  [][]string{{"/"}},
			Modes: motionModes,
			When:  vim.NoOperatorPending,
			Exec:  openPrompt(mode.SearchInProgress, true),
		},
		{
			Name:  "search-backward",
			Kind:  vim.Command,
			Keys:  [][]string{{"?"}},
			Modes: motionModes,
			When:  vim.NoOperatorPending,
			Exec:  openPrompt(mode.SearchInProgress, false),
		},
		{
			Name:  "commandline",
			Kind:  vim.Command,
			Keys:  [][]string{{":"}},
			Modes: motionModes,
			When:  vim.NoOperatorPending,
			Exec:  openPrompt(mode.CommandlineInProgress, true),
		},
	}
}

func execDeleteChar(_ context.Context, s *vim.State, _ vim.Action) error {
	n := countOr(s, 1)
	for i, r := range s.Cursors.All() {
		p := r.Stop
		length := s.Doc.LineLength(p.Line)
		if length == 0 || p.Column >= length {
			continue
		}
		end := p.WithColumn(min(p.Column+n, length))
		text := s.Doc.TextRange(p, end)
		s.Queue(transform.Delete(i, p, end).WithCursor(cursor.At(p)))
		if err := storeText(s, i, text, vim.Charwise, false); err != nil {
			return err
		}
	}
	return nil
}

func putText(after bool) vim.CommandFunc {
	return func(_ context.Context, s *vim.State, _ vim.Action) error {
		content, err := s.Registers.Get(s.Recorded.Register)
		if err != nil {
			return err
		}
		n := countOr(s, 1)
		cursors := s.Cursors.All()
		for i, r := range cursors {
			text := content.Joined()
			if len(content.Text) == len(cursors) {
				text = content.Text[i]
			}
			p := r.Stop

			if content.Mode == vim.Linewise {
				block := strings.Repeat(text+"\n", n)
				at := cursor.Pos(p.Line, 0)
				landing := at
				if after {
					block = "\n" + strings.TrimSuffix(block, "\n")
					at = s.Doc.LineEnd(p.Line)
					landing = cursor.Pos(p.Line+1, 0)
				}
				s.Queue(transform.Insert(i, at, block).WithCursor(cursor.At(landing)))
				continue
			}

			at := p
			if after && s.Doc.LineLength(p.Line) > 0 {
				at = p.WithColumn(min(p.Column+1, s.Doc.LineLength(p.Line)))
			}
			block := strings.Repeat(text, n)
			end := cursor.Edit{Start: at, End: at, NewText: block}.EndOfInsert()
			s.Queue(transform.Insert(i, at, block).WithCursor(cursor.At(end.Translate(0, -1))))
		}
		return nil
	}
}

func restoreCursors(s *vim.State, positions []cursor.Position) {
	if len(positions) == 0 {
		return
	}
	ranges := make([]cursor.Range, len(positions))
	for i, p := range positions {
		ranges[i] = cursor.At(p)
	}
	s.Cursors.Replace(ranges)
}

func execUndo(_ context.Context, s *vim.State, _ vim.Action) error {
	if s.History == nil {
		return vim.NewError(vim.ErrAlreadyAtOldestChange, "")
	}
	for range countOr(s, 1) {
		positions, err := s.History.Undo()
		if errors.Is(err, history.ErrNothingToUndo) {
			return vim.NewError(vim.ErrAlreadyAtOldestChange, "")
		}
		if err != nil {
			return err
		}
		restoreCursors(s, positions)
	}
	return nil
}

func execRedo(_ context.Context, s *vim.State, _ vim.Action) error {
	if s.History == nil {
		return vim.NewError(vim.ErrAlreadyAtNewestChange, "")
	}
	for range countOr(s, 1) {
		positions, err := s.History.Redo()
		if errors.Is(err, history.ErrNothingToRedo) {
			return vim.NewError(vim.ErrAlreadyAtNewestChange, "")
		}
		if err != nil {
			return err
		}
		restoreCursors(s, positions)
	}
	return nil
}

func enterInsert(at func(s *vim.State, r cursor.Range) cursor.Position) vim.CommandFunc {
	return func(_ context.Context, s *vim.State, _ vim.Action) error {
		s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range { return cursor.At(at(s, r)) })
		s.SetMode(mode.Insert)
		return nil
	}
}

func openLine(below bool) vim.CommandFunc {
	return func(_ context.Context, s *vim.State, _ vim.Action) error {
		for i, r := range s.Cursors.All() {
			line := r.Stop.Line
			if below {
				s.Queue(transform.Insert(i, s.Doc.LineEnd(line), "\n").WithCursor(cursor.At(cursor.Pos(line+1, 0))))
			} else {
				s.Queue(transform.Insert(i, cursor.Pos(line, 0), "\n").WithCursor(cursor.At(cursor.Pos(line, 0))))
			}
		}
		s.SetMode(mode.Insert)
		return nil
	}
}

// visualToggle enters target from Normal, switches between Visual
// sub-modes, and leaves Visual when target is already active.
func visualToggle(name, k string, target mode.Mode) *vim.Definition {
	return &vim.Definition{
		Name:     name,
		Kind:     vim.Command,
		Keys:     [][]string{{k}},
		Modes:    motionModes,
		Complete: true,
		Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
			switch current := s.Mode(); {
			case current == target:
				leaveVisual(s)
			case current.IsVisual():
				s.SetMode(target)
			default:
				s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range { return r.Collapse() })
				s.SetMode(target)
			}
			return nil
		},
	}
}

func execCopy(_ context.Context, s *vim.State, _ vim.Action) error {
	if !s.Mode().IsVisual() {
		return nil
	}
	for i, r := range s.Cursors.All() {
		start, end := r.Ordered()
		text := s.Doc.TextRange(start, rightThroughLineBreak(s.Doc, end))
		if err := s.Registers.PutEntry("+", i, text, vim.Charwise); err != nil {
			return err
		}
	}
	leaveVisual(s)
	return nil
}

func execStartRecording(_ context.Context, s *vim.State, a vim.Action) error {
	reg := a.Arg(vim.RegisterArg)
	switch reg {
	case vim.LastInsertedRegister, ":", "/", vim.BlackHoleRegister, "-", "*", "+":
		return vim.NewError(vim.ErrInvalidRegister, reg)
	}
	s.Macro = mo.Some(&vim.MacroRecording{Register: reg})
	s.Status = "recording @" + reg
	return nil
}

func execStopRecording(_ context.Context, s *vim.State, _ vim.Action) error {
	rec, ok := s.Macro.Get()
	if !ok {
		return nil
	}
	s.Macro = mo.None[*vim.MacroRecording]()
	s.Status = ""
	if len(rec.Actions) == 0 {
		return nil
	}
	return s.Registers.Put(rec.Register, vim.RegisterContent{Actions: rec.Actions})
}

func execDeleteSurround(_ context.Context, s *vim.State, a vim.Action) error {
	ch := key.Character(a.Arg(vim.CharacterArg))
	for i, r := range s.Cursors.All() {
		openPos, closePos, ok := findSurround(s.Doc, r.Stop, ch)
		if !ok {
			continue
		}
		s.Queue(
			transform.Delete(i, openPos, openPos.Right()).WithCursor(cursor.At(openPos)),
			transform.Delete(i, closePos, closePos.Right()),
		)
	}
	return nil
}

func execJumpBack(_ context.Context, s *vim.State, _ vim.Action) error {
	j, ok := s.Jumps.Back(vim.Jump{EditorID: s.EditorID, Position: s.Cursors.Primary().Stop})
	if !ok {
		return vim.NewError(vim.ErrJumpListEmpty, "")
	}
	return jumpTo(s, j)
}

func execJumpForward(_ context.Context, s *vim.State, _ vim.Action) error {
	j, ok := s.Jumps.Forward()
	if !ok {
		return vim.NewError(vim.ErrJumpListEmpty, "")
	}
	return jumpTo(s, j)
}

func jumpTo(s *vim.State, j vim.Jump) error {
	if j.EditorID != s.EditorID {
		s.Status = fmt.Sprintf("jump is in editor %s", j.EditorID)
		return nil
	}
	s.Cursors.Replace([]cursor.Range{cursor.At(s.Doc.Clamp(j.Position))})
	return nil
}

func openPrompt(m mode.Mode, forward bool) vim.CommandFunc {
	return func(_ context.Context, s *vim.State, _ vim.Action) error {
		s.Commandline = ""
		if m == mode.SearchInProgress {
			s.Search.Forward = forward
		}
		s.SetMode(m)
		return nil
	}
}
