package actions

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/vim"
)

func promptActions() []*vim.Definition {
	return []*vim.Definition{
		{
			Name:  "prompt-character",
			Kind:  vim.Command,
			Keys:  [][]string{{vim.CharacterArg}},
			Modes: promptModes,
			Exec: func(_ context.Context, s *vim.State, a vim.Action) error {
				s.Commandline += key.Character(a.Arg(vim.CharacterArg))
				return nil
			},
		},
		{
			Name:  "prompt-backspace",
			Kind:  vim.Command,
			Keys:  [][]string{{key.Backspace}},
			Modes: promptModes,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				if s.Commandline == "" {
					closePrompt(s)
					s.Recorded.Finish()
					return nil
				}
				_, size := utf8.DecodeLastRuneInString(s.Commandline)
				s.Commandline = s.Commandline[:len(s.Commandline)-size]
				return nil
			},
		},
		{
			Name:     "prompt-cancel",
			Kind:     vim.Command,
			Keys:     [][]string{{key.Escape}, {key.CtrlC}},
			Modes:    promptModes,
			Complete: true,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				closePrompt(s)
				return nil
			},
		},
		{
			Name:     "prompt-submit",
			Kind:     vim.Command,
			Keys:     [][]string{{key.Enter}},
			Modes:    promptModes,
			Complete: true,
			IsJump:   true,
			Exec: func(ctx context.Context, s *vim.State, _ vim.Action) error {
				if s.Mode() == mode.SearchInProgress {
					return submitSearch(s)
				}
				return submitCommandline(ctx, s)
			},
		},
	}
}

// closePrompt clears the prompt and returns to the mode it was opened from.
func closePrompt(s *vim.State) {
	back := mode.Normal
	if prev := s.Modes.Previous(); prev.IsVisual() {
		back = prev
	}
	s.Commandline = ""
	s.SetMode(back)
}

func submitSearch(s *vim.State) error {
	pattern := s.Commandline
	if pattern == "" {
		pattern = s.Search.Pattern
	}
	closePrompt(s)
	if pattern == "" {
		return vim.NewError(vim.ErrPatternNotFound, "")
	}
	s.Search.Pattern = pattern
	s.Registers.SetLastSearch(pattern)

	primary := s.Cursors.Primary()
	p, ok := findText(s.Doc, primary.Stop, pattern, s.Search.Forward)
	if !ok {
		return vim.NewError(vim.ErrPatternNotFound, pattern)
	}
	if s.Mode().IsVisual() {
		s.Cursors.Replace([]cursor.Range{primary.WithStop(p)})
	} else {
		s.Cursors.Replace([]cursor.Range{cursor.At(p)})
	}
	return nil
}

func submitCommandline(ctx context.Context, s *vim.State) error {
	command := strings.TrimSpace(s.Commandline)
	closePrompt(s)
	if command == "" {
		return nil
	}
	s.Registers.SetLastCommandline(command)

	if line, err := strconv.Atoi(command); err == nil {
		line = min(max(line, 1), s.Doc.LineCount()) - 1
		s.Cursors.Replace([]cursor.Range{cursor.At(firstNonBlank(s.Doc, line))})
		return nil
	}
	if s.Ex == nil {
		return vim.NewError(vim.ErrNotAnEditorCommand, command)
	}
	return s.Ex(ctx, command)
}
