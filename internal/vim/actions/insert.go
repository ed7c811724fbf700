package actions

import (
	"context"
	"unicode/utf8"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/vim"
)

func insertActions() []*vim.Definition {
	return []*vim.Definition{
		{
			Name:  "type-character",
			Kind:  vim.Command,
			Keys:  [][]string{{vim.CharacterArg}},
			Modes: insertOnly,
			Exec: func(_ context.Context, s *vim.State, a vim.Action) error {
				typeText(s, key.Character(a.Arg(vim.CharacterArg)))
				return nil
			},
		},
		{
			Name:  "insert-tab",
			Kind:  vim.Command,
			Keys:  [][]string{{"<Tab>"}},
			Modes: typingModes,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				typeText(s, "\t")
				return nil
			},
		},
		{
			Name:  "insert-newline",
			Kind:  vim.Command,
			Keys:  [][]string{{key.Enter}},
			Modes: typingModes,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				typeText(s, "\n")
				return nil
			},
		},
		{
			Name:  "insert-backspace",
			Kind:  vim.Command,
			Keys:  [][]string{{key.Backspace}},
			Modes: insertOnly,
			Exec:  execInsertBackspace,
		},
		{
			Name:  "replace-character",
			Kind:  vim.Command,
			Keys:  [][]string{{vim.CharacterArg}},
			Modes: replaceOnly,
			Exec:  execReplaceCharacter,
		},
		{
			Name:  "replace-backspace",
			Kind:  vim.Command,
			Keys:  [][]string{{key.Backspace}},
			Modes: replaceOnly,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range { return cursor.At(r.Stop.Left()) })
				return nil
			},
		},
		{
			Name:     "exit-insert",
			Kind:     vim.Command,
			Keys:     [][]string{{key.Escape}},
			Modes:    typingModes,
			Complete: true,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range { return cursor.At(r.Stop.Left()) })
				s.SetMode(mode.Normal)
				return nil
			},
		},
		{
			Name:     "insert-one-command",
			Kind:     vim.Command,
			Keys:     [][]string{{"<C-o>"}},
			Modes:    insertOnly,
			Complete: true,
			Exec: func(_ context.Context, s *vim.State, _ vim.Action) error {
				s.ReturnToInsertAfterCommand = true
				s.SetMode(mode.Normal)
				return nil
			},
		},
	}
}

// typeText inserts text at every cursor, replacing any selection.
func typeText(s *vim.State, text string) {
	s.Recorded.IsInsertion = true
	s.Recorded.InsertedText += text
	landing := func(p cursor.Position) cursor.Range {
		return cursor.At(cursor.Edit{Start: p, End: p, NewText: text}.EndOfInsert())
	}
	for i, r := range s.Cursors.All() {
		if r.IsEmpty() {
			s.Queue(transform.Insert(i, r.Stop, text).WithCursor(landing(r.Stop)))
			continue
		}
		start, end := r.Ordered()
		s.Queue(transform.Replace(i, start, end, text).WithCursor(landing(start)))
	}
}

func execInsertBackspace(_ context.Context, s *vim.State, _ vim.Action) error {
	if t := s.Recorded.InsertedText; t != "" {
		_, size := utf8.DecodeLastRuneInString(t)
		s.Recorded.InsertedText = t[:len(t)-size]
	}
	for i, r := range s.Cursors.All() {
		p := r.Stop
		switch {
		case !r.IsEmpty():
			start, end := r.Ordered()
			s.Queue(transform.Delete(i, start, end).WithCursor(cursor.At(start)))
		case p.Column > 0:
			s.Queue(transform.Delete(i, p.Left(), p).WithCursor(cursor.At(p.Left())))
		case p.Line > 0:
			prev := s.Doc.LineEnd(p.Line - 1)
			s.Queue(transform.Delete(i, prev, p).WithCursor(cursor.At(prev)))
		}
	}
	return nil
}

func execReplaceCharacter(_ context.Context, s *vim.State, a vim.Action) error {
	ch := key.Character(a.Arg(vim.CharacterArg))
	s.Recorded.IsInsertion = true
	s.Recorded.InsertedText += ch
	for i, r := range s.Cursors.All() {
		p := r.Stop
		landing := cursor.At(p.Right())
		if p.Column < s.Doc.LineLength(p.Line) {
			s.Queue(transform.Replace(i, p, p.Right(), ch).WithCursor(landing))
		} else {
			s.Queue(transform.Insert(i, p, ch).WithCursor(landing))
		}
	}
	return nil
}
