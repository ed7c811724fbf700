package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/document"
	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/vim"
)

func newState(text string, m mode.Mode, cursors ...cursor.Position) *vim.State {
	s := vim.NewState("test", document.FromString(text), m, nil)
	s.Registers = vim.NewRegisters()
	s.Jumps = vim.NewJumpTracker(10)
	if len(cursors) > 0 {
		ranges := make([]cursor.Range, len(cursors))
		for i, p := range cursors {
			ranges[i] = cursor.At(p)
		}
		s.Cursors.Replace(ranges)
	}
	return s
}

func exec(t *testing.T, r *vim.Registry, s *vim.State, name string, keys ...string) error {
	t.Helper()
	def := r.Get(name)
	require.NotNil(t, def, name)
	require.NotNil(t, def.Exec, name)
	return def.Exec(context.Background(), s, vim.NewAction(def, keys...))
}

func TestDefaultsRegister(t *testing.T) {
	r := vim.NewRegistry()
	require.NoError(t, Register(r))
	for _, name := range []string{"left", "word", "delete", "yank", "change", "dot-repeat", "delete-surround", "prompt-submit"} {
		assert.NotNil(t, r.Get(name), name)
	}
}

func TestResolveBuiltins(t *testing.T) {
	r := NewRegistry()
	s := newState("one two", mode.Normal)

	res := r.Resolve(s, []string{"d"})
	assert.Equal(t, vim.WaitingOnKeys, res.Status)
	assert.True(t, res.HasExact)

	res = r.Resolve(s, []string{"d", "w"})
	require.Equal(t, vim.Matched, res.Status)
	assert.Equal(t, "delete", res.Action.Name())
	assert.Equal(t, 1, res.Consumed)

	res = r.Resolve(s, []string{"d", "s"})
	assert.Equal(t, vim.WaitingOnKeys, res.Status)
	assert.Equal(t, mo.Some(mode.SurroundInput), res.Pseudo)

	res = r.Resolve(s, []string{"0"})
	require.Equal(t, vim.Matched, res.Status)
	assert.Equal(t, "line-begin", res.Action.Name())

	s.Recorded.Count = 2
	res = r.Resolve(s, []string{"0"})
	require.Equal(t, vim.Matched, res.Status)
	assert.Equal(t, "count", res.Action.Name())

	s.SetMode(mode.Insert)
	res = r.Resolve(s, []string{"w"})
	require.Equal(t, vim.Matched, res.Status)
	assert.Equal(t, "type-character", res.Action.Name())
}

func TestWordMotions(t *testing.T) {
	doc := document.FromString("one two  three\nfour")

	tests := []struct {
		name string
		fn   func(document.Document, cursor.Position) cursor.Position
		from cursor.Position
		want cursor.Position
	}{
		{"w from start", nextWordStart, cursor.Pos(0, 0), cursor.Pos(0, 4)},
		{"w over double space", nextWordStart, cursor.Pos(0, 4), cursor.Pos(0, 9)},
		{"w across line", nextWordStart, cursor.Pos(0, 9), cursor.Pos(1, 0)},
		{"w at end", nextWordStart, cursor.Pos(1, 2), cursor.Pos(1, 4)},
		{"b across line", prevWordStart, cursor.Pos(1, 0), cursor.Pos(0, 9)},
		{"b inside word", prevWordStart, cursor.Pos(0, 5), cursor.Pos(0, 4)},
		{"b at start", prevWordStart, cursor.Pos(0, 0), cursor.Pos(0, 0)},
		{"e", nextWordEnd, cursor.Pos(0, 0), cursor.Pos(0, 2)},
		{"e from word end", nextWordEnd, cursor.Pos(0, 2), cursor.Pos(0, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(doc, tt.from))
		})
	}
}

func TestFindChar(t *testing.T) {
	doc := document.FromString("a(b)c(d)")

	p, ok := findChar(doc, cursor.Pos(0, 0), "(", 2, true, false)
	require.True(t, ok)
	assert.Equal(t, cursor.Pos(0, 5), p)

	p, ok = findChar(doc, cursor.Pos(0, 0), ")", 1, true, true)
	require.True(t, ok)
	assert.Equal(t, cursor.Pos(0, 2), p)

	p, ok = findChar(doc, cursor.Pos(0, 7), "(", 1, false, false)
	require.True(t, ok)
	assert.Equal(t, cursor.Pos(0, 5), p)

	_, ok = findChar(doc, cursor.Pos(0, 0), "z", 1, true, false)
	assert.False(t, ok)
}

func TestFindMotionFailsWithoutMatch(t *testing.T) {
	r := NewRegistry()
	s := newState("abc", mode.Normal)
	def := r.Get("find-forward")

	res, err := def.Move(context.Background(), s, vim.NewAction(def, "f", "z"), cursor.Pos(0, 0), 0)
	require.NoError(t, err)
	assert.True(t, res.Failed)

	res, err = def.Move(context.Background(), s, vim.NewAction(def, "f", "c"), cursor.Pos(0, 0), 0)
	require.NoError(t, err)
	assert.Equal(t, cursor.Pos(0, 2), res.Stop)
}

func TestFindSurround(t *testing.T) {
	doc := document.FromString(`x(a(b)c)y "q"`)

	open, closing, ok := findSurround(doc, cursor.Pos(0, 4), "(")
	require.True(t, ok)
	assert.Equal(t, cursor.Pos(0, 3), open)
	assert.Equal(t, cursor.Pos(0, 5), closing)

	open, closing, ok = findSurround(doc, cursor.Pos(0, 6), ")")
	require.True(t, ok)
	assert.Equal(t, cursor.Pos(0, 1), open)
	assert.Equal(t, cursor.Pos(0, 7), closing)

	open, closing, ok = findSurround(doc, cursor.Pos(0, 11), `"`)
	require.True(t, ok)
	assert.Equal(t, cursor.Pos(0, 10), open)
	assert.Equal(t, cursor.Pos(0, 12), closing)

	_, _, ok = findSurround(doc, cursor.Pos(0, 4), "[")
	assert.False(t, ok)
}

func TestDeleteCharPerCursor(t *testing.T) {
	r := NewRegistry()
	s := newState("abc\ndef", mode.Normal, cursor.Pos(0, 1), cursor.Pos(1, 0))

	require.NoError(t, exec(t, r, s, "delete-char", "x"))

	ts := s.Recorded.TakeTransformations()
	require.Len(t, ts, 2)
	assert.Equal(t, transform.DeleteRange, ts[0].Kind)
	assert.Equal(t, cursor.Pos(0, 1), ts[0].Start)
	assert.Equal(t, cursor.Pos(0, 2), ts[0].End)
	assert.Equal(t, 1, ts[1].CursorIndex)

	c, err := s.Registers.Get(vim.DefaultRegister)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d"}, c.Text)
}

func TestPutLinewiseAfter(t *testing.T) {
	r := NewRegistry()
	s := newState("a\nb", mode.Normal)
	require.NoError(t, s.Registers.Put(vim.DefaultRegister, vim.RegisterContent{Text: []string{"line"}, Mode: vim.Linewise}))

	require.NoError(t, exec(t, r, s, "put-after", "p"))

	ts := s.Recorded.TakeTransformations()
	require.Len(t, ts, 1)
	assert.Equal(t, cursor.Pos(0, 1), ts[0].Start)
	assert.Equal(t, "\nline", ts[0].Text)
	assert.Equal(t, mo.Some(cursor.At(cursor.Pos(1, 0))), ts[0].Cursor)
}

func TestPutEmptyRegister(t *testing.T) {
	r := NewRegistry()
	s := newState("a", mode.Normal)
	err := exec(t, r, s, "put-after", "p")
	assert.True(t, vim.IsError(err))
}

func TestCountAccumulates(t *testing.T) {
	r := NewRegistry()
	s := newState("", mode.Normal)
	require.NoError(t, exec(t, r, s, "count", "1"))
	require.NoError(t, exec(t, r, s, "count", "2"))
	assert.Equal(t, 12, s.Recorded.Count)
}

func TestVisualToggle(t *testing.T) {
	r := NewRegistry()
	s := newState("hello", mode.Normal, cursor.Pos(0, 2))

	require.NoError(t, exec(t, r, s, "visual", "v"))
	assert.Equal(t, mode.Visual, s.Mode())

	require.NoError(t, exec(t, r, s, "visual-line", "V"))
	assert.Equal(t, mode.VisualLine, s.Mode())

	require.NoError(t, exec(t, r, s, "visual-line", "V"))
	assert.Equal(t, mode.Normal, s.Mode())
	sel, ok := s.LastVisualSelection.Get()
	require.True(t, ok)
	assert.Equal(t, mode.VisualLine, sel.Mode)
}

func TestMacroRecordingLifecycle(t *testing.T) {
	r := NewRegistry()
	s := newState("", mode.Normal)

	require.NoError(t, exec(t, r, s, "record-macro", "q", "a"))
	require.True(t, s.IsRecordingMacro())

	rec := s.Macro.MustGet()
	rec.Actions = append(rec.Actions, vim.NewAction(r.Get("delete-char"), "x"))

	require.NoError(t, exec(t, r, s, "stop-recording", "q"))
	assert.False(t, s.IsRecordingMacro())

	c, err := s.Registers.Get("a")
	require.NoError(t, err)
	assert.True(t, c.IsMacro())

	err = exec(t, r, s, "record-macro", "q", "_")
	assert.True(t, vim.IsError(err))
}

func TestSearchSubmit(t *testing.T) {
	r := NewRegistry()
	s := newState("foo bar foo", mode.Normal)

	require.NoError(t, exec(t, r, s, "search-forward", "/"))
	assert.Equal(t, mode.SearchInProgress, s.Mode())
	for _, k := range []string{"b", "a", "r"} {
		require.NoError(t, exec(t, r, s, "prompt-character", k))
	}
	require.NoError(t, exec(t, r, s, "prompt-submit", "<CR>"))

	assert.Equal(t, mode.Normal, s.Mode())
	assert.Equal(t, cursor.Pos(0, 4), s.Cursors.Primary().Stop)
	assert.Equal(t, "bar", s.Search.Pattern)

	require.NoError(t, exec(t, r, s, "search-forward", "/"))
	s.Commandline = "zzz"
	err := exec(t, r, s, "prompt-submit", "<CR>")
	ve, ok := vim.AsError(err)
	require.True(t, ok)
	assert.Equal(t, vim.ErrPatternNotFound, ve.Code)
	assert.Equal(t, mode.Normal, s.Mode())
}

func TestPromptBackspaceCancels(t *testing.T) {
	r := NewRegistry()
	s := newState("", mode.Normal)
	require.NoError(t, exec(t, r, s, "commandline", ":"))
	require.NoError(t, exec(t, r, s, "prompt-backspace", "<BS>"))
	assert.Equal(t, mode.Normal, s.Mode())
	assert.True(t, s.Recorded.Finished())
}

func TestCommandlineSubmit(t *testing.T) {
	r := NewRegistry()
	s := newState("a\nb\nc", mode.Normal)

	require.NoError(t, exec(t, r, s, "commandline", ":"))
	s.Commandline = "frobnicate"
	err := exec(t, r, s, "prompt-submit", "<CR>")
	ve, ok := vim.AsError(err)
	require.True(t, ok)
	assert.Equal(t, vim.ErrNotAnEditorCommand, ve.Code)

	var ran string
	s.Ex = func(_ context.Context, command string) error {
		ran = command
		return nil
	}
	require.NoError(t, exec(t, r, s, "commandline", ":"))
	s.Commandline = "w"
	require.NoError(t, exec(t, r, s, "prompt-submit", "<CR>"))
	assert.Equal(t, "w", ran)

	require.NoError(t, exec(t, r, s, "commandline", ":"))
	s.Commandline = "3"
	require.NoError(t, exec(t, r, s, "prompt-submit", "<CR>"))
	assert.Equal(t, cursor.Pos(2, 0), s.Cursors.Primary().Stop)
}

func TestOperateDeleteLinewise(t *testing.T) {
	s := newState("a\nb\nc", mode.Normal)
	s.Recorded.RegisterMode = mo.Some(vim.Linewise)

	r, err := operateDelete(context.Background(), s, vim.Action{}, cursor.Pos(0, 0), cursor.Pos(1, 1), 0)
	require.NoError(t, err)
	assert.Equal(t, cursor.At(cursor.Pos(0, 0)), r)

	ts := s.Recorded.TakeTransformations()
	require.Len(t, ts, 1)
	assert.Equal(t, cursor.Pos(0, 0), ts[0].Start)
	assert.Equal(t, cursor.Pos(2, 0), ts[0].End)

	c, err := s.Registers.Get(vim.DefaultRegister)
	require.NoError(t, err)
	assert.Equal(t, []string{"a\nb"}, c.Text)
	assert.Equal(t, vim.Linewise, c.Mode)
}

func TestRepeatDeleteLastLine(t *testing.T) {
	s := newState("a\nb", mode.Normal)

	r, err := repeatDelete(context.Background(), s, vim.Action{}, cursor.Pos(1, 0), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, cursor.At(cursor.Pos(0, 0)), r)

	ts := s.Recorded.TakeTransformations()
	require.Len(t, ts, 1)
	assert.Equal(t, cursor.Pos(0, 1), ts[0].Start)
	assert.Equal(t, cursor.Pos(1, 1), ts[0].End)
}

func TestYankUsesRegisterZero(t *testing.T) {
	s := newState("hello world", mode.Normal)

	_, err := operateYank(context.Background(), s, vim.Action{}, cursor.Pos(0, 0), cursor.Pos(0, 5), 0)
	require.NoError(t, err)
	assert.Empty(t, s.Recorded.Transformations)

	c, err := s.Registers.Get(vim.LastYankRegister)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, c.Text)
}

func TestTypeTextReplacesSelection(t *testing.T) {
	s := newState("abcdef", mode.Insert)
	s.Cursors.Replace([]cursor.Range{cursor.NewRange(cursor.Pos(0, 1), cursor.Pos(0, 3)), cursor.At(cursor.Pos(0, 5))})

	typeText(s, "X")

	ts := s.Recorded.TakeTransformations()
	require.Len(t, ts, 2)
	assert.Equal(t, transform.ReplaceRange, ts[0].Kind)
	assert.Equal(t, transform.InsertText, ts[1].Kind)
	assert.True(t, s.Recorded.IsInsertion)
	assert.Equal(t, "X", s.Recorded.InsertedText)

	got := transform.ResultCursors(ts)
	assert.Equal(t, cursor.At(cursor.Pos(0, 2)), got[0])
	assert.Equal(t, cursor.At(cursor.Pos(0, 5)), got[1])
}

func TestInsertBackspaceJoinsLines(t *testing.T) {
	r := NewRegistry()
	s := newState("ab\ncd", mode.Insert, cursor.Pos(1, 0))
	s.Recorded.InsertedText = "xy"

	require.NoError(t, exec(t, r, s, "insert-backspace", "<BS>"))

	ts := s.Recorded.TakeTransformations()
	require.Len(t, ts, 1)
	assert.Equal(t, cursor.Pos(0, 2), ts[0].Start)
	assert.Equal(t, cursor.Pos(1, 0), ts[0].End)
	assert.Equal(t, "x", s.Recorded.InsertedText)
}

func TestUndoWithoutHistory(t *testing.T) {
	r := NewRegistry()
	s := newState("a", mode.Normal)
	err := exec(t, r, s, "undo", "u")
	var ve *vim.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, vim.ErrAlreadyAtOldestChange, ve.Code)
}
