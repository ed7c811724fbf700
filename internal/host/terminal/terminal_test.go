package terminal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/host/memory"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/modehandler"
	"github.com/dshills/modalcore/internal/vim"
	"github.com/dshills/modalcore/internal/vim/actions"
)

func TestKeyNotation(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want string
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), "a"},
		{"shifted rune", tcell.NewEventKey(tcell.KeyRune, 'A', tcell.ModShift), "A"},
		{"less than", tcell.NewEventKey(tcell.KeyRune, '<', tcell.ModNone), "<lt>"},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "<Esc>"},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "<CR>"},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), "<BS>"},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), "<S-Tab>"},
		{"arrow", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), "<Up>"},
		{"function", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), "<F5>"},
		{"control", tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl), "<C-r>"},
		{"control rune", tcell.NewEventKey(tcell.KeyRune, 'o', tcell.ModCtrl), "<C-o>"},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), "<A-x>"},
		{"unnamed", tcell.NewEventKey(tcell.KeyF30, 0, tcell.ModNone), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyNotation(tt.ev))
		})
	}
}

func TestMouseClickAndDrag(t *testing.T) {
	var m mouseTracker
	toDoc := func(x, y int) (cursor.Position, bool) {
		return cursor.Pos(y, x), y < 3
	}
	mouse := func(x, y int, b tcell.ButtonMask) (modehandler.SelectionChange, bool) {
		return m.selection(tcell.NewEventMouse(x, y, b, tcell.ModNone), toDoc)
	}

	ch, ok := mouse(3, 1, tcell.Button1)
	require.True(t, ok)
	assert.Equal(t, modehandler.SelectionPointer, ch.Kind)
	assert.Equal(t, []cursor.Range{cursor.At(cursor.Pos(1, 3))}, ch.Selections)

	ch, ok = mouse(5, 1, tcell.Button1)
	require.True(t, ok)
	assert.Equal(t, []cursor.Range{cursor.NewRange(cursor.Pos(1, 3), cursor.Pos(1, 5))}, ch.Selections)

	_, ok = mouse(5, 1, tcell.Button1)
	assert.False(t, ok, "no movement, no notification")

	_, ok = mouse(5, 1, tcell.ButtonNone)
	assert.False(t, ok)

	_, ok = mouse(0, 4, tcell.Button1)
	assert.False(t, ok, "status line")

	ch, ok = mouse(1, 0, tcell.Button1)
	require.True(t, ok)
	assert.Equal(t, []cursor.Range{cursor.At(cursor.Pos(0, 1))}, ch.Selections)
}

func newSimTerminal(t *testing.T, text, path string) (*Terminal, tcell.SimulationScreen, *memory.Editor) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	ed := memory.NewEditor(text)
	term := New(screen, ed, path)
	require.NoError(t, term.Init())
	screen.SetSize(20, 4)
	t.Cleanup(term.Shutdown)
	return term, screen, ed
}

func newTerminalHandler(t *testing.T, term *Terminal) *modehandler.ModeHandler {
	t.Helper()
	h, err := modehandler.New(modehandler.DefaultConfig(), term.Host(), actions.NewRegistry())
	require.NoError(t, err)
	h.State().Registers = vim.NewRegisters()
	h.State().Jumps = vim.NewJumpTracker(10)
	return h
}

func row(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func reversed(s tcell.Screen, x, y int) bool {
	_, _, style, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	_, _, attrs := style.Decompose()
	return attrs&tcell.AttrReverse != 0
}

func TestDrawsTextAndStatus(t *testing.T) {
	term, screen, _ := newSimTerminal(t, "hello\nworld", "")
	h := newTerminalHandler(t, term)
	ctx := context.Background()

	require.NoError(t, h.HandleKeys(ctx, "l"))
	assert.Equal(t, "hello", row(screen, 0))
	assert.Equal(t, "world", row(screen, 1))
	assert.Contains(t, row(screen, 3), "NORMAL")

	require.NoError(t, h.HandleKeys(ctx, "i"))
	status := row(screen, 3)
	assert.Contains(t, status, "INSERT")
	assert.Contains(t, status, "-- INSERT --")

	require.NoError(t, h.HandleKeys(ctx, "<Esc>:wq"))
	assert.Contains(t, row(screen, 3), ":wq")
}

func TestVisualSelectionIsReversed(t *testing.T) {
	term, screen, _ := newSimTerminal(t, "abcdef", "")
	h := newTerminalHandler(t, term)

	require.NoError(t, h.HandleKeys(context.Background(), "vl"))
	assert.True(t, reversed(screen, 0, 0))
	assert.True(t, reversed(screen, 1, 0))
	assert.False(t, reversed(screen, 2, 0))
}

func TestSecondaryCursorsAreReversed(t *testing.T) {
	term, screen, _ := newSimTerminal(t, "ab\ncd", "")

	term.UpdateView(context.Background(), modehandler.ViewUpdate{
		Cursors: []cursor.Range{cursor.At(cursor.Pos(0, 0)), cursor.At(cursor.Pos(1, 1))},
		Mode:    mode.Normal,
	})
	assert.True(t, reversed(screen, 1, 1))
	assert.False(t, reversed(screen, 0, 1))
	assert.False(t, reversed(screen, 0, 0), "the primary cursor is the terminal cursor")
}

func TestRevealScrolls(t *testing.T) {
	term, screen, _ := newSimTerminal(t, "1\n2\n3\n4\n5\n6", "")
	h := newTerminalHandler(t, term)

	require.NoError(t, h.HandleKeys(context.Background(), "G"))
	assert.Equal(t, "4", row(screen, 0))
	assert.Equal(t, "6", row(screen, 2))

	require.NoError(t, h.HandleKeys(context.Background(), "gg"))
	assert.Equal(t, "1", row(screen, 0))
}

func TestEx(t *testing.T) {
	term, _, ed := newSimTerminal(t, "text", "")
	ctx := context.Background()

	err := term.Ex(ctx, "w")
	ve, ok := vim.AsError(err)
	require.True(t, ok)
	assert.Equal(t, vim.ErrNoFileName, ve.Code)

	err = term.Ex(ctx, "frobnicate")
	ve, ok = vim.AsError(err)
	require.True(t, ok)
	assert.Equal(t, vim.ErrNotAnEditorCommand, ve.Code)

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, term.Ex(ctx, "w "+path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ed.Text(), string(data))
	assert.Contains(t, term.status, "written")

	require.NoError(t, term.Ex(ctx, "q"))
	select {
	case <-term.quit:
	default:
		t.Fatal("q did not quit")
	}
	require.NoError(t, term.Ex(ctx, "q"), "quitting twice")
}

func TestRunDeliversKeysUntilQuit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	term, screen, _ := newSimTerminal(t, "hello", path)
	h := newTerminalHandler(t, term)
	sc := modehandler.NewScheduler(context.Background(), h, nil)
	defer sc.Stop()

	done := make(chan error, 1)
	go func() { done <- term.Run(context.Background(), sc) }()

	events := []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'i', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, ':', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
	}
	for _, ev := range events {
		require.Eventually(t, func() bool { return screen.PostEvent(ev) == nil }, time.Second, time.Millisecond)
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xhello", string(data))
}

func TestRunStopsOnCancel(t *testing.T) {
	term, _, _ := newSimTerminal(t, "", "")
	h := newTerminalHandler(t, term)
	sc := modehandler.NewScheduler(context.Background(), h, nil)
	defer sc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- term.Run(ctx, sc) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
