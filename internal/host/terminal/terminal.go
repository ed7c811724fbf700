// Package terminal hosts a mode handler in a terminal using tcell.
//
// Key presses become keys in Vim notation, primary-button clicks and drags
// become pointer selection changes, and view updates redraw the buffer with
// its cursors and a status line. Text and undo history are kept by an
// in-memory editor.
package terminal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/host/memory"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/logger"
	"github.com/dshills/modalcore/internal/modehandler"
	"github.com/dshills/modalcore/internal/vim"
)

var (
	styleText      = tcell.StyleDefault
	styleSelection = tcell.StyleDefault.Reverse(true)
	styleCursor    = tcell.StyleDefault.Reverse(true)
	styleMode      = tcell.StyleDefault.Reverse(true).Bold(true)
	styleStatus    = tcell.StyleDefault
)

// Terminal draws one editor view on a tcell screen.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	editor *memory.Editor
	path   string

	view   modehandler.ViewUpdate
	status string
	top    int

	mouse    mouseTracker
	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a terminal view of editor on screen. path is where ":w"
// writes; it may be empty.
func New(screen tcell.Screen, editor *memory.Editor, path string) *Terminal {
	return &Terminal{
		screen: screen,
		editor: editor,
		path:   path,
		quit:   make(chan struct{}),
	}
}

// Init initializes the screen with mouse and bracketed paste enabled.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	t.screen.EnablePaste()
	t.redraw()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.screen.Fini()
}

// Host returns the collaborators of a mode handler drawing to t.
func (t *Terminal) Host() modehandler.Host {
	return modehandler.Host{
		Editor:   t.editor,
		Executor: t.editor,
		View:     t,
		Status:   t,
		History:  t.editor.History(),
		Ex:       t.Ex,
	}
}

// Run delivers terminal events to sc until ":q", ctx cancellation or the
// screen closing.
func (t *Terminal) Run(ctx context.Context, sc *modehandler.Scheduler) error {
	go func() {
		select {
		case <-ctx.Done():
			t.Quit()
		case <-t.quit:
		}
	}()

	for {
		select {
		case <-t.quit:
			return ctx.Err()
		default:
		}

		switch ev := t.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			if k := KeyNotation(ev); k != "" {
				sc.PostKey(k)
			}
		case *tcell.EventMouse:
			t.mu.Lock()
			ch, ok := t.mouse.selection(ev, t.toDocument)
			t.mu.Unlock()
			if ok {
				sc.PostSelection(ch)
			}
		case *tcell.EventResize:
			t.screen.Sync()
			t.redraw()
		case *tcell.EventFocus:
			t.editor.SetFocused(ev.Focused)
		}
	}
}

// Quit ends Run.
func (t *Terminal) Quit() {
	t.quitOnce.Do(func() {
		close(t.quit)
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // wakes PollEvent; best-effort
	})
}

// Ex runs the command-line commands the terminal understands: w, q, wq
// and x, with an optional file name for the writes.
func (t *Terminal) Ex(_ context.Context, command string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(command), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "w", "write":
		return t.write(arg)
	case "q", "quit", "q!", "quit!":
		t.Quit()
		return nil
	case "wq", "x", "xit":
		if err := t.write(arg); err != nil {
			return err
		}
		t.Quit()
		return nil
	}
	return vim.NewError(vim.ErrNotAnEditorCommand, command)
}

func (t *Terminal) write(path string) error {
	if path == "" {
		path = t.path
	}
	if path == "" {
		return vim.NewError(vim.ErrNoFileName, "")
	}
	text := t.editor.Text()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if t.path == "" {
		t.path = path
	}
	logger.Info("file written", "path", path, "bytes", len(text))
	t.SetStatus(fmt.Sprintf("%q %dL, %dB written", path, strings.Count(text, "\n")+1, len(text)))
	return nil
}

// UpdateView implements modehandler.ViewRefresher.
func (t *Terminal) UpdateView(_ context.Context, u modehandler.ViewUpdate) {
	t.mu.Lock()
	t.view = u
	if u.Reveal && len(u.Cursors) > 0 {
		t.reveal(u.Cursors[0].Stop.Line)
	}
	t.mu.Unlock()
	t.redraw()
}

// SetStatus implements modehandler.StatusSink.
func (t *Terminal) SetStatus(msg string) {
	t.mu.Lock()
	t.status = msg
	t.mu.Unlock()
	t.redraw()
}

// textHeight is the number of rows available for text. Caller holds mu.
func (t *Terminal) textHeight() int {
	_, h := t.screen.Size()
	return max(h-1, 1)
}

// reveal scrolls line into sight. Caller holds mu.
func (t *Terminal) reveal(line int) {
	h := t.textHeight()
	switch {
	case line < t.top:
		t.top = line
	case line >= t.top+h:
		t.top = line - h + 1
	}
}

// toDocument maps a screen cell to a document position. Caller holds mu.
func (t *Terminal) toDocument(x, y int) (cursor.Position, bool) {
	if y >= t.textHeight() {
		return cursor.Position{}, false
	}
	doc := t.editor.Document()
	return doc.Clamp(cursor.Pos(t.top+y, x)), true
}

func (t *Terminal) redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	t.drawText()
	t.drawStatus()
	t.screen.Show()
}

// drawText draws the visible lines, the selections and the cursors.
// Tabs take a single cell. Caller holds mu.
func (t *Terminal) drawText() {
	doc := t.editor.Document()
	w, _ := t.screen.Size()
	h := t.textHeight()
	u := t.view

	for y := 0; y < h && t.top+y < doc.LineCount(); y++ {
		line := t.top + y
		col := 0
		for _, r := range doc.LineText(line) {
			if col >= w {
				break
			}
			if r == '\t' {
				r = ' '
			}
			style := styleText
			if u.DrawSelection && selected(u, cursor.Pos(line, col)) {
				style = styleSelection
			}
			t.screen.SetContent(col, y, r, nil, style)
			col++
		}
	}

	if len(u.Cursors) == 0 || u.Mode == mode.Disabled {
		t.screen.HideCursor()
		return
	}
	for i, c := range u.Cursors {
		p := caret(u, c)
		x, y := p.Column, p.Line-t.top
		if y < 0 || y >= h || x >= w {
			continue
		}
		if i == 0 {
			t.screen.ShowCursor(x, y)
			continue
		}
		r, _, _, _ := t.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		if r == 0 {
			r = ' '
		}
		t.screen.SetContent(x, y, r, nil, styleCursor)
	}
	t.setCursorStyle(u.Mode.CursorStyle())
}

// caret is the cell a cursor is drawn at. The stop of a forward selection
// lies one past the last selected character.
func caret(u modehandler.ViewUpdate, c cursor.Range) cursor.Position {
	if u.DrawSelection && c.IsForward() && !c.IsEmpty() && c.Stop.Column > 0 {
		return c.Stop.Left()
	}
	return c.Stop
}

func selected(u modehandler.ViewUpdate, p cursor.Position) bool {
	for _, c := range u.Cursors {
		start, end := c.Ordered()
		if u.Mode == mode.VisualLine {
			if p.Line >= start.Line && p.Line <= end.Line {
				return true
			}
			continue
		}
		if !p.Before(start) && p.Before(end) {
			return true
		}
	}
	return false
}

// drawStatus draws the mode, the prompt or status message and the pending
// keys on the last row. Caller holds mu.
func (t *Terminal) drawStatus() {
	w, h := t.screen.Size()
	y := h - 1
	u := t.view

	x := drawString(t.screen, 0, y, w, " "+u.Mode.String()+" ", styleMode)
	x++
	msg := t.status
	if u.Prompt != "" {
		msg = u.Prompt
	}
	x = drawString(t.screen, x, y, w, msg, styleStatus)
	if u.Prompt != "" {
		t.screen.ShowCursor(x, y)
	}

	if pending := strings.Join(u.PendingKeys, ""); pending != "" {
		drawString(t.screen, max(w-len(pending)-1, x+1), y, w, pending, styleStatus)
	}
}

// drawString draws s from x and returns the column after it.
func drawString(s tcell.Screen, x, y, w int, str string, style tcell.Style) int {
	for _, r := range str {
		if x >= w {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func (t *Terminal) setCursorStyle(style mode.CursorStyle) {
	var tcellStyle tcell.CursorStyle
	switch style {
	case mode.CursorBlock:
		tcellStyle = tcell.CursorStyleSteadyBlock
	case mode.CursorUnderline:
		tcellStyle = tcell.CursorStyleSteadyUnderline
	case mode.CursorBar:
		tcellStyle = tcell.CursorStyleSteadyBar
	case mode.CursorHidden:
		t.screen.HideCursor()
		return
	}
	t.screen.SetCursorStyle(tcellStyle)
}

var (
	_ modehandler.ViewRefresher = (*Terminal)(nil)
	_ modehandler.StatusSink    = (*Terminal)(nil)
)
