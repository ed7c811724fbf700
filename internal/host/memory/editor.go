// Package memory provides an in-memory host for a mode handler: editor,
// transformation executor, view refresher and status sink over a
// document.Buffer with undo tracking.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/modalcore/internal/engine/document"
	"github.com/dshills/modalcore/internal/engine/history"
	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/modehandler"
)

// ErrOverlappingEdits is returned when a batch holds overlapping edits.
var ErrOverlappingEdits = errors.New("overlapping edits")

// Editor is an in-memory editor view.
// All methods are thread-safe.
type Editor struct {
	mu sync.Mutex

	buf     *document.Buffer
	history *history.Tracker
	focused bool

	updates  []modehandler.ViewUpdate
	statuses []string
	batches  int
}

// NewEditor creates an editor holding text.
func NewEditor(text string) *Editor {
	buf := document.NewBufferFromString(text)
	return &Editor{
		buf:     buf,
		history: history.NewTracker(buf, 0),
		focused: true,
	}
}

// Host returns the collaborators a mode handler needs, all backed by e.
func (e *Editor) Host() modehandler.Host {
	return modehandler.Host{
		Editor:   e,
		Executor: e,
		View:     e,
		Status:   e,
		History:  e.history,
	}
}

// Document implements modehandler.Editor.
func (e *Editor) Document() document.Document {
	return e.buf.Snapshot()
}

// Focused implements modehandler.Editor.
func (e *Editor) Focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// SetFocused simulates the view gaining or losing focus.
func (e *Editor) SetFocused(focused bool) {
	e.mu.Lock()
	e.focused = focused
	e.mu.Unlock()
}

// Text returns the document content.
func (e *Editor) Text() string {
	return e.buf.Text()
}

// Buffer returns the underlying buffer.
func (e *Editor) Buffer() *document.Buffer {
	return e.buf
}

// History returns the undo tracker.
func (e *Editor) History() *history.Tracker {
	return e.history
}

// Apply implements transform.Executor. The batch is applied from the end
// of the document towards the start.
func (e *Editor) Apply(_ context.Context, edits []transform.Transformation) error {
	ordered := slices.Clone(edits)
	transform.SortReverse(ordered)
	for i := 1; i < len(ordered); i++ {
		if ordered[i].End.After(ordered[i-1].Start) {
			return fmt.Errorf("%w: %s and %s", ErrOverlappingEdits, ordered[i], ordered[i-1])
		}
	}

	for _, t := range ordered {
		if err := e.buf.Replace(t.Start, t.End, t.Text); err != nil {
			return fmt.Errorf("apply %s: %w", t, err)
		}
	}

	e.mu.Lock()
	e.batches++
	e.mu.Unlock()
	return nil
}

// Batches returns how many edit batches were applied.
func (e *Editor) Batches() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batches
}

// UpdateView implements modehandler.ViewRefresher by recording the update.
func (e *Editor) UpdateView(_ context.Context, u modehandler.ViewUpdate) {
	e.mu.Lock()
	e.updates = append(e.updates, u)
	e.mu.Unlock()
}

// LastUpdate returns the most recent view update.
func (e *Editor) LastUpdate() (modehandler.ViewUpdate, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.updates) == 0 {
		return modehandler.ViewUpdate{}, false
	}
	return e.updates[len(e.updates)-1], true
}

// Updates returns the number of view updates.
func (e *Editor) Updates() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.updates)
}

// SetStatus implements modehandler.StatusSink.
func (e *Editor) SetStatus(msg string) {
	e.mu.Lock()
	e.statuses = append(e.statuses, msg)
	e.mu.Unlock()
}

// Statuses returns every status message shown, oldest first.
func (e *Editor) Statuses() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.statuses)
}

// LastStatus returns the most recent non-empty status message.
func (e *Editor) LastStatus() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.statuses) - 1; i >= 0; i-- {
		if e.statuses[i] != "" {
			return e.statuses[i]
		}
	}
	return ""
}

var (
	_ modehandler.Editor        = (*Editor)(nil)
	_ modehandler.ViewRefresher = (*Editor)(nil)
	_ modehandler.StatusSink    = (*Editor)(nil)
	_ transform.Executor        = (*Editor)(nil)
)
