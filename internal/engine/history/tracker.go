package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/modalcore/internal/engine/cursor"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// LastChangeMark names the mark updated on every recorded change.
const LastChangeMark = "."

// Source is the document the tracker watches.
type Source interface {
	Text() string
	SetText(text string) error
}

// Step is one undoable unit.
type Step struct {
	Before        string
	After         string
	CursorsBefore []cursor.Position
	CursorsAfter  []cursor.Position
	Timestamp     time.Time
}

// Tracker manages undo steps for a document.
type Tracker struct {
	mu sync.Mutex

	src Source

	undoStack []*Step
	redoStack []*Step
	current   *Step

	// Checkpoint state
	lastText      string
	lastPositions []cursor.Position

	marks map[string]cursor.Position

	// Configuration
	maxEntries int
}

// NewTracker creates a tracker over src.
func NewTracker(src Source, maxEntries int) *Tracker {
	if maxEntries <= 0 {
		maxEntries = 1000 // Default
	}
	return &Tracker{
		src:        src,
		lastText:   src.Text(),
		marks:      make(map[string]cursor.Position),
		maxEntries: maxEntries,
	}
}

// AddChange records a checkpoint. If the document changed since the last
// checkpoint, the change joins the open step. positions are the cursor stops
// after the change.
func (t *Tracker) AddChange(positions []cursor.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()

	text := t.src.Text()
	if text != t.lastText {
		if t.current == nil {
			t.current = &Step{
				Before:        t.lastText,
				CursorsBefore: t.lastPositions,
				Timestamp:     time.Now(),
			}
		}
		t.current.After = text
		t.current.CursorsAfter = clonePositions(positions)
		t.lastText = text
		if len(positions) > 0 {
			t.marks[LastChangeMark] = positions[0]
		}
	}
	t.lastPositions = clonePositions(positions)
}

// FinishCurrentStep closes the open step so later changes start a new one.
// It is a no-op when nothing changed.
func (t *Tracker) FinishCurrentStep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finishLocked()
}

func (t *Tracker) finishLocked() {
	if t.current == nil {
		return
	}
	if t.current.Before == t.current.After {
		t.current = nil
		return
	}

	t.undoStack = append(t.undoStack, t.current)
	t.current = nil

	// Clear redo stack
	t.redoStack = nil

	// Enforce max entries
	if len(t.undoStack) > t.maxEntries {
		excess := len(t.undoStack) - t.maxEntries
		t.undoStack = t.undoStack[excess:]
	}
}

// IgnoreChange makes the current document text the new checkpoint without
// recording the difference.
func (t *Tracker) IgnoreChange() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastText = t.src.Text()
}

// Marks returns a copy of the named marks.
func (t *Tracker) Marks() map[string]cursor.Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make(map[string]cursor.Position, len(t.marks))
	for k, v := range t.marks {
		result[k] = v
	}
	return result
}

// SetMark stores a named mark.
func (t *Tracker) SetMark(name string, p cursor.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks[name] = p
}

// Undo reverts the most recent step and returns the cursor stops from
// before it. An open step is finished first.
func (t *Tracker) Undo() ([]cursor.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.finishLocked()
	if len(t.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}

	step := t.undoStack[len(t.undoStack)-1]
	if err := t.src.SetText(step.Before); err != nil {
		return nil, err
	}
	t.undoStack = t.undoStack[:len(t.undoStack)-1]
	t.redoStack = append(t.redoStack, step)
	t.lastText = step.Before
	return clonePositions(step.CursorsBefore), nil
}

// Redo re-applies the most recently undone step and returns the cursor
// stops from after it.
func (t *Tracker) Redo() ([]cursor.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}

	step := t.redoStack[len(t.redoStack)-1]
	if err := t.src.SetText(step.After); err != nil {
		return nil, err
	}
	t.redoStack = t.redoStack[:len(t.redoStack)-1]
	t.undoStack = append(t.undoStack, step)
	t.lastText = step.After
	return clonePositions(step.CursorsAfter), nil
}

// StepCount returns the number of finished undo steps.
func (t *Tracker) StepCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.undoStack)
}

// HasOpenStep reports whether changes are waiting for FinishCurrentStep.
func (t *Tracker) HasOpenStep() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil
}

// CanUndo returns true if undo is available.
func (t *Tracker) CanUndo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.undoStack) > 0 || t.current != nil
}

// CanRedo returns true if redo is available.
func (t *Tracker) CanRedo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.redoStack) > 0
}

func clonePositions(ps []cursor.Position) []cursor.Position {
	if ps == nil {
		return nil
	}
	out := make([]cursor.Position, len(ps))
	copy(out, ps)
	return out
}
