package history

import (
	"errors"
	"testing"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/document"
)

func stops(ps ...cursor.Position) []cursor.Position { return ps }

func TestTrackerGroupsChangesUntilFinish(t *testing.T) {
	buf := document.NewBufferFromString("abc")
	tr := NewTracker(buf, 0)

	_ = buf.Insert(cursor.Pos(0, 3), "d")
	tr.AddChange(stops(cursor.Pos(0, 4)))
	_ = buf.Insert(cursor.Pos(0, 4), "e")
	tr.AddChange(stops(cursor.Pos(0, 5)))

	if tr.StepCount() != 0 {
		t.Fatalf("step should still be open, got %d steps", tr.StepCount())
	}
	tr.FinishCurrentStep()
	if tr.StepCount() != 1 {
		t.Fatalf("expected 1 step, got %d", tr.StepCount())
	}

	pos, err := tr.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if buf.Text() != "abc" {
		t.Errorf("expected original text, got %q", buf.Text())
	}
	if len(pos) != 0 {
		t.Errorf("expected no cursors before first checkpoint, got %v", pos)
	}

	pos, err = tr.Redo()
	if err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if buf.Text() != "abcde" || pos[0] != cursor.Pos(0, 5) {
		t.Errorf("unexpected redo result %q %v", buf.Text(), pos)
	}
}

func TestTrackerFinishWithoutChangeIsNoop(t *testing.T) {
	buf := document.NewBufferFromString("abc")
	tr := NewTracker(buf, 0)

	tr.AddChange(stops(cursor.Pos(0, 1)))
	tr.FinishCurrentStep()
	if tr.StepCount() != 0 || tr.CanUndo() {
		t.Error("no step should be recorded without a text change")
	}
}

func TestTrackerIgnoreChange(t *testing.T) {
	buf := document.NewBufferFromString("abc")
	tr := NewTracker(buf, 0)

	_ = buf.SetText("reloaded")
	tr.IgnoreChange()
	tr.AddChange(stops(cursor.Pos(0, 0)))
	tr.FinishCurrentStep()

	if tr.StepCount() != 0 {
		t.Errorf("ignored change should not be undoable, got %d steps", tr.StepCount())
	}
}

func TestTrackerUndoEmpty(t *testing.T) {
	tr := NewTracker(document.NewBuffer(), 0)
	if _, err := tr.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
	if _, err := tr.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestTrackerMaxEntries(t *testing.T) {
	buf := document.NewBuffer()
	tr := NewTracker(buf, 2)
	for i := 0; i < 4; i++ {
		_ = buf.Insert(cursor.Pos(0, i), "x")
		tr.AddChange(stops(cursor.Pos(0, i+1)))
		tr.FinishCurrentStep()
	}
	if tr.StepCount() != 2 {
		t.Errorf("expected 2 steps, got %d", tr.StepCount())
	}
}

func TestTrackerLastChangeMark(t *testing.T) {
	buf := document.NewBufferFromString("abc")
	tr := NewTracker(buf, 0)
	tr.SetMark("a", cursor.Pos(0, 0))

	_ = buf.Delete(cursor.Pos(0, 0), cursor.Pos(0, 1))
	tr.AddChange(stops(cursor.Pos(0, 0)))

	marks := tr.Marks()
	if marks[LastChangeMark] != cursor.Pos(0, 0) || len(marks) != 2 {
		t.Errorf("unexpected marks %v", marks)
	}
}

func TestTrackerNewChangeClearsRedo(t *testing.T) {
	buf := document.NewBufferFromString("a")
	tr := NewTracker(buf, 0)

	_ = buf.Insert(cursor.Pos(0, 1), "b")
	tr.AddChange(stops(cursor.Pos(0, 2)))
	tr.FinishCurrentStep()
	if _, err := tr.Undo(); err != nil {
		t.Fatal(err)
	}
	if !tr.CanRedo() {
		t.Fatal("expected redo to be available")
	}

	_ = buf.Insert(cursor.Pos(0, 1), "c")
	tr.AddChange(stops(cursor.Pos(0, 2)))
	tr.FinishCurrentStep()
	if tr.CanRedo() {
		t.Error("new change should clear redo")
	}
}
