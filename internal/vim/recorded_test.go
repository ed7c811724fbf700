package vim

import (
	"testing"

	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/mode"
)

var (
	testDelete = &Definition{Name: "delete", Kind: Operator, Keys: [][]string{{"d"}}, Modes: []mode.Mode{mode.Normal}, Operate: noopOperate, Repeatable: true}
	testYank   = &Definition{Name: "yank", Kind: Operator, Keys: [][]string{{"y"}}, Modes: []mode.Mode{mode.Normal}, Operate: noopOperate}
	testWord   = &Definition{Name: "word", Kind: Movement, Keys: [][]string{{"w"}}, Modes: []mode.Mode{mode.Normal}, Move: noopMove}
)

func TestRecordedOperatorTakesCount(t *testing.T) {
	r := NewRecordedState()
	r.Count = 2
	r.AddAction(NewAction(testDelete, "d"))

	if r.OperatorCount != 2 || r.Count != 0 {
		t.Fatalf("expected operator count 2 and count 0, got %d/%d", r.OperatorCount, r.Count)
	}

	r.Count = 3
	if got := r.EffectiveCount(); got != 6 {
		t.Errorf("expected effective count 6, got %d", got)
	}
}

func TestRecordedEffectiveCountWithoutCount(t *testing.T) {
	r := NewRecordedState()
	if r.EffectiveCount() != 0 {
		t.Errorf("expected 0, got %d", r.EffectiveCount())
	}
	r.Count = 4
	if r.EffectiveCount() != 4 {
		t.Errorf("expected 4, got %d", r.EffectiveCount())
	}
}

func TestRecordedOperatorReady(t *testing.T) {
	r := NewRecordedState()
	r.AddAction(NewAction(testDelete, "d"))

	if r.OperatorReady(mode.Normal) {
		t.Error("operator without a motion should not be ready in normal mode")
	}
	if !r.OperatorReady(mode.Visual) {
		t.Error("operator should be ready in visual mode")
	}

	r.AddAction(NewAction(testWord, "w"))
	if !r.OperatorReady(mode.Normal) {
		t.Error("operator should be ready after a movement")
	}

	r.MarkOperatorRun()
	if r.OperatorReady(mode.Normal) || r.HasPendingOperator() {
		t.Error("operator should not run twice")
	}
}

func TestRecordedOperatorRepeat(t *testing.T) {
	r := NewRecordedState()
	r.AddAction(NewAction(testDelete, "d"))
	r.AddAction(NewAction(testDelete, "d"))
	if !r.IsOperatorRepeat() || !r.OperatorReady(mode.Normal) {
		t.Error("dd should be an operator repeat")
	}

	r = NewRecordedState()
	r.AddAction(NewAction(testDelete, "d"))
	r.AddAction(NewAction(testYank, "y"))
	if r.IsOperatorRepeat() {
		t.Error("dy is not an operator repeat")
	}
}

func TestRecordedRepeatable(t *testing.T) {
	r := NewRecordedState()
	r.AddAction(NewAction(testWord, "w"))
	if r.IsRepeatable() {
		t.Error("a bare movement is not repeatable")
	}
	r.AddAction(NewAction(testDelete, "d"))
	if !r.IsRepeatable() {
		t.Error("delete is repeatable")
	}
}

func TestRecordedTakeTransformations(t *testing.T) {
	r := NewRecordedState()
	r.Queue(transform.Dot(1))
	ts := r.TakeTransformations()
	if len(ts) != 1 || len(r.Transformations) != 0 {
		t.Errorf("unexpected queue state %v / %v", ts, r.Transformations)
	}
}

func TestAccumulateDigit(t *testing.T) {
	if _, ok := AccumulateDigit(0, "0"); ok {
		t.Error("0 must not start a count")
	}
	n, ok := AccumulateDigit(1, "0")
	if !ok || n != 10 {
		t.Errorf("expected 10, got %d", n)
	}
	n, _ = AccumulateDigit(maxCount, "9")
	if n != maxCount {
		t.Errorf("count should saturate, got %d", n)
	}
}
