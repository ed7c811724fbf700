package vim

import (
	"time"

	"github.com/samber/mo"

	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/mode"
)

// DefaultRegister is the unnamed register.
const DefaultRegister = `"`

// RecordedState is the transcript of the command being typed. It is
// replaced wholesale when a command completes, when a domain error
// interrupts it, or when its keys match nothing.
type RecordedState struct {
	// CommandList holds the raw keys of the key being handled. It is
	// cleared once the key has been processed.
	CommandList []string

	// ActionKeys holds the keys since the last resolved action.
	ActionKeys []string

	// ActionsRun is the ordered list of actions making up the command.
	ActionsRun []Action

	// Count is the numeric prefix being typed; 0 means none.
	Count int

	// OperatorCount is the count typed before the pending operator.
	OperatorCount int

	// Operator is the pending operator, if any.
	Operator mo.Option[Action]

	// BufferedKeys holds keys an ambiguous remap is waiting on.
	BufferedKeys []string

	// BufferedKeysTimeout fires TimeoutFinished for BufferedKeys.
	BufferedKeysTimeout *time.Timer

	// WaitingForAnotherActionKey is set while an action needs more keys.
	WaitingForAnotherActionKey bool

	// IsInsertion marks a command that typed text; it feeds the "." register.
	IsInsertion bool

	// Register is the register selected with "x, DefaultRegister otherwise.
	Register string

	// RegisterMode is a movement's override of how the operator stores text.
	RegisterMode mo.Option[RegisterMode]

	// InsertedText is the text typed by the current insertion.
	InsertedText string

	// Transformations queued by the current action.
	Transformations []transform.Transformation

	// Visual is the selection the operator ran on, if it ran in Visual mode.
	Visual mo.Option[VisualExtent]

	hasRunOperator  bool
	hasRunAMovement bool
	finished        bool
}

// NewRecordedState returns an empty transcript.
func NewRecordedState() *RecordedState {
	return &RecordedState{
		Operator:     mo.None[Action](),
		RegisterMode: mo.None[RegisterMode](),
		Register:     DefaultRegister,
		Visual:       mo.None[VisualExtent](),
	}
}

// StopTimer cancels a pending disambiguation timer.
func (r *RecordedState) StopTimer() {
	if r.BufferedKeysTimeout != nil {
		r.BufferedKeysTimeout.Stop()
		r.BufferedKeysTimeout = nil
	}
}

// AddAction records a resolved action. Recording an operator makes it the
// pending operator and moves the typed count to OperatorCount.
func (r *RecordedState) AddAction(a Action) {
	r.ActionsRun = append(r.ActionsRun, a)
	switch a.Kind() {
	case Operator:
		if r.Operator.IsAbsent() {
			r.OperatorCount = r.Count
			r.Count = 0
		}
		r.Operator = mo.Some(a)
	case Movement:
		r.hasRunAMovement = true
	}
}

// HasPendingOperator reports whether an operator awaits its range.
func (r *RecordedState) HasPendingOperator() bool {
	return r.Operator.IsPresent() && !r.hasRunOperator
}

// IsOperatorRepeat reports whether the same operator was recorded twice
// in a row, as in dd or yy.
func (r *RecordedState) IsOperatorRepeat() bool {
	n := len(r.ActionsRun)
	if n < 2 {
		return false
	}
	last, prev := r.ActionsRun[n-1], r.ActionsRun[n-2]
	return last.Kind() == Operator && prev.Kind() == Operator && last.Def == prev.Def
}

// OperatorReady reports whether the pending operator has what it needs
// to run in mode m: a movement, a Visual selection, or a repeat.
func (r *RecordedState) OperatorReady(m mode.Mode) bool {
	if !r.HasPendingOperator() {
		return false
	}
	return r.hasRunAMovement || m.IsVisual() || r.IsOperatorRepeat()
}

// MarkOperatorRun records that the pending operator executed.
func (r *RecordedState) MarkOperatorRun() {
	r.hasRunOperator = true
}

// HasRunOperator reports whether an operator executed in this command.
func (r *RecordedState) HasRunOperator() bool {
	return r.hasRunOperator
}

// HasRunAMovement reports whether a movement ran in this command.
func (r *RecordedState) HasRunAMovement() bool {
	return r.hasRunAMovement
}

// EffectiveCount combines Count and OperatorCount, so 2d3w moves six
// words. It returns 0 when no count was typed at all.
func (r *RecordedState) EffectiveCount() int {
	if r.Count == 0 && r.OperatorCount == 0 {
		return 0
	}
	return max(r.Count, 1) * max(r.OperatorCount, 1)
}

// IsRepeatable reports whether any action in the command is dot-repeatable.
func (r *RecordedState) IsRepeatable() bool {
	for _, a := range r.ActionsRun {
		if a.Def.Repeatable {
			return true
		}
	}
	return false
}

// Queue appends transformations for the runner to apply.
func (r *RecordedState) Queue(ts ...transform.Transformation) {
	r.Transformations = append(r.Transformations, ts...)
}

// TakeTransformations returns and clears the queued transformations.
func (r *RecordedState) TakeTransformations() []transform.Transformation {
	ts := r.Transformations
	r.Transformations = nil
	return ts
}

// EffectiveRegisterMode returns how an operator running in mode m stores
// text: the Visual sub-mode decides first, then a movement's override.
func (r *RecordedState) EffectiveRegisterMode(m mode.Mode) RegisterMode {
	switch m {
	case mode.VisualLine:
		return Linewise
	case mode.VisualBlock:
		return Blockwise
	}
	return r.RegisterMode.OrElse(Charwise)
}

// Finish marks the command complete even though its last action is not.
// A prompt cancelled with backspace uses it.
func (r *RecordedState) Finish() {
	r.finished = true
}

// Finished reports whether Finish was called.
func (r *RecordedState) Finished() bool {
	return r.finished
}

// ResetActionKeys clears the keys of the partially typed action.
func (r *RecordedState) ResetActionKeys() {
	r.ActionKeys = nil
	r.WaitingForAnotherActionKey = false
}

// PendingKeys returns the keys typed for the current command, for display.
func (r *RecordedState) PendingKeys() []string {
	var out []string
	for _, a := range r.ActionsRun {
		out = append(out, a.Keys...)
	}
	return append(out, r.ActionKeys...)
}
