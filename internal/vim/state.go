package vim

import (
	"context"

	"github.com/samber/mo"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/document"
	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/mode"
)

// History is the change tracker the core reports to.
type History interface {
	AddChange(positions []cursor.Position)
	FinishCurrentStep()
	IgnoreChange()
	Marks() map[string]cursor.Position
	Undo() ([]cursor.Position, error)
	Redo() ([]cursor.Position, error)
}

// ExHandler runs a command-line command such as "w" or "q".
type ExHandler func(ctx context.Context, command string) error

// VisualSelection is a remembered Visual-mode selection.
type VisualSelection struct {
	Mode  mode.Mode
	Start cursor.Position
	End   cursor.Position
}

// VisualExtent is the size of the Visual selection an operator ran on,
// so that "." can select the same amount from the cursor.
type VisualExtent struct {
	Mode mode.Mode

	// Lines is the number of lines after the first.
	Lines int

	// Columns is the width of a single-line or block selection, or the
	// end column on the last line of a selection spanning lines.
	Columns int
}

// SearchState holds the last search.
type SearchState struct {
	Pattern string
	Forward bool
}

// RemapState tracks remap replay frames.
type RemapState struct {
	// Depth is the number of nested remap replays.
	Depth int

	// Recursive is set while replaying a recursive rule.
	Recursive bool

	// NonRecursive is set while replaying a non-recursive rule.
	NonRecursive bool

	// IgnoreFailedMovement keeps a failed movement from aborting the replay.
	IgnoreFailedMovement bool
}

// Active reports whether a remap replay is in progress.
func (r RemapState) Active() bool {
	return r.Depth > 0
}

// MacroRecording is an in-progress macro recording.
type MacroRecording struct {
	Register string
	Actions  []Action
}

// State is the per-editor state threaded through the whole pipeline. It is
// owned by exactly one handler; only Registers and Jumps are shared.
type State struct {
	// EditorID identifies the editor instance.
	EditorID string

	// Doc is the document snapshot for the key being processed.
	Doc document.Document

	Modes    *mode.Machine
	Cursors  *cursor.Set
	Recorded *RecordedState

	History   History
	Registers *Registers
	Jumps     *JumpTracker

	// LastMovementFailed is set when a movement fails and cleared by the
	// handler once consumed; it never outlives a key.
	LastMovementFailed bool

	// PreviousFullAction is the last dot-repeatable command.
	PreviousFullAction []Action

	// PreviousVisual is set when PreviousFullAction ran on a Visual
	// selection.
	PreviousVisual mo.Option[VisualExtent]

	// Macro is the recording in progress, if any.
	Macro mo.Option[*MacroRecording]

	Search SearchState

	// Commandline is the text typed at the ":" or "/" prompt.
	Commandline string

	// Ex runs ":" commands; nil means none are supported.
	Ex ExHandler

	// LastVisualSelection is the selection gv restores.
	LastVisualSelection mo.Option[VisualSelection]

	// ReturnToInsertAfterCommand is set by <C-o> in Insert mode.
	ReturnToInsertAfterCommand bool

	// IsReplayingDot and IsReplayingMacro mark replays in progress.
	IsReplayingDot   bool
	IsReplayingMacro bool

	Remap RemapState

	// IgnoreIntermediateSelections suspends selection synchronization
	// while an action runs.
	IgnoreIntermediateSelections bool

	// Status is a message for the status line, cleared after display.
	Status string
}

// NewState creates a state for one editor.
func NewState(editorID string, doc document.Document, initial mode.Mode, history History) *State {
	return &State{
		EditorID:            editorID,
		Doc:                 doc,
		Modes:               mode.NewMachine(initial),
		Cursors:             cursor.NewSet(cursor.At(cursor.Position{})),
		Recorded:            NewRecordedState(),
		History:             history,
		Registers:           GlobalRegisters(),
		Jumps:               GlobalJumps(),
		Macro:               mo.None[*MacroRecording](),
		LastVisualSelection: mo.None[VisualSelection](),
		PreviousVisual:      mo.None[VisualExtent](),
		Search:              SearchState{Forward: true},
	}
}

// Mode returns the real current mode.
func (s *State) Mode() mode.Mode {
	return s.Modes.Current()
}

// SetMode switches the real mode.
func (s *State) SetMode(m mode.Mode) {
	s.Modes.Switch(m)
}

// Cursor returns the cursor at index.
func (s *State) Cursor(index int) cursor.Range {
	return s.Cursors.Get(index)
}

// Queue appends transformations for the runner to apply.
func (s *State) Queue(ts ...transform.Transformation) {
	s.Recorded.Queue(ts...)
}

// IsRecordingMacro reports whether q is recording.
func (s *State) IsRecordingMacro() bool {
	return s.Macro.IsPresent()
}

// IsReplaying reports whether a dot or macro replay is running.
func (s *State) IsReplaying() bool {
	return s.IsReplayingDot || s.IsReplayingMacro
}

// ResetCommand replaces the recorded state, cancelling any timer.
func (s *State) ResetCommand() {
	s.Recorded.StopTimer()
	s.Recorded = NewRecordedState()
}
