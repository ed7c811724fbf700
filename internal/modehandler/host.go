package modehandler

import (
	"context"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/document"
	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/vim"
)

// Editor is the host editor view a handler drives.
type Editor interface {
	// Document returns an immutable snapshot of the current text.
	Document() document.Document

	// Focused reports whether the view still has focus. Change tracking is
	// skipped for a view that lost focus while a key was processed.
	Focused() bool
}

// ViewUpdate is what the view should show after a step.
type ViewUpdate struct {
	Cursors []cursor.Range

	// Mode is the display mode, pseudo-modes included.
	Mode mode.Mode

	// DrawSelection is set in the Visual-family modes.
	DrawSelection bool

	// Reveal asks the view to scroll the primary cursor into sight.
	Reveal bool

	// PendingKeys are the keys of the half-typed command.
	PendingKeys []string

	// Prompt is the text typed at the ":" or "/" prompt, with its leader.
	// It is empty outside the prompt modes.
	Prompt string
}

// ViewRefresher redraws the host view.
type ViewRefresher interface {
	UpdateView(ctx context.Context, u ViewUpdate)
}

// StatusSink shows short messages to the user.
type StatusSink interface {
	SetStatus(msg string)
}

// RemapRequest asks a remapper to handle typed keys.
type RemapRequest struct {
	Keys []string

	// Mode is the mode rules are looked up for. It is OperatorPending
	// while an operator waits for its motion.
	Mode mode.Mode

	// Final is set when the disambiguation timeout fired; a prefix of a
	// longer rule must be decided now.
	Final bool
}

// RemapOutcome is a remapper's answer.
type RemapOutcome struct {
	// Consumed reports that the remapper replayed or buffered the keys.
	Consumed bool

	// Result is the outcome of the replay, if one ran.
	Result Result

	// Rest holds trailing keys no rule used; the handler processes them.
	Rest []string
}

// Remapper rewrites typed keys into other keys.
type Remapper interface {
	TrySend(ctx context.Context, req RemapRequest, sender KeySender) (RemapOutcome, error)
}

// ReplayOptions controls one remap replay frame.
type ReplayOptions struct {
	// Recursive lets the replayed keys be remapped again.
	Recursive bool

	// IgnoreFailedMovement keeps a failed movement from aborting the frame.
	IgnoreFailedMovement bool
}

// KeySender is the side of a handler a remapper talks back to.
type KeySender interface {
	// ReplayKeys feeds keys through the handler as one replay frame.
	ReplayKeys(ctx context.Context, keys []string, opts ReplayOptions) (Result, error)

	// BufferKeys holds keys that are a prefix of a longer rule until the
	// next key or the timeout decides.
	BufferKeys(keys []string)
}

// Host bundles the collaborators of one editor view.
// Editor and Executor are required.
type Host struct {
	Editor   Editor
	Executor transform.Executor
	View     ViewRefresher
	Status   StatusSink
	History  vim.History
	Remapper Remapper
	Ex       vim.ExHandler
}
