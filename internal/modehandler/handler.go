// Package modehandler turns a stream of keys into mode transitions, action
// runs, cursor updates and undo bookkeeping for one editor view.
//
// A ModeHandler is not safe for concurrent use. Keys, timeouts and
// selection notifications for one view are serialized through a Scheduler,
// or delivered from a single goroutine by the host.
package modehandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/engine/transform"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/logger"
	"github.com/dshills/modalcore/internal/vim"
)

// Errors returned by New.
var (
	ErrNoEditor   = errors.New("modehandler: host has no editor")
	ErrNoExecutor = errors.New("modehandler: host has no transformation executor")
	ErrNoRegistry = errors.New("modehandler: no action registry")
)

// keyHistorySize bounds the recent-keys ring.
const keyHistorySize = 100

// Config configures a mode handler.
type Config struct {
	// Timeout is how long an ambiguous key sequence waits for more keys.
	// Default: 1000ms
	Timeout time.Duration

	// MouseSelectionGoesIntoVisualMode enters Visual mode on a pointer drag.
	MouseSelectionGoesIntoVisualMode bool

	// Alias controls platform key aliasing.
	Alias key.AliasOptions

	// MaxMapDepth bounds nested remap and macro replays.
	MaxMapDepth int

	// StartInInsertMode starts the view in Insert instead of Normal.
	StartInInsertMode bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:                          1000 * time.Millisecond,
		MouseSelectionGoesIntoVisualMode: true,
		Alias:                            key.AliasOptions{OverrideCopy: true, UseCtrlKeys: true},
		MaxMapDepth:                      1000,
	}
}

// ModeHandler is the key event handler of one editor view.
type ModeHandler struct {
	id       string
	cfg      Config
	state    *vim.State
	registry *vim.Registry

	editor   Editor
	executor transform.Executor
	view     ViewRefresher
	status   StatusSink
	remapper Remapper

	log *slog.Logger

	// post delivers a synthetic key through the scheduler; nil when no
	// scheduler is attached, in which case no timers are armed.
	post func(k string)

	keyHistory *deque.Deque[string]

	// lastWritten holds the cursors last sent to the view until the
	// matching echo notification arrives.
	lastWritten []cursor.Range

	macroDepth int
}

// New creates a handler for one editor view.
func New(cfg Config, host Host, registry *vim.Registry) (*ModeHandler, error) {
	switch {
	case host.Editor == nil:
		return nil, ErrNoEditor
	case host.Executor == nil:
		return nil, ErrNoExecutor
	case registry == nil:
		return nil, ErrNoRegistry
	}
	if cfg.MaxMapDepth <= 0 {
		cfg.MaxMapDepth = DefaultConfig().MaxMapDepth
	}

	id := uuid.NewString()
	initial := mode.Normal
	if cfg.StartInInsertMode {
		initial = mode.Insert
	}

	h := &ModeHandler{
		id:         id,
		cfg:        cfg,
		registry:   registry,
		editor:     host.Editor,
		executor:   host.Executor,
		view:       host.View,
		status:     host.Status,
		remapper:   host.Remapper,
		log:        logger.With("editor", id),
		keyHistory: deque.New[string](keyHistorySize),
	}
	h.state = vim.NewState(id, host.Editor.Document(), initial, host.History)
	h.state.Ex = host.Ex
	h.state.Modes.OnChange(h.modeChanged)
	return h, nil
}

// ID returns the editor instance id.
func (h *ModeHandler) ID() string {
	return h.id
}

// State exposes the per-view state, for hosts and tests.
func (h *ModeHandler) State() *vim.State {
	return h.state
}

// Mode returns the real current mode.
func (h *ModeHandler) Mode() mode.Mode {
	return h.state.Mode()
}

// DisplayMode returns the mode including pseudo-modes.
func (h *ModeHandler) DisplayMode() mode.Mode {
	return h.state.Modes.Display()
}

// Cursors returns a copy of the cursors.
func (h *ModeHandler) Cursors() []cursor.Range {
	return h.state.Cursors.All()
}

// SetCursors replaces the cursors, e.g. when a host restores a view.
func (h *ModeHandler) SetCursors(ranges []cursor.Range) {
	h.state.Cursors.Replace(ranges)
}

// RecentKeys returns the most recent keys, oldest first.
func (h *ModeHandler) RecentKeys() []string {
	out := make([]string, h.keyHistory.Len())
	for i := range out {
		out[i] = h.keyHistory.At(i)
	}
	return out
}

// SetEnabled switches between Disabled and Normal.
func (h *ModeHandler) SetEnabled(enabled bool) {
	s := h.state
	switch {
	case !enabled:
		s.ResetCommand()
		s.SetMode(mode.Disabled)
	case s.Mode() == mode.Disabled:
		s.SetMode(mode.Normal)
	}
}

// Reconfigure applies new settings. Running commands are not affected.
func (h *ModeHandler) Reconfigure(cfg Config) {
	if cfg.MaxMapDepth <= 0 {
		cfg.MaxMapDepth = h.cfg.MaxMapDepth
	}
	h.cfg = cfg
	h.log.Debug("reconfigured", "timeout", cfg.Timeout, "maxMapDepth", cfg.MaxMapDepth)
}

// SetRemapper replaces the remapper; nil disables remapping.
func (h *ModeHandler) SetRemapper(r Remapper) {
	h.remapper = r
}

// Handle processes one key in Vim notation. Domain errors are reported
// through the status sink and never returned; the error return is for
// unexpected failures, annotated with the key.
func (h *ModeHandler) Handle(ctx context.Context, k string) (Result, error) {
	s := h.state
	s.Doc = h.editor.Document()
	if s.Mode() == mode.Disabled {
		return Done(), nil
	}

	res, err := h.handleKey(ctx, k)
	h.flushStatus()
	h.refresh(ctx, true)
	return res, err
}

// HandleKeys processes keys written as a continuous string such as "d2w".
func (h *ModeHandler) HandleKeys(ctx context.Context, keys string) error {
	for _, k := range key.Split(keys) {
		if _, err := h.Handle(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (h *ModeHandler) handleKey(ctx context.Context, k string) (Result, error) {
	s := h.state
	h.recordKey(k)

	var (
		keys  []string
		final bool
	)
	if k == key.TimeoutFinished {
		s.Recorded.StopTimer()
		switch {
		case len(s.Recorded.BufferedKeys) > 0:
			keys = s.Recorded.BufferedKeys
			s.Recorded.BufferedKeys = nil
			final = true
		case s.Recorded.WaitingForAnotherActionKey && len(s.Recorded.ActionKeys) > 0:
			err := h.resolveFinal(ctx)
			return h.finishKey(k, Done(), err)
		default:
			return Done(), nil
		}
	} else {
		k = key.Alias(k, h.cfg.Alias, s.Mode().IsVisual())
		keys = append(slices.Clone(s.Recorded.BufferedKeys), k)
		s.Recorded.BufferedKeys = nil
		s.Recorded.StopTimer()
	}

	return h.dispatch(ctx, keys, final)
}

// dispatch offers keys to the remapper and runs whatever it leaves as
// action keys.
func (h *ModeHandler) dispatch(ctx context.Context, keys []string, final bool) (Result, error) {
	s := h.state
	last := keys[len(keys)-1]

	if h.remapEligible(keys) {
		req := RemapRequest{Keys: keys, Mode: s.Mode(), Final: final}
		if s.Recorded.HasPendingOperator() {
			req.Mode = mode.OperatorPending
		}
		out, err := h.remapper.TrySend(ctx, req, h)
		if err != nil {
			return h.finishKey(last, Done(), err)
		}
		if out.Consumed {
			if out.Result.IsAborted() || len(out.Rest) == 0 {
				return h.finishKey(last, out.Result, nil)
			}
			return h.dispatch(ctx, out.Rest, final)
		}
	}

	if err := h.handleActionKey(ctx, keys[0]); err != nil {
		return h.finishKey(keys[0], Done(), err)
	}
	if len(keys) > 1 {
		return h.dispatch(ctx, keys[1:], final)
	}
	return h.finishKey(last, Done(), nil)
}

// remapEligible decides whether keys go to the remapper first. A 0 typed
// after a count digit always continues the count.
func (h *ModeHandler) remapEligible(keys []string) bool {
	s := h.state
	if h.remapper == nil || s.Remap.NonRecursive || s.Recorded.WaitingForAnotherActionKey {
		return false
	}
	return !(keys[0] == "0" && s.Recorded.Count > 0)
}

func (h *ModeHandler) handleActionKey(ctx context.Context, k string) error {
	r := h.state.Recorded
	r.CommandList = append(r.CommandList, k)
	return h.feedActionKey(ctx, k)
}

func (h *ModeHandler) feedActionKey(ctx context.Context, k string) error {
	s := h.state
	s.Recorded.ActionKeys = append(s.Recorded.ActionKeys, k)
	res := h.registry.Resolve(s, s.Recorded.ActionKeys)
	h.log.Debug("resolve", "keys", s.Recorded.ActionKeys, "mode", s.Mode(), "status", res.Status)
	return h.applyResolution(ctx, res)
}

func (h *ModeHandler) resolveFinal(ctx context.Context) error {
	s := h.state
	res := h.registry.ResolveFinal(s, s.Recorded.ActionKeys)
	s.Recorded.WaitingForAnotherActionKey = false
	h.log.Debug("resolve on timeout", "keys", s.Recorded.ActionKeys, "status", res.Status)
	return h.applyResolution(ctx, res)
}

func (h *ModeHandler) applyResolution(ctx context.Context, res vim.Resolution) error {
	s := h.state
	switch res.Status {
	case vim.NoPossibleMatch:
		if s.Mode() == mode.Insert {
			s.Recorded.ResetActionKeys()
		} else {
			s.ResetCommand()
		}
		return nil

	case vim.WaitingOnKeys:
		s.Recorded.WaitingForAnotherActionKey = true
		if res.HasExact {
			h.armTimeout()
		}
		if p, ok := res.Pseudo.Get(); ok {
			s.Modes.SetPseudo(p)
		}
		return nil
	}

	rest := slices.Clone(s.Recorded.ActionKeys[res.Consumed:])
	s.Recorded.ResetActionKeys()
	if err := h.run(ctx, res.Action); err != nil {
		return err
	}
	for _, k := range rest {
		if err := h.feedActionKey(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// finishKey converts errors into results, clears the command list and
// consumes the failed-movement flag.
func (h *ModeHandler) finishKey(k string, res Result, err error) (Result, error) {
	s := h.state
	h.updatePseudo()
	defer func() { s.Recorded.CommandList = nil }()

	if err != nil {
		if ve, ok := vim.AsError(err); ok {
			s.ResetCommand()
			h.setStatus(ve.Error())
			h.log.Warn("command aborted", "key", k, "mode", s.Mode(), "error", ve)
			s.LastMovementFailed = false
			if s.Remap.Active() {
				return Abort(ve.Error()), nil
			}
			return Done(), nil
		}
		s.ResetCommand()
		s.LastMovementFailed = false
		h.log.Error("key failed", "key", k, "error", err)
		return Done(), fmt.Errorf("handle key %q: %w", k, err)
	}

	if s.LastMovementFailed {
		s.LastMovementFailed = false
		if s.Remap.Active() && !s.Remap.IgnoreFailedMovement && !res.IsAborted() {
			return Abort("Last movement failed"), nil
		}
	}
	return res, nil
}

// updatePseudo shows OperatorPending while an operator waits, unless a
// waiting action picked its own overlay.
func (h *ModeHandler) updatePseudo() {
	s := h.state
	r := s.Recorded
	switch {
	case r.WaitingForAnotherActionKey && s.Modes.Pseudo().IsPresent():
	case r.HasPendingOperator():
		s.Modes.SetPseudo(mode.OperatorPending)
	default:
		s.Modes.ClearPseudo()
	}
}

// ReplayKeys implements KeySender.
func (h *ModeHandler) ReplayKeys(ctx context.Context, keys []string, opts ReplayOptions) (Result, error) {
	s := h.state
	if s.Remap.Depth >= h.cfg.MaxMapDepth {
		err := vim.NewError(vim.ErrRecursiveMapping, "")
		s.ResetCommand()
		h.setStatus(err.Error())
		h.log.Warn("remap depth exceeded", "depth", s.Remap.Depth)
		return Abort(err.Error()), nil
	}

	saved := s.Remap
	s.Remap = vim.RemapState{
		Depth:                saved.Depth + 1,
		Recursive:            opts.Recursive,
		NonRecursive:         !opts.Recursive,
		IgnoreFailedMovement: opts.IgnoreFailedMovement,
	}
	res, err := h.replayFrame(ctx, keys)
	s.Remap = saved

	if !saved.Active() {
		h.checkpoint(true)
	}
	return res, err
}

func (h *ModeHandler) replayFrame(ctx context.Context, keys []string) (Result, error) {
	s := h.state
	for _, k := range keys {
		res, err := h.handleKey(ctx, k)
		if err != nil || res.IsAborted() {
			return res, err
		}
	}
	if len(s.Recorded.BufferedKeys) > 0 {
		return h.handleKey(ctx, key.TimeoutFinished)
	}
	return Done(), nil
}

// BufferKeys implements KeySender.
func (h *ModeHandler) BufferKeys(keys []string) {
	h.state.Recorded.BufferedKeys = slices.Clone(keys)
	if !h.state.Remap.Active() {
		h.armTimeout()
	}
}

func (h *ModeHandler) armTimeout() {
	if h.post == nil || h.cfg.Timeout <= 0 {
		return
	}
	r := h.state.Recorded
	r.StopTimer()
	post := h.post
	r.BufferedKeysTimeout = time.AfterFunc(h.cfg.Timeout, func() {
		post(key.TimeoutFinished)
	})
}

func (h *ModeHandler) recordKey(k string) {
	if key.IsSynthetic(k) {
		return
	}
	h.keyHistory.PushBack(k)
	for h.keyHistory.Len() > keyHistorySize {
		h.keyHistory.PopFront()
	}
}

// checkpoint records the cursors with the history tracker and optionally
// closes the undo step.
func (h *ModeHandler) checkpoint(finish bool) {
	s := h.state
	if s.History == nil || !h.editor.Focused() {
		return
	}
	s.History.AddChange(s.Cursors.Stops())
	if finish {
		s.History.FinishCurrentStep()
	}
}

func (h *ModeHandler) setStatus(msg string) {
	if h.status != nil {
		h.status.SetStatus(msg)
	}
}

func (h *ModeHandler) flushStatus() {
	if msg := h.state.Status; msg != "" {
		h.setStatus(msg)
		h.state.Status = ""
	}
}

func (h *ModeHandler) modeChanged(from, to mode.Mode) {
	h.log.Debug("mode change", "from", from, "to", to)
	switch to {
	case mode.Insert, mode.Replace, mode.Visual, mode.VisualLine, mode.VisualBlock:
		h.setStatus("-- " + to.String() + " --")
	case mode.Normal:
		h.setStatus("")
	}
}

// refresh sends the state to the view and remembers what was written so
// the echo can be recognized.
func (h *ModeHandler) refresh(ctx context.Context, reveal bool) {
	if h.view == nil {
		return
	}
	s := h.state
	u := ViewUpdate{
		Cursors:       s.Cursors.All(),
		Mode:          s.Modes.Display(),
		DrawSelection: s.Mode().IsVisual(),
		Reveal:        reveal,
		PendingKeys:   s.Recorded.PendingKeys(),
		Prompt:        prompt(s),
	}
	h.lastWritten = u.Cursors
	h.view.UpdateView(ctx, u)
}

// refreshQuiet redraws after the host changed the selection itself.
func (h *ModeHandler) refreshQuiet(ctx context.Context) {
	if h.view == nil {
		return
	}
	s := h.state
	h.view.UpdateView(ctx, ViewUpdate{
		Cursors:       s.Cursors.All(),
		Mode:          s.Modes.Display(),
		DrawSelection: s.Mode().IsVisual(),
		PendingKeys:   s.Recorded.PendingKeys(),
		Prompt:        prompt(s),
	})
}

func prompt(s *vim.State) string {
	switch s.Mode() {
	case mode.CommandlineInProgress:
		return ":" + s.Commandline
	case mode.SearchInProgress:
		if s.Search.Forward {
			return "/" + s.Commandline
		}
		return "?" + s.Commandline
	}
	return ""
}
