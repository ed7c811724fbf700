package vim

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/mo"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/input/mode"
)

// Kind is the closed set of action variants.
type Kind uint8

const (
	// Movement repositions cursors and can supply a range to an operator.
	Movement Kind = iota
	// Operator waits for a movement (or Visual selection) to know its range.
	Operator
	// Command runs once, not per cursor.
	Command
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case Movement:
		return "movement"
	case Operator:
		return "operator"
	case Command:
		return "command"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Key pattern placeholders. A placeholder matches one key of its class.
const (
	// CharacterArg matches any single character key.
	CharacterArg = "<character>"
	// RegisterArg matches any register name.
	RegisterArg = "<register>"
	// NumberArg matches one digit.
	NumberArg = "<number>"
)

// RegisterMode describes how text stored by an operator is shaped.
type RegisterMode uint8

const (
	Charwise RegisterMode = iota
	Linewise
	Blockwise
)

// When decides whether a definition applies in the current state.
// keys are the keys typed so far for the action.
type When func(s *State, keys []string) bool

// MovementFunc computes a movement for one cursor whose stop is p.
type MovementFunc func(ctx context.Context, s *State, a Action, p cursor.Position, count int) (MovementResult, error)

// OperatorFunc runs an operator over the ordered range start..stop for the
// cursor at index and returns where that cursor should end up.
type OperatorFunc func(ctx context.Context, s *State, a Action, start, stop cursor.Position, index int) (cursor.Range, error)

// OperatorRepeatFunc runs the doubled form of an operator (dd, yy, cc) for
// the cursor at index.
type OperatorRepeatFunc func(ctx context.Context, s *State, a Action, p cursor.Position, count, index int) (cursor.Range, error)

// CommandFunc runs a command once for all cursors.
type CommandFunc func(ctx context.Context, s *State, a Action) error

// Definition declares one registered action.
type Definition struct {
	Name string
	Kind Kind

	// Keys lists alternative key patterns, e.g. {{"h"}, {"<Left>"}}.
	Keys [][]string

	// Modes are the real modes in which the action is active.
	Modes []mode.Mode

	// Complete marks a command that finishes a full command. Movements
	// complete when no operator is pending; operators complete once run.
	Complete bool

	// Repeatable marks an action that makes the command dot-repeatable.
	Repeatable bool

	// IsJump records a jump-list entry when the action moves the cursor.
	IsJump bool

	// NoMacroRecord keeps the action out of macro recordings.
	NoMacroRecord bool

	// When optionally restricts when the action applies.
	When When

	// WaitingPseudo is shown while only placeholders remain to be typed.
	WaitingPseudo mo.Option[mode.Mode]

	Move          MovementFunc
	Operate       OperatorFunc
	OperateRepeat OperatorRepeatFunc
	Exec          CommandFunc
}

// ActiveIn reports whether the definition is registered for m.
func (d *Definition) ActiveIn(m mode.Mode) bool {
	return slices.Contains(d.Modes, m)
}

// Validate checks that a definition is consistent with its kind.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("action has no name")
	}
	if len(d.Keys) == 0 {
		return fmt.Errorf("action %s: no key patterns", d.Name)
	}
	for _, p := range d.Keys {
		if len(p) == 0 {
			return fmt.Errorf("action %s: empty key pattern", d.Name)
		}
	}
	if len(d.Modes) == 0 {
		return fmt.Errorf("action %s: no modes", d.Name)
	}
	switch d.Kind {
	case Movement:
		if d.Move == nil {
			return fmt.Errorf("movement %s: no Move func", d.Name)
		}
	case Operator:
		if d.Operate == nil {
			return fmt.Errorf("operator %s: no Operate func", d.Name)
		}
	case Command:
		if d.Exec == nil {
			return fmt.Errorf("command %s: no Exec func", d.Name)
		}
	default:
		return fmt.Errorf("action %s: unknown kind %d", d.Name, d.Kind)
	}
	return nil
}

// Action is a resolved definition together with the keys that selected it.
type Action struct {
	Def     *Definition
	Keys    []string
	pattern []string
}

// NewAction binds a definition to pressed keys using its first pattern of
// matching length. It is meant for tests and replays built by hand.
func NewAction(def *Definition, keys ...string) Action {
	a := Action{Def: def, Keys: keys}
	for _, p := range def.Keys {
		if len(p) == len(keys) {
			a.pattern = p
			break
		}
	}
	return a
}

// Name returns the definition name.
func (a Action) Name() string {
	if a.Def == nil {
		return ""
	}
	return a.Def.Name
}

// Kind returns the action variant.
func (a Action) Kind() Kind {
	return a.Def.Kind
}

// IsZero reports whether the action is unset.
func (a Action) IsZero() bool {
	return a.Def == nil
}

// Arg returns the key typed for the first occurrence of a placeholder.
func (a Action) Arg(placeholder string) string {
	for i, p := range a.pattern {
		if p == placeholder && i < len(a.Keys) {
			return a.Keys[i]
		}
	}
	return ""
}

// String returns the action name and keys for logging.
func (a Action) String() string {
	return fmt.Sprintf("%s%q", a.Name(), a.Keys)
}

// MovementResult is the outcome of a movement for one cursor.
type MovementResult struct {
	Start cursor.Position
	Stop  cursor.Position

	// IsRange marks a full (start, stop) result. A bare result only
	// carries Stop.
	IsRange bool

	// Failed aborts the whole command.
	Failed bool

	// Removed asks for the cursor to be deleted.
	Removed bool

	// RegisterMode overrides how a pending operator stores text.
	RegisterMode mo.Option[RegisterMode]
}

// To returns a bare movement result.
func To(p cursor.Position) MovementResult {
	return MovementResult{Stop: p}
}

// Span returns a full range result.
func Span(start, stop cursor.Position) MovementResult {
	return MovementResult{Start: start, Stop: stop, IsRange: true}
}

// Failed returns a result that aborts the command. The cursor stays put.
func Failed() MovementResult {
	return MovementResult{Failed: true}
}

// Removed returns a result asking for the cursor to be deleted. The
// primary cursor is never deleted and stays put.
func Removed() MovementResult {
	return MovementResult{Removed: true}
}

// WithRegisterMode returns r with a register-mode override.
func (r MovementResult) WithRegisterMode(m RegisterMode) MovementResult {
	r.RegisterMode = mo.Some(m)
	return r
}
