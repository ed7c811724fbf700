package remap

import (
	"errors"
	"fmt"
)

// Errors for rule tables.
var (
	// ErrEmptyBefore is returned for a rule without trigger keys.
	ErrEmptyBefore = errors.New("rule has no before keys")

	// ErrNoTarget is returned for a rule with neither after keys nor a script.
	ErrNoTarget = errors.New("rule needs after keys or a lua script")

	// ErrBothTargets is returned for a rule with both after keys and a script.
	ErrBothTargets = errors.New("rule cannot have both after keys and a lua script")

	// ErrDuplicateRule is returned when two rules of one mode share their keys.
	ErrDuplicateRule = errors.New("duplicate rule")

	// ErrScriptResult is returned when a lua rule returns something other
	// than a key string or a list of keys.
	ErrScriptResult = errors.New("lua rule must return a string or a list of keys")
)

// RuleError describes an invalid rule.
type RuleError struct {
	Mode   string
	Before string
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s rule %q: %v", e.Mode, e.Before, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// ScriptError wraps a failure while running a lua rule.
type ScriptError struct {
	Before string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("lua rule %q: %v", e.Before, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
