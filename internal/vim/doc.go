// Package vim holds the modal command model: actions, the registry that
// resolves typed keys to actions, the per-command transcript and the
// per-editor state.
//
// # Actions
//
// An action is a Definition of one of three kinds:
//
//   - Movement: runs once per cursor and may supply a range to an operator
//   - Operator: waits for a movement or a Visual selection, then edits
//   - Command: runs once and fans out over cursors itself
//
// Each definition declares its key patterns, the modes it is active in and
// its capabilities (Complete, Repeatable, IsJump). Patterns may contain
// placeholders that match a class of key:
//
//	&vim.Definition{
//		Name:  "find-forward",
//		Kind:  vim.Movement,
//		Keys:  [][]string{{"f", vim.CharacterArg}},
//		Modes: []mode.Mode{mode.Normal, mode.Visual},
//		Move:  findForward,
//	}
//
// # Resolution
//
// Registry.Resolve matches the keys typed since the last action against
// the definitions active in the real mode. It reports NoPossibleMatch,
// WaitingOnKeys or a matched Action. Resolution depends only on the keys
// and the state, so resolving the same keys twice gives the same action.
//
// # Shared state
//
// Registers and the jump list are process-wide; every other piece of State
// belongs to a single editor.
package vim
