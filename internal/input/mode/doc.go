// Package mode provides the closed set of editor modes and the mode state
// machine.
//
// # Modes
//
// Real modes decide how keys are dispatched:
//
//   - Normal: navigation and commands
//   - Insert and Replace: typed characters edit the document
//   - Visual, VisualLine, VisualBlock: selection modes
//   - SearchInProgress, CommandlineInProgress: typing into a prompt
//   - Disabled: input handling is suspended
//
// Pseudo-modes (OperatorPending, SurroundInput, EasyMotion,
// EasyMotionInput) never affect dispatch. They overlay the real mode for
// rendering and status purposes while a multi-key command is half typed.
//
// # Machine
//
// Machine tracks the real mode and the overlay separately:
//
//	m := mode.NewMachine(mode.Normal)
//	m.OnChange(func(from, to mode.Mode) { ... })
//	m.SetPseudo(mode.OperatorPending)
//	m.Current() // Normal
//	m.Display() // OperatorPending
//
// Transitions happen only through Switch; nothing infers a mode from cursor
// shape.
package mode
