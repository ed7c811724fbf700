// Package actions defines the built-in Vim actions: movements, operators
// and commands, registered into a vim.Registry.
package actions

import (
	"github.com/samber/mo"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/vim"
)

var (
	normalOnly  = []mode.Mode{mode.Normal}
	visualModes = []mode.Mode{mode.Visual, mode.VisualLine, mode.VisualBlock}
	motionModes = []mode.Mode{mode.Normal, mode.Visual, mode.VisualLine, mode.VisualBlock}
	insertOnly  = []mode.Mode{mode.Insert}
	replaceOnly = []mode.Mode{mode.Replace}
	typingModes = []mode.Mode{mode.Insert, mode.Replace}
	promptModes = []mode.Mode{mode.SearchInProgress, mode.CommandlineInProgress}
)

// Defaults returns new definitions for every built-in action, in
// registration order.
func Defaults() []*vim.Definition {
	var defs []*vim.Definition
	defs = append(defs, movements()...)
	defs = append(defs, operators()...)
	defs = append(defs, commands()...)
	defs = append(defs, insertActions()...)
	defs = append(defs, promptActions()...)
	return defs
}

// Register adds the built-in actions to r.
func Register(r *vim.Registry) error {
	return r.Register(Defaults()...)
}

// NewRegistry returns a registry holding the built-in actions.
func NewRegistry() *vim.Registry {
	r := vim.NewRegistry()
	r.MustRegister(Defaults()...)
	return r
}

// countOr returns the typed count, or def when none was typed.
func countOr(s *vim.State, def int) int {
	if c := s.Recorded.EffectiveCount(); c > 0 {
		return c
	}
	return def
}

// leaveVisual remembers the selection for gv and returns to Normal with
// every cursor collapsed onto its stop.
func leaveVisual(s *vim.State) {
	m := s.Mode()
	if !m.IsVisual() {
		return
	}
	primary := s.Cursors.Primary()
	s.LastVisualSelection = mo.Some(vim.VisualSelection{Mode: m, Start: primary.Start, End: primary.Stop})
	s.Cursors.Map(func(_ int, r cursor.Range) cursor.Range { return r.Collapse() })
	s.SetMode(mode.Normal)
}
