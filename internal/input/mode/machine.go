package mode

import (
	"sync"

	"github.com/samber/mo"
)

// ChangeCallback is called when the real mode changes.
type ChangeCallback func(from, to Mode)

// Machine holds the current mode of one editor instance.
type Machine struct {
	mu sync.RWMutex

	// current is the real mode; it alone drives dispatch.
	current Mode

	// previous is the mode before the last transition.
	previous Mode

	// pseudo overlays current for display.
	pseudo mo.Option[Mode]

	// callbacks are notified on mode changes.
	callbacks []ChangeCallback
}

// NewMachine creates a mode machine starting in initial.
// A pseudo-mode cannot be the initial mode; Normal is used instead.
func NewMachine(initial Mode) *Machine {
	if initial.IsPseudo() {
		initial = Normal
	}
	return &Machine{
		current:  initial,
		previous: initial,
		pseudo:   mo.None[Mode](),
	}
}

// Current returns the real current mode.
func (m *Machine) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Previous returns the mode before the last transition.
func (m *Machine) Previous() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous
}

// Display returns the mode including pseudo-modes.
func (m *Machine) Display() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pseudo.OrElse(m.current)
}

// Pseudo returns the active overlay, if any.
func (m *Machine) Pseudo() mo.Option[Mode] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pseudo
}

// SetPseudo shows p on top of the real mode. Non-pseudo modes are ignored.
func (m *Machine) SetPseudo(p Mode) {
	if !p.IsPseudo() {
		return
	}
	m.mu.Lock()
	m.pseudo = mo.Some(p)
	m.mu.Unlock()
}

// ClearPseudo removes the overlay.
func (m *Machine) ClearPseudo() {
	m.mu.Lock()
	m.pseudo = mo.None[Mode]()
	m.mu.Unlock()
}

// Switch changes the real mode. Pseudo-modes are rejected and return false.
// Switching to the current mode is a no-op and does not notify callbacks.
func (m *Machine) Switch(to Mode) bool {
	if to.IsPseudo() {
		return false
	}

	m.mu.Lock()
	from := m.current
	if from == to {
		m.mu.Unlock()
		return true
	}
	m.previous = from
	m.current = to

	// Copy callbacks to call outside of lock
	callbacks := make([]ChangeCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(from, to)
		}
	}
	return true
}

// OnChange registers a callback for mode changes.
// Returns a function to unregister the callback.
func (m *Machine) OnChange(callback ChangeCallback) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
	index := len(m.callbacks) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Remove callback by setting to nil (preserves indices)
		if index < len(m.callbacks) {
			m.callbacks[index] = nil
		}
	}
}

// IsMode returns true if the real mode is md.
func (m *Machine) IsMode(md Mode) bool {
	return m.Current() == md
}

// IsAnyMode returns true if the real mode is any of the given modes.
func (m *Machine) IsAnyMode(modes ...Mode) bool {
	current := m.Current()
	for _, md := range modes {
		if current == md {
			return true
		}
	}
	return false
}
