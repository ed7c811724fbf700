package vim

import (
	"strings"
	"sync"
	"unicode"
)

// Register names with special behavior.
const (
	BlackHoleRegister    = "_"
	LastInsertedRegister = "."
	LastYankRegister     = "0"
	SmallDeleteRegister  = "-"
)

// RegisterContent is what a register holds: text per cursor, or a
// recorded macro.
type RegisterContent struct {
	// Text holds one entry per cursor that produced it.
	Text []string

	// Mode is how the text was captured.
	Mode RegisterMode

	// Actions is a recorded macro.
	Actions []Action
}

// IsMacro reports whether the register holds a recorded macro.
func (c RegisterContent) IsMacro() bool {
	return len(c.Actions) > 0
}

// Joined returns the text entries joined by newlines.
func (c RegisterContent) Joined() string {
	return strings.Join(c.Text, "\n")
}

// Registers is the register store shared by every editor in the process.
type Registers struct {
	mu        sync.RWMutex
	registers map[string]RegisterContent
	lastMacro string
}

var (
	globalRegisters     *Registers
	globalRegistersOnce sync.Once
)

// GlobalRegisters returns the process-wide register store, creating it on
// first use.
func GlobalRegisters() *Registers {
	globalRegistersOnce.Do(func() {
		globalRegisters = NewRegisters()
	})
	return globalRegisters
}

// NewRegisters creates an independent register store.
func NewRegisters() *Registers {
	return &Registers{registers: make(map[string]RegisterContent)}
}

// IsValidRegisterName reports whether name can be used after " or q.
func IsValidRegisterName(name string) bool {
	if len(name) != 1 {
		return false
	}
	r := rune(name[0])
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(`"-_.*+:/`, r)
}

// isReadOnly reports whether users may not write name directly.
func isReadOnly(name string) bool {
	return name == LastInsertedRegister || name == ":" || name == "/"
}

// Get returns the content of a register. Uppercase names read the
// lowercase register.
func (rs *Registers) Get(name string) (RegisterContent, error) {
	if !IsValidRegisterName(name) {
		return RegisterContent{}, NewError(ErrInvalidRegister, name)
	}
	name = strings.ToLower(name)

	rs.mu.RLock()
	defer rs.mu.RUnlock()
	c, ok := rs.registers[name]
	if !ok || (len(c.Text) == 0 && len(c.Actions) == 0) {
		return RegisterContent{}, NewError(ErrNothingInRegister, name)
	}
	return c, nil
}

// Put stores content in a register. Uppercase names append to the
// lowercase register; the black hole register discards everything.
func (rs *Registers) Put(name string, content RegisterContent) error {
	if !IsValidRegisterName(name) {
		return NewError(ErrInvalidRegister, name)
	}
	if isReadOnly(name) {
		return NewError(ErrReadOnlyRegister, name)
	}
	if name == BlackHoleRegister {
		return nil
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if r := rune(name[0]); unicode.IsUpper(r) {
		name = strings.ToLower(name)
		existing := rs.registers[name]
		existing.Text = appendText(existing.Text, content.Text)
		existing.Actions = append(existing.Actions, content.Actions...)
		if content.Mode == Linewise {
			existing.Mode = Linewise
		}
		rs.registers[name] = existing
		return nil
	}

	rs.registers[name] = content
	return nil
}

// PutEntry stores the text one cursor produced. The first cursor replaces
// the register content like Put; later cursors add their own entry.
func (rs *Registers) PutEntry(name string, index int, text string, mode RegisterMode) error {
	if index == 0 {
		return rs.Put(name, RegisterContent{Text: []string{text}, Mode: mode})
	}
	if !IsValidRegisterName(name) {
		return NewError(ErrInvalidRegister, name)
	}
	if isReadOnly(name) {
		return NewError(ErrReadOnlyRegister, name)
	}
	if name == BlackHoleRegister {
		return nil
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	name = strings.ToLower(name)
	c := rs.registers[name]
	c.Text = append(c.Text, text)
	rs.registers[name] = c
	return nil
}

// putInternal writes read-only registers such as ".".
func (rs *Registers) putInternal(name string, content RegisterContent) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.registers[name] = content
}

// SetLastInserted updates the "." register.
func (rs *Registers) SetLastInserted(text string) {
	rs.putInternal(LastInsertedRegister, RegisterContent{Text: []string{text}})
}

// SetLastSearch updates the "/" register.
func (rs *Registers) SetLastSearch(pattern string) {
	rs.putInternal("/", RegisterContent{Text: []string{pattern}})
}

// SetLastCommandline updates the ":" register.
func (rs *Registers) SetLastCommandline(command string) {
	rs.putInternal(":", RegisterContent{Text: []string{command}})
}

// SetLastMacro remembers the register last replayed with @, for @@.
func (rs *Registers) SetLastMacro(name string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.lastMacro = strings.ToLower(name)
}

// LastMacro returns the register last replayed with @.
func (rs *Registers) LastMacro() (string, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.lastMacro, rs.lastMacro != ""
}

// appendText appends per-cursor text, pairing entries when counts match.
func appendText(existing, added []string) []string {
	if len(existing) == len(added) {
		out := make([]string, len(existing))
		for i := range existing {
			out[i] = existing[i] + added[i]
		}
		return out
	}
	return append(append([]string{}, existing...), added...)
}
