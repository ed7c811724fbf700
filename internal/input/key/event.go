package key

import (
	"unicode"
)

// Event represents a single structured key press, as delivered by a host.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{Key: key, Modifiers: mods}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsModified returns true if any modifier is pressed.
// For character events, Shift alone is not considered modified
// (since Shift changes the character itself).
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// Notation returns the Vim-notation key string for the event.
// Examples: "a", "A", " ", "<Esc>", "<C-r>", "<D-c>", "<S-Tab>", "<lt>".
func (e Event) Notation() string {
	if e.IsRune() && !e.IsModified() {
		if e.Rune == '<' {
			return "<lt>"
		}
		return string(e.Rune)
	}

	var name string
	switch {
	case e.IsRune():
		name = string(unicode.ToLower(e.Rune))
		if e.Rune == ' ' {
			name = "Space"
		}
	case e.Key.IsSpecial():
		name = e.Key.String()
	default:
		return ""
	}

	return "<" + e.Modifiers.prefix(!e.IsRune()) + name + ">"
}

// String returns the notation of the event.
func (e Event) String() string {
	return e.Notation()
}
