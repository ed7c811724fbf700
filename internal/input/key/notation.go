package key

import (
	"strings"
	"unicode/utf8"
)

// Synthetic keys. They are never produced by a keyboard.
const (
	// TimeoutFinished is posted when buffered keys were not disambiguated in time.
	TimeoutFinished = "<TimeoutFinished>"

	// Copy is the platform copy gesture after aliasing.
	Copy = "<copy>"
)

// Common keys referenced by the core.
const (
	Escape    = "<Esc>"
	Enter     = "<CR>"
	Backspace = "<BS>"
	CtrlC     = "<C-c>"
	CtrlD     = "<C-d>"
	MetaC     = "<D-c>"
	MetaD     = "<D-d>"
)

var synthetic = map[string]bool{
	TimeoutFinished: true,
	Copy:            true,
}

// IsSynthetic reports whether k is one of the synthetic keys.
func IsSynthetic(k string) bool {
	return synthetic[k]
}

// IsCharacter reports whether k is a single printable character key,
// i.e. the kind of key that inserts itself in Insert mode.
func IsCharacter(k string) bool {
	if k == "<lt>" {
		return true
	}
	return k != "" && utf8.RuneCountInString(k) == 1
}

// Character returns the text a character key inserts.
func Character(k string) string {
	if k == "<lt>" {
		return "<"
	}
	return k
}

// IsDigit reports whether k is one of "0".."9".
func IsDigit(k string) bool {
	return len(k) == 1 && k[0] >= '0' && k[0] <= '9'
}

// Split breaks a continuous key string such as "d2w<C-r>" into keys.
// A '<' that does not open a valid bracketed key is taken literally.
func Split(s string) []string {
	var keys []string
	for len(s) > 0 {
		if s[0] == '<' {
			if end := strings.IndexByte(s, '>'); end > 1 {
				candidate := s[:end+1]
				if norm, err := Normalize(candidate); err == nil {
					keys = append(keys, norm)
					s = s[end+1:]
					continue
				}
			}
			keys = append(keys, "<lt>")
			s = s[1:]
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		keys = append(keys, string(r))
		s = s[size:]
	}
	return keys
}

// Join concatenates keys back into a continuous key string.
func Join(keys []string) string {
	return strings.Join(keys, "")
}

// AliasOptions controls platform dependent key aliasing.
type AliasOptions struct {
	// Darwin is true on macOS, where Cmd-C is the copy gesture.
	Darwin bool

	// OverrideCopy routes the platform copy gesture to Copy.
	OverrideCopy bool

	// UseCtrlKeys lets Ctrl chords reach the modal core.
	UseCtrlKeys bool
}

// Alias applies platform and configuration dependent key aliasing.
// visual reports whether a Visual-family mode is active.
func Alias(k string, opts AliasOptions, visual bool) string {
	switch k {
	case MetaC:
		return Copy
	case CtrlC:
		if !opts.Darwin && opts.OverrideCopy && (!opts.UseCtrlKeys || visual) {
			return Copy
		}
	case CtrlD:
		if !opts.UseCtrlKeys {
			return MetaD
		}
	}
	return k
}
