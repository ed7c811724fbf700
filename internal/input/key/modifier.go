package key

// Modifier represents keyboard modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS). Written "D" in notation.
	ModMeta
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns m with the given modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// prefix returns the notation prefix such as "C-A-".
func (m Modifier) prefix(includeShift bool) string {
	var s string
	if m.Has(ModCtrl) {
		s += "C-"
	}
	if m.Has(ModAlt) {
		s += "A-"
	}
	if m.Has(ModMeta) {
		s += "D-"
	}
	if includeShift && m.Has(ModShift) {
		s += "S-"
	}
	return s
}

// modifierFromLetter maps the single-letter notation prefixes.
func modifierFromLetter(letter string) (Modifier, bool) {
	switch letter {
	case "c", "C":
		return ModCtrl, true
	case "a", "A", "m", "M":
		return ModAlt, true
	case "d", "D":
		return ModMeta, true
	case "s", "S":
		return ModShift, true
	}
	return ModNone, false
}

// modifierFromName maps long modifier names used in "Ctrl+S" specs.
var modifierFromName = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
}
