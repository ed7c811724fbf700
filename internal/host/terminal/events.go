package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/modehandler"
)

// specialKeys maps the tcell keys that have a Vim name. The control keys
// that share a code with one of these (Tab, Enter, Backspace, Escape) are
// reported under the Vim name.
var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBacktab:    key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
	tcell.KeyF1:         key.KeyF1,
	tcell.KeyF2:         key.KeyF2,
	tcell.KeyF3:         key.KeyF3,
	tcell.KeyF4:         key.KeyF4,
	tcell.KeyF5:         key.KeyF5,
	tcell.KeyF6:         key.KeyF6,
	tcell.KeyF7:         key.KeyF7,
	tcell.KeyF8:         key.KeyF8,
	tcell.KeyF9:         key.KeyF9,
	tcell.KeyF10:        key.KeyF10,
	tcell.KeyF11:        key.KeyF11,
	tcell.KeyF12:        key.KeyF12,
}

// keyEvent converts a tcell key event. ok is false for keys with no Vim
// notation.
func keyEvent(ev *tcell.EventKey) (key.Event, bool) {
	mods := convertMod(ev.Modifiers())
	k := ev.Key()

	if k == tcell.KeyRune {
		return key.NewRuneEvent(ev.Rune(), mods), true
	}
	if special, ok := specialKeys[k]; ok {
		if k == tcell.KeyBacktab {
			mods |= key.ModShift
		}
		return key.NewSpecialEvent(special, mods), true
	}
	switch {
	case k == tcell.KeyCtrlSpace:
		return key.NewRuneEvent(' ', mods|key.ModCtrl), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return key.NewRuneEvent(rune('a'+int(k-tcell.KeyCtrlA)), mods|key.ModCtrl), true
	}
	return key.Event{}, false
}

// KeyNotation returns the Vim notation of a terminal key press, or "" for
// keys the core cannot name.
func KeyNotation(ev *tcell.EventKey) string {
	e, ok := keyEvent(ev)
	if !ok {
		return ""
	}
	return e.Notation()
}

// convertMod converts tcell modifier mask to a key.Modifier.
func convertMod(m tcell.ModMask) key.Modifier {
	var result key.Modifier
	if m&tcell.ModShift != 0 {
		result |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= key.ModMeta
	}
	return result
}

// mouseTracker turns primary-button presses and drags into pointer
// selection changes. A press selects nothing at the clicked position; a
// drag selects from the press position to the pointer.
type mouseTracker struct {
	dragging bool
	anchor   cursor.Position
	last     cursor.Position
}

func (m *mouseTracker) selection(ev *tcell.EventMouse, toDoc func(x, y int) (cursor.Position, bool)) (modehandler.SelectionChange, bool) {
	if ev.Buttons()&tcell.Button1 == 0 {
		m.dragging = false
		return modehandler.SelectionChange{}, false
	}
	x, y := ev.Position()
	p, ok := toDoc(x, y)
	if !ok {
		return modehandler.SelectionChange{}, false
	}

	if !m.dragging {
		m.dragging = true
		m.anchor, m.last = p, p
		return pointer(cursor.At(p)), true
	}
	if p.Equals(m.last) {
		return modehandler.SelectionChange{}, false
	}
	m.last = p
	return pointer(cursor.NewRange(m.anchor, p)), true
}

func pointer(r cursor.Range) modehandler.SelectionChange {
	return modehandler.SelectionChange{
		Selections: []cursor.Range{r},
		Kind:       modehandler.SelectionPointer,
	}
}
