package mode

import (
	"fmt"
	"strings"
)

// Mode is one of the editor modes.
type Mode uint8

const (
	Normal Mode = iota
	Insert
	Replace
	Visual
	VisualLine
	VisualBlock
	SearchInProgress
	CommandlineInProgress
	OperatorPending
	SurroundInput
	EasyMotion
	EasyMotionInput
	Disabled
)

var modeNames = [...]string{
	Normal:                "normal",
	Insert:                "insert",
	Replace:               "replace",
	Visual:                "visual",
	VisualLine:            "visualline",
	VisualBlock:           "visualblock",
	SearchInProgress:      "search",
	CommandlineInProgress: "commandline",
	OperatorPending:       "operatorpending",
	SurroundInput:         "surroundinput",
	EasyMotion:            "easymotion",
	EasyMotionInput:       "easymotioninput",
	Disabled:              "disabled",
}

var displayNames = [...]string{
	Normal:                "NORMAL",
	Insert:                "INSERT",
	Replace:               "REPLACE",
	Visual:                "VISUAL",
	VisualLine:            "VISUAL LINE",
	VisualBlock:           "VISUAL BLOCK",
	SearchInProgress:      "SEARCH",
	CommandlineInProgress: "COMMAND",
	OperatorPending:       "OPERATOR PENDING",
	SurroundInput:         "SURROUND",
	EasyMotion:            "EASYMOTION",
	EasyMotionInput:       "EASYMOTION INPUT",
	Disabled:              "DISABLED",
}

// Name returns the lowercase identifier used in configuration.
func (m Mode) Name() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// String returns the status-line name of the mode.
func (m Mode) String() string {
	if int(m) < len(displayNames) {
		return displayNames[m]
	}
	return m.Name()
}

// IsVisual reports whether m is one of the Visual-family modes.
func (m Mode) IsVisual() bool {
	return m == Visual || m == VisualLine || m == VisualBlock
}

// IsPseudo reports whether m is an overlay that never drives dispatch.
func (m Mode) IsPseudo() bool {
	switch m {
	case OperatorPending, SurroundInput, EasyMotion, EasyMotionInput:
		return true
	}
	return false
}

// IsTransientInput reports whether m is a prompt-like mode whose
// transitions back to Normal do not count as repeatable edits.
func (m Mode) IsTransientInput() bool {
	switch m {
	case SearchInProgress, CommandlineInProgress, EasyMotionInput, EasyMotion, SurroundInput:
		return true
	}
	return false
}

// IsInsertLike reports whether typed characters edit the document in m.
func (m Mode) IsInsertLike() bool {
	return m == Insert || m == Replace
}

// Parse returns the mode with the given configuration name.
func Parse(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return Normal, fmt.Errorf("unknown mode: %s", name)
}

// CursorStyle defines the visual appearance of the cursor.
type CursorStyle uint8

const (
	// CursorBlock is a full-cell block cursor (normal mode).
	CursorBlock CursorStyle = iota

	// CursorBar is a thin vertical bar cursor (insert mode).
	CursorBar

	// CursorUnderline is an underline cursor.
	CursorUnderline

	// CursorHidden hides the cursor.
	CursorHidden
)

// String returns a human-readable cursor style name.
func (c CursorStyle) String() string {
	switch c {
	case CursorBlock:
		return "block"
	case CursorBar:
		return "bar"
	case CursorUnderline:
		return "underline"
	case CursorHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// CursorStyle returns the cursor style for the mode.
func (m Mode) CursorStyle() CursorStyle {
	switch m {
	case Insert, SearchInProgress, CommandlineInProgress:
		return CursorBar
	case Replace, OperatorPending, SurroundInput:
		return CursorUnderline
	case Disabled:
		return CursorHidden
	default:
		return CursorBlock
	}
}
