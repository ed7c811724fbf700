package vim

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes user-facing errors.
type ErrorCode uint16

const (
	ErrInvalidRegister ErrorCode = iota + 1
	ErrNothingInRegister
	ErrReadOnlyRegister
	ErrPatternNotFound
	ErrNotAnEditorCommand
	ErrNoPreviousCommand
	ErrNoPreviousRegister
	ErrAlreadyAtOldestChange
	ErrAlreadyAtNewestChange
	ErrJumpListEmpty
	ErrRecursiveMapping
	ErrMarkNotSet
	ErrNoFileName
)

var errorText = map[ErrorCode]string{
	ErrInvalidRegister:       "Invalid register name",
	ErrNothingInRegister:     "Nothing in register",
	ErrReadOnlyRegister:      "Register is read-only",
	ErrPatternNotFound:       "Pattern not found",
	ErrNotAnEditorCommand:    "Not an editor command",
	ErrNoPreviousCommand:     "No previous command",
	ErrNoPreviousRegister:    "No previous register",
	ErrAlreadyAtOldestChange: "Already at oldest change",
	ErrAlreadyAtNewestChange: "Already at newest change",
	ErrJumpListEmpty:         "Jump list is empty",
	ErrRecursiveMapping:      "Recursive mapping",
	ErrMarkNotSet:            "Mark not set",
	ErrNoFileName:            "No file name",
}

// Error is a recoverable, user-facing condition. It aborts the current
// command and is shown as a status message; it never ends the session.
type Error struct {
	Code ErrorCode
	// Detail is appended to the message, e.g. the offending pattern.
	Detail string
}

// NewError creates a domain error.
func NewError(code ErrorCode, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg, ok := errorText[e.Code]
	if !ok {
		msg = fmt.Sprintf("error %d", e.Code)
	}
	if e.Detail != "" {
		return fmt.Sprintf("E%d: %s: %s", e.Code, msg, e.Detail)
	}
	return fmt.Sprintf("E%d: %s", e.Code, msg)
}

// AsError returns the domain error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsError reports whether err is, or wraps, a domain error.
func IsError(err error) bool {
	_, ok := AsError(err)
	return ok
}
