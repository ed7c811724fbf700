package document

import (
	"errors"
	"io"
	"sync"

	"github.com/dshills/modalcore/internal/engine/cursor"
)

// Errors returned by buffer operations.
var (
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrRangeInvalid       = errors.New("invalid range")
)

// Buffer is a mutable line-oriented document.
// All methods are thread-safe.
type Buffer struct {
	mu       sync.RWMutex
	lines    lines
	revision uint64
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{lines: lines{""}}
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string) *Buffer {
	return &Buffer{lines: splitLines(s)}
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data)), nil
}

// Snapshot returns an immutable view of the current content.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cp := make(lines, len(b.lines))
	copy(cp, b.lines)
	return &Snapshot{lines: cp, revision: b.revision}
}

// Revision returns a counter incremented by every modification.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines.Text()
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines.LineCount()
}

// SetText replaces the whole content.
func (b *Buffer) SetText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = splitLines(text)
	b.revision++
	return nil
}

// Insert inserts text at p.
func (b *Buffer) Insert(p cursor.Position, text string) error {
	return b.Replace(p, p, text)
}

// Delete removes the text between start and end.
func (b *Buffer) Delete(start, end cursor.Position) error {
	return b.Replace(start, end, "")
}

// Replace replaces the text between start and end (in document order) with
// text. Positions must be valid for the current content.
func (b *Buffer) Replace(start, end cursor.Position, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if end.Before(start) {
		return ErrRangeInvalid
	}
	if !b.validLocked(start) || !b.validLocked(end) {
		return ErrPositionOutOfRange
	}

	startRunes := []rune(b.lines[start.Line])
	endRunes := []rune(b.lines[end.Line])
	merged := string(startRunes[:start.Column]) + text + string(endRunes[end.Column:])

	replacement := splitLines(merged)
	updated := make(lines, 0, len(b.lines)-(end.Line-start.Line)+len(replacement)-1)
	updated = append(updated, b.lines[:start.Line]...)
	updated = append(updated, replacement...)
	updated = append(updated, b.lines[end.Line+1:]...)

	b.lines = updated
	b.revision++
	return nil
}

func (b *Buffer) validLocked(p cursor.Position) bool {
	return p.Line >= 0 && p.Line < len(b.lines) && p.Column >= 0 && p.Column <= b.lines.LineLength(p.Line)
}

// Snapshot provides a read-only view of a buffer at a specific point in time.
// It will not change even if the original buffer is modified.
type Snapshot struct {
	lines
	revision uint64
}

// Revision returns the buffer revision the snapshot was taken at.
func (s *Snapshot) Revision() uint64 {
	return s.revision
}

// FromString returns a standalone snapshot of text, for tests and tools.
func FromString(text string) *Snapshot {
	return &Snapshot{lines: splitLines(text)}
}

var _ Document = (*Snapshot)(nil)
