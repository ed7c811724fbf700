package vim

import (
	"sync"

	"github.com/dshills/modalcore/internal/engine/cursor"
)

// Jump is one jump-list location.
type Jump struct {
	EditorID string
	Position cursor.Position
}

// JumpTracker is the jump list shared by every editor in the process.
type JumpTracker struct {
	mu    sync.Mutex
	jumps []Jump
	// index is len(jumps) when not navigating.
	index int
	max   int
}

var (
	globalJumps     *JumpTracker
	globalJumpsOnce sync.Once
)

// GlobalJumps returns the process-wide jump list, creating it on first use.
func GlobalJumps() *JumpTracker {
	globalJumpsOnce.Do(func() {
		globalJumps = NewJumpTracker(100)
	})
	return globalJumps
}

// NewJumpTracker creates an independent jump list holding up to max entries.
func NewJumpTracker(max int) *JumpTracker {
	if max <= 0 {
		max = 100
	}
	return &JumpTracker{max: max}
}

// RecordJump records a jump from one location to another. Navigating
// back and then jumping discards the entries after the current one.
func (j *JumpTracker) RecordJump(from, to Jump) {
	if from == to {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.index < len(j.jumps) {
		j.jumps = j.jumps[:j.index]
	}
	if n := len(j.jumps); n == 0 || j.jumps[n-1] != from {
		j.jumps = append(j.jumps, from)
	}
	if len(j.jumps) > j.max {
		j.jumps = j.jumps[len(j.jumps)-j.max:]
	}
	j.index = len(j.jumps)
}

// Back moves to the previous jump. current is remembered so Forward can
// return to it.
func (j *JumpTracker) Back(current Jump) (Jump, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.index == 0 {
		return Jump{}, false
	}
	if j.index == len(j.jumps) {
		j.jumps = append(j.jumps, current)
	}
	j.index--
	return j.jumps[j.index], true
}

// Forward moves to the next jump after a Back.
func (j *JumpTracker) Forward() (Jump, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.index+1 >= len(j.jumps) {
		return Jump{}, false
	}
	j.index++
	return j.jumps[j.index], true
}

// Len returns the number of recorded jumps.
func (j *JumpTracker) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.jumps)
}
