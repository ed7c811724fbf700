package modehandler

import (
	"context"
	"sync"

	"github.com/gammazero/workerpool"
)

// ResultFunc receives the outcome of every posted key.
type ResultFunc func(k string, res Result, err error)

// Scheduler serializes keys, timeouts and selection notifications for one
// handler on a single worker, so no two events are ever processed at once.
type Scheduler struct {
	mu       sync.Mutex
	stopped  bool
	pool     *workerpool.WorkerPool
	ctx      context.Context
	handler  *ModeHandler
	onResult ResultFunc
}

// NewScheduler attaches a scheduler to h. Disambiguation timeouts are only
// armed while a scheduler is attached.
func NewScheduler(ctx context.Context, h *ModeHandler, onResult ResultFunc) *Scheduler {
	sc := &Scheduler{
		pool:     workerpool.New(1), // Sequential processing
		ctx:      ctx,
		handler:  h,
		onResult: onResult,
	}
	sc.pool.SubmitWait(func() {
		h.post = func(k string) { sc.PostKey(k) }
	})
	return sc
}

func (sc *Scheduler) submit(task func()) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.stopped {
		return false
	}
	sc.pool.Submit(task)
	return true
}

// PostKey queues a key. It reports false once the scheduler is stopped.
func (sc *Scheduler) PostKey(k string) bool {
	return sc.submit(func() {
		res, err := sc.handler.Handle(sc.ctx, k)
		if sc.onResult != nil {
			sc.onResult(k, res, err)
		}
	})
}

// PostSelection queues a selection-change notification.
func (sc *Scheduler) PostSelection(ch SelectionChange) bool {
	return sc.submit(func() {
		sc.handler.HandleSelectionChange(sc.ctx, ch)
	})
}

// Do runs fn on the worker, between events.
func (sc *Scheduler) Do(fn func(h *ModeHandler)) bool {
	return sc.submit(func() {
		fn(sc.handler)
	})
}

// Wait blocks until every event queued so far has been processed.
func (sc *Scheduler) Wait() {
	sc.mu.Lock()
	if sc.stopped {
		sc.mu.Unlock()
		return
	}
	sc.mu.Unlock()
	sc.pool.SubmitWait(func() {})
}

// Pending returns the number of queued events.
func (sc *Scheduler) Pending() int {
	return sc.pool.WaitingQueueSize()
}

// Stop processes the queued events, detaches from the handler and stops
// the worker. Later posts are dropped.
func (sc *Scheduler) Stop() {
	sc.mu.Lock()
	if sc.stopped {
		sc.mu.Unlock()
		return
	}
	sc.pool.Submit(func() {
		sc.handler.post = nil
		sc.handler.state.Recorded.StopTimer()
	})
	sc.stopped = true
	sc.mu.Unlock()
	sc.pool.StopWait()
}
