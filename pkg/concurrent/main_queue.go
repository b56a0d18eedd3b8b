package concurrent

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Sync once the queue has been closed.
var ErrQueueClosed = errors.New("main queue closed")

// Executor runs tasks on some execution context.
type Executor interface {
	Async(task func())
}

// Inline runs every task on the caller's goroutine.
type Inline struct{}

func (Inline) Async(task func()) { task() }

// MainQueue 单线程串行队列，模拟UI主线程
// MainQueue is a serial queue backed by one goroutine. Tasks run in submission
// order; Async never blocks, so it is safe to enqueue from a running task.
type MainQueue struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	closed  bool
	once    sync.Once
}

// NewMainQueue starts the queue goroutine.
func NewMainQueue() *MainQueue {
	q := &MainQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Async enqueues task. Tasks submitted after Close are dropped.
func (q *MainQueue) Async(task func()) {
	if task == nil {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, task)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Sync enqueues task and waits for it to finish or for ctx to end.
// Must not be called from a task running on this queue.
func (q *MainQueue) Sync(ctx context.Context, task func()) error {
	finished := make(chan struct{})
	q.Async(func() {
		defer close(finished)
		task()
	})
	select {
	case <-finished:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every task submitted before the call has run.
func (q *MainQueue) Flush(ctx context.Context) error {
	return q.Sync(ctx, func() {})
}

// Close stops the queue after draining tasks already submitted. It blocks until
// the queue goroutine exits, so it must not be called from a task.
func (q *MainQueue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		select {
		case q.wake <- struct{}{}:
		default:
		}
	})
	<-q.done
}

func (q *MainQueue) run() {
	defer close(q.done)
	for range q.wake {
		for {
			q.mu.Lock()
			if len(q.pending) == 0 {
				closed := q.closed
				q.mu.Unlock()
				if closed {
					return
				}
				break
			}
			task := q.pending[0]
			q.pending[0] = nil
			q.pending = q.pending[1:]
			q.mu.Unlock()

			task()
		}
	}
}
