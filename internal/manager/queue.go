package manager

import (
	"errors"
	"sync"
)

// Enqueue failure modes. Both are non-fatal to the manager: the caller
// logs and drops the task, no retry is attempted.
var (
	// ErrQueueFull is returned when the bounded task queue is saturated.
	ErrQueueFull = errors.New("task queue full")
	// ErrQueueClosed is returned when the manager is shutting down.
	ErrQueueClosed = errors.New("task queue closed")
)

// taskQueue is a bounded, thread-safe FIFO queue feeding the worker.
//
// Enqueue never blocks: a full or closed queue fails immediately.
// Dequeue blocks the worker until a task is available or the queue is
// closed. The signal channel (buffered, size 1) coalesces wakeups so
// that a burst of enqueues costs one notification.
type taskQueue struct {
	mu       sync.Mutex
	tasks    []task
	capacity int
	closed   bool
	signal   chan struct{}
}

func newTaskQueue(capacity int) *taskQueue {
	return &taskQueue{
		tasks:    make([]task, 0, capacity),
		capacity: capacity,
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a task to the back of the queue.
// Thread-safe: may be called from any goroutine.
func (q *taskQueue) Enqueue(t task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if len(q.tasks) >= q.capacity {
		return ErrQueueFull
	}

	q.tasks = append(q.tasks, t)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return nil
}

// Dequeue removes and returns the front task, blocking until one is
// available. Returns (task{}, false) once the queue is closed and
// drained.
func (q *taskQueue) Dequeue() (task, bool) {
	for {
		if t, ok := q.tryDequeue(); ok {
			return t, true
		}

		q.mu.Lock()
		if q.closed && len(q.tasks) == 0 {
			q.mu.Unlock()
			return task{}, false
		}
		q.mu.Unlock()

		<-q.signal
	}
}

func (q *taskQueue) tryDequeue() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return task{}, false
	}

	t := q.tasks[0]

	// Nil out the slot so the task's closure can be collected while the
	// backing array is still alive.
	q.tasks[0] = task{}

	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}

	return t, true
}

// Len returns the current queue length.
func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close marks the queue closed and wakes blocked waiters.
// Tasks still queued stay queued; whether they run depends on the
// worker's stop flag, not on the queue.
func (q *taskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
