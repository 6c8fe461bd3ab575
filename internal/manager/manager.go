package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/histomap/histomap/internal/cache"
	"github.com/histomap/histomap/internal/histdata"
	"github.com/histomap/histomap/internal/store"
)

// Defaults match the desktop application's tuning: a handful of years
// on screen at once, and enough queue headroom for a burst of edits.
const (
	DefaultCacheSize = 8
	DefaultQueueSize = 128
)

// task is one unit of work for the worker goroutine. The id is a
// correlation token for log lines only; it carries no semantics.
type task struct {
	id   string
	kind string
	year int
	run  func(context.Context, *store.Store) error
}

type loadResult struct {
	year int
	data *histdata.Data
}

// Manager is the asynchronous, cache-aside facade over the store.
//
// Exactly one worker goroutine owns the live store handle and executes
// every storage operation in strict FIFO enqueue order. Callers never
// block: Load answers from the cache or schedules a fetch, Update and
// Remove are fire-and-forget.
//
// Thread-safety model:
//   - Update, Remove, WorkLoad: safe from any goroutine
//   - Load: must be called from one goroutine; the cache and the
//     requesting set are deliberately unlocked (see package comment)
//   - Close: call once, after all other calls have stopped
type Manager struct {
	store      *store.Store
	tasks      *taskQueue
	results    chan loadResult
	cache      *cache.Cache[int, *histdata.Data]
	requesting map[int]struct{}
	running    atomic.Bool
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	cacheSize int
	queueSize int
	logger    *slog.Logger
}

// WithCacheSize bounds the number of years kept in memory.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithQueueSize bounds the pending task queue. Enqueue attempts beyond
// the bound fail with ErrQueueFull instead of blocking.
func WithQueueSize(n int) Option {
	return func(o *options) {
		o.queueSize = n
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New creates a Manager owning st and starts its worker goroutine.
// From this point on the store must not be used directly; Close
// releases both the worker and the store.
func New(st *store.Store, opts ...Option) *Manager {
	o := options{
		cacheSize: DefaultCacheSize,
		queueSize: DefaultQueueSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		store:      st,
		tasks:      newTaskQueue(o.queueSize),
		results:    make(chan loadResult, o.queueSize),
		cache:      cache.New[int, *histdata.Data](o.cacheSize),
		requesting: make(map[int]struct{}),
		logger:     o.logger,
	}

	m.running.Store(true)
	m.wg.Add(1)
	go m.worker()

	return m
}

// Load returns the year's snapshot if it is cached, otherwise schedules
// an asynchronous fetch and returns nil. Callers poll again on a later
// tick; a nil result is the eventually-consistent contract, not an
// error.
func (m *Manager) Load(year int) *histdata.Data {
	// Fold completed fetches into the cache first so this call can
	// answer loads finished since the previous tick.
drain:
	for {
		select {
		case res := <-m.results:
			m.logger.Debug("update cache", "year", res.year)
			m.cache.Set(res.year, res.data)
			delete(m.requesting, res.year)
		default:
			break drain
		}
	}

	if data, ok := m.cache.Get(year); ok {
		m.logger.Debug("load cached data", "year", year)
		return data
	}

	m.logger.Debug("no cached data", "year", year)

	if _, inflight := m.requesting[year]; !inflight {
		if m.request(year) == nil {
			m.requesting[year] = struct{}{}
		}
	}

	return nil
}

// Update queues an upsert of the snapshot. Fire-and-forget: a storage
// failure on the worker is logged, never surfaced here. Only an enqueue
// failure (queue full or manager closed) is returned, and the mutation
// is dropped.
func (m *Manager) Update(data *histdata.Data) error {
	t := task{
		id:   uuid.NewString(),
		kind: "update",
		year: data.Year,
		run: func(ctx context.Context, s *store.Store) error {
			return s.Upsert(ctx, data)
		},
	}
	if err := m.tasks.Enqueue(t); err != nil {
		m.logger.Error("enqueue update task failed", "year", data.Year, "error", err)
		return fmt.Errorf("update year %d: %w", data.Year, err)
	}
	m.logger.Debug("queued update task", "task", t.id, "year", data.Year)
	return nil
}

// Remove queues removal of the snapshot's entities. Same contract as
// Update.
func (m *Manager) Remove(data *histdata.Data) error {
	t := task{
		id:   uuid.NewString(),
		kind: "remove",
		year: data.Year,
		run: func(ctx context.Context, s *store.Store) error {
			return s.Remove(ctx, data)
		},
	}
	if err := m.tasks.Enqueue(t); err != nil {
		m.logger.Error("enqueue remove task failed", "year", data.Year, "error", err)
		return fmt.Errorf("remove year %d: %w", data.Year, err)
	}
	m.logger.Debug("queued remove task", "task", t.id, "year", data.Year)
	return nil
}

// WorkLoad returns the approximate number of pending tasks, for
// progress reporting. Not exact: the worker drains concurrently.
func (m *Manager) WorkLoad() int {
	return m.tasks.Len()
}

// Close stops the worker and closes the store. Tasks still queued when
// Close is called are not guaranteed to run: the worker re-checks its
// stop flag before each dequeue. This at-most-once-on-shutdown behavior
// is intentional; strengthening it would change the shutdown latency
// from bounded to workload-dependent.
func (m *Manager) Close() error {
	if !m.running.CompareAndSwap(true, false) {
		return nil
	}

	// One no-op task to unblock a worker waiting on an empty queue. If
	// the queue is full the worker is not blocked and the wakeup is
	// unnecessary anyway.
	_ = m.tasks.Enqueue(task{kind: "stop"})

	m.wg.Wait()
	m.tasks.Close()

	return m.store.Close()
}

// request queues a fetch task for the year. The completed load travels
// back over the results channel and is folded into the cache by a later
// Load call.
func (m *Manager) request(year int) error {
	t := task{
		id:   uuid.NewString(),
		kind: "load",
		year: year,
		run: func(ctx context.Context, s *store.Store) error {
			data, err := s.Load(ctx, year)
			if err != nil {
				return err
			}
			select {
			case m.results <- loadResult{year: year, data: data}:
			default:
				// The results buffer matches the task queue bound, so
				// this only fires when the caller stopped draining.
				return fmt.Errorf("load year %d: result channel full, dropping result", year)
			}
			return nil
		},
	}
	if err := m.tasks.Enqueue(t); err != nil {
		m.logger.Error("enqueue load task failed", "year", year, "error", err)
		return err
	}
	m.logger.Debug("queued load task", "task", t.id, "year", year)
	return nil
}

func (m *Manager) worker() {
	defer m.wg.Done()

	// The stop flag is checked before dequeuing, so tasks queued at
	// shutdown time may never run. See Close.
	for m.running.Load() {
		t, ok := m.tasks.Dequeue()
		if !ok {
			return
		}
		if t.run == nil {
			// Shutdown wakeup.
			continue
		}

		m.logger.Debug("process task", "task", t.id, "kind", t.kind, "year", t.year)
		if err := t.run(context.Background(), m.store); err != nil {
			// No caller is waiting on a mutation, so a storage failure
			// can only be logged here. The worker keeps serving
			// subsequent tasks.
			m.logger.Error("task failed", "task", t.id, "kind", t.kind, "year", t.year, "error", err)
		}
	}
}
