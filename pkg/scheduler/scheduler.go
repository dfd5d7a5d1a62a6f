// Package scheduler drives the watch pipeline: poll every feed, keep new matching items,
// and send them to the notifier, then wait and repeat.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedwatch/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier
//go:generate moq -out mocks/journal.go -pkg mocks -skip-ensure -fmt goimports . Journal

// Fetcher retrieves raw entries of a feed
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]domain.Entry, error)
}

// Classifier turns a matching entry into an item
type Classifier interface {
	Classify(entry domain.Entry, source string) (domain.Item, bool)
}

// Cache is the set of already notified dedup keys
type Cache interface {
	Contains(key string) bool
	MarkSent(key string)
	Len() int
	Cap() int
}

// Notifier delivers a single item
type Notifier interface {
	Notify(ctx context.Context, item domain.Item) error
}

// Journal records delivery attempts
type Journal interface {
	Record(ctx context.Context, item domain.Item, sendErr error) error
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// DefaultInterval is the pause between the end of one cycle and the start of the next
const DefaultInterval = 30 * time.Second

// Scheduler runs poll cycles forever with a fixed pause between them.
// The pause starts when dispatch ends, so the real period is interval plus cycle duration.
type Scheduler struct {
	coordinator *Coordinator
	dispatcher  *Dispatcher
	journal     Journal
	retention   time.Duration
	interval    time.Duration

	cycles    atomic.Int64
	sent      atomic.Int64
	failed    atomic.Int64
	lastCycle atomic.Int64 // unix nanoseconds, 0 before the first cycle

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Params holds Scheduler dependencies
type Params struct {
	Coordinator      *Coordinator
	Dispatcher       *Dispatcher
	Interval         time.Duration // DefaultInterval if zero
	Journal          Journal       // optional, cleaned up after every cycle
	JournalRetention time.Duration
}

// NewScheduler makes a Scheduler
func NewScheduler(params Params) *Scheduler {
	if params.Interval <= 0 {
		params.Interval = DefaultInterval
	}
	return &Scheduler{
		coordinator: params.Coordinator,
		dispatcher:  params.Dispatcher,
		journal:     params.Journal,
		retention:   params.JournalRetention,
		interval:    params.Interval,
	}
}

// Run executes cycles until ctx is canceled and returns ctx.Err() then. No cycle failure ends the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	lgr.Printf("[INFO] scheduler started, %d feeds, check interval %v", len(s.coordinator.sources), s.interval)
	for {
		s.RunOnce(ctx)

		if err := sleepCtx(ctx, s.interval); err != nil {
			lgr.Printf("[INFO] scheduler stopped: %v", err)
			return err
		}
	}
}

// Start runs the loop in background until Stop is called or ctx is canceled
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.Run(ctx)
	}()
}

// Stop cancels the background loop and waits for the current send to finish
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RunOnce executes a single poll and dispatch cycle. A panic inside the cycle is logged
// and the cycle counts as empty.
func (s *Scheduler) RunOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			lgr.Printf("[ERROR] poll cycle failed: %v\n%s", r, debug.Stack())
		}
		s.cycles.Add(1)
		s.lastCycle.Store(time.Now().UnixNano())
	}()

	st := time.Now()
	elevated, normal := s.coordinator.RunCycle(ctx)
	sent, failed := s.dispatcher.DispatchAll(ctx, elevated, normal)
	s.sent.Add(int64(sent))
	s.failed.Add(int64(failed))

	if err := s.cleanupJournal(ctx); err != nil {
		lgr.Printf("[WARN] %v", err)
	}
	lgr.Printf("[DEBUG] poll cycle done in %v, %d elevated, %d normal", time.Since(st), len(elevated), len(normal))
}

// Status returns a snapshot of sources, interval, cache occupancy and counters
func (s *Scheduler) Status() domain.Status {
	size, capacity := s.coordinator.CacheUsage()
	res := domain.Status{
		Sources:   s.coordinator.Sources(),
		Interval:  s.interval,
		CacheSize: size,
		CacheCap:  capacity,
		Cycles:    s.cycles.Load(),
		Sent:      s.sent.Load(),
		Failed:    s.failed.Load(),
	}
	if ts := s.lastCycle.Load(); ts > 0 {
		res.LastCycle = time.Unix(0, ts)
	}
	return res
}

func (s *Scheduler) cleanupJournal(ctx context.Context) error {
	if s.journal == nil || s.retention <= 0 {
		return nil
	}
	removed, err := s.journal.Cleanup(ctx, s.retention)
	if err != nil {
		return fmt.Errorf("journal cleanup: %w", err)
	}
	if removed > 0 {
		lgr.Printf("[DEBUG] removed %d old journal records", removed)
	}
	return nil
}
