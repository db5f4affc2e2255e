package editor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindcanvas/internal/domain"
)

// Autosave defaults
const (
	DefaultDebounce = time.Second
	DefaultInterval = 30 * time.Second
)

// Timer is a pending callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The system clock is used unless a test
// substitutes its own.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
func (systemClock) Now() time.Time                            { return time.Now() }

// SystemClock is the wall clock
var SystemClock Clock = systemClock{}

// SaveFunc persists an exported document
type SaveFunc func(ctx context.Context, doc domain.Document) error

// SaveStats summarizes the scheduler's save history
type SaveStats struct {
	Saves     int       `json:"saves"`
	Failures  int       `json:"failures"`
	LastSaved time.Time `json:"last_saved,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// SchedulerConfig tunes a Scheduler
type SchedulerConfig struct {
	Debounce time.Duration
	Interval time.Duration
	Clock    Clock
}

// Scheduler flushes the exported document to a save callback after a quiet
// period following content changes, and on a fixed interval
type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	debounce time.Duration
	interval time.Duration
	export   func() domain.Document
	save     SaveFunc
	logger   *zap.Logger

	debounceTimer Timer
	periodicTimer Timer
	generation    uint64
	started       bool
	stopped       bool
	stats         SaveStats

	inflight sync.WaitGroup
}

// NewScheduler creates a scheduler. Zero durations fall back to the defaults.
func NewScheduler(export func() domain.Document, save SaveFunc, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		clock:    cfg.Clock,
		debounce: cfg.Debounce,
		interval: cfg.Interval,
		export:   export,
		save:     save,
		logger:   logger,
	}
}

// Start arms the periodic timer
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.armPeriodicLocked()
	s.logger.Debug("autosave started",
		zap.Duration("debounce", s.debounce),
		zap.Duration("interval", s.interval))
}

// Touch restarts the debounce window
func (s *Scheduler) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.generation++
	gen := s.generation
	s.debounceTimer = s.clock.AfterFunc(s.debounce, func() { s.onDebounce(gen) })
}

func (s *Scheduler) onDebounce(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// a newer Touch superseded this timer after it fired
	if s.stopped || gen != s.generation {
		return
	}
	s.debounceTimer = nil
	s.dispatchLocked("debounce")
}

func (s *Scheduler) armPeriodicLocked() {
	s.periodicTimer = s.clock.AfterFunc(s.interval, s.onTick)
}

func (s *Scheduler) onTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.armPeriodicLocked()
	s.dispatchLocked("periodic")
}

// dispatchLocked exports under the lock and saves in the background
func (s *Scheduler) dispatchLocked(reason string) {
	if s.save == nil {
		return
	}
	doc := s.export()
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.record(reason, s.save(context.Background(), doc))
	}()
}

func (s *Scheduler) record(reason string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stats.Failures++
		s.stats.LastError = err.Error()
		s.logger.Warn("autosave failed", zap.String("trigger", reason), zap.Error(err))
		return
	}
	s.stats.Saves++
	s.stats.LastSaved = s.clock.Now()
	s.stats.LastError = ""
	s.logger.Debug("autosaved", zap.String("trigger", reason))
}

// Flush saves immediately and returns the save error
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.save == nil {
		s.mu.Unlock()
		return nil
	}
	doc := s.export()
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	err := s.save(ctx, doc)
	s.record("explicit", err)
	return err
}

// Stop cancels both timers. No save starts after Stop returns; saves
// already running are not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	if s.periodicTimer != nil {
		s.periodicTimer.Stop()
		s.periodicTimer = nil
	}
}

// Wait blocks until every in-flight save has returned
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

// Pending reports whether a debounced save is armed
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debounceTimer != nil
}

// Stats returns the save counters
func (s *Scheduler) Stats() SaveStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
