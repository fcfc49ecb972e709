// Package reminder periodically looks for incomplete tasks whose deadline
// is near and publishes deadline events for them.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nhle/taskly/internal/model"
)

// scanTimeout bounds a single scheduled scan.
const scanTimeout = time.Minute

// DueLister returns incomplete tasks with a deadline on or before a date.
type DueLister interface {
	DueTasks(ctx context.Context, onOrBefore string) ([]model.Task, error)
}

// Publisher accepts deadline events. It must not block.
type Publisher interface {
	Publish(event model.TaskEvent)
}

// Scanner runs deadline scans on a cron schedule.
type Scanner struct {
	logger zerolog.Logger
	tasks  DueLister
	pub    Publisher
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	lastRun time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a Scanner that reports tasks due within window.
func New(logger zerolog.Logger, tasks DueLister, pub Publisher, window time.Duration, opts ...Option) *Scanner {
	if window <= 0 {
		window = 24 * time.Hour
	}
	s := &Scanner{
		logger: logger.With().Str("component", "reminder").Logger(),
		tasks:  tasks,
		pub:    pub,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules Scan with a standard five-field cron spec, e.g.
// "0 * * * *" for hourly.
func (s *Scanner) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New(cron.WithLogger(cronLogger{s.logger}))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		if _, err := s.Scan(ctx); err != nil {
			s.logger.Error().Err(err).Msg("deadline scan failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling reminder %q: %w", schedule, err)
	}

	c.Start()
	s.cron = c
	s.logger.Info().Str("schedule", schedule).Dur("window", s.window).Msg("reminder scanner started")
	return nil
}

// Stop halts the schedule and waits for a running scan to finish.
func (s *Scanner) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}

// Scan publishes one deadline event per incomplete task due within the
// window, overdue tasks included. It returns the number of events.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(s.window).Format(model.DateLayout)

	tasks, err := s.tasks.DueTasks(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("loading tasks due by %s: %w", cutoff, err)
	}

	sent := 0
	for _, t := range tasks {
		audience := t.Audience()
		if len(audience) == 0 {
			s.logger.Debug().Str("task_id", t.ID).Msg("due task has no audience")
			continue
		}

		channel := model.ChannelDeadlinePersonal
		if t.Kind == model.KindGroup {
			channel = model.ChannelDeadlineGroup
		}
		s.pub.Publish(model.TaskEvent{
			Channel:  channel,
			TaskID:   t.ID,
			Title:    t.Title,
			Deadline: t.Deadline,
			Audience: audience,
		})
		sent++
	}

	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()

	s.logger.Debug().Str("cutoff", cutoff).Int("events", sent).Msg("deadline scan finished")
	return sent, nil
}

// LastRun reports when Scan last completed successfully.
func (s *Scanner) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
