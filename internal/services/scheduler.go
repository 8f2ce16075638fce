package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the daily digest on a cron expression.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	started bool
}

func NewScheduler(location *time.Location, logger *slog.Logger) *Scheduler {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(location)),
		logger: logger.With("component", "scheduler"),
	}
}

// ScheduleDigest registers stats.Run under spec (standard 5-field cron or a
// descriptor such as "@daily").
func (s *Scheduler) ScheduleDigest(spec string, stats *DailyStatistics) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := stats.Run(ctx, time.Now()); err != nil {
			s.logger.Error("daily statistics run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule digest %q: %w", spec, err)
	}
	s.logger.Info("daily statistics scheduled", "spec", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		<-s.cron.Stop().Done()
		s.started = false
	}
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
