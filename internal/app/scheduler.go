package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/service"
	"github.com/teheiw197/classbell/internal/store"
)

// Scheduler drives the reminder engine: one background goroutine, one
// evaluation per tick. It is the only writer of dedup markers.
type Scheduler struct {
	reminders *service.ReminderService
	store     store.Store
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	doneChan  chan struct{}
}

func NewScheduler(reminders *service.ReminderService, st store.Store, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		reminders: reminders,
		store:     st,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start launches the tick loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting reminder scheduler",
		zap.Duration("interval", s.interval))

	go s.run(ctx)
}

// Stop signals the loop, waits for the current tick to finish and
// flushes the store so dedup markers survive the restart.
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info("Stopping reminder scheduler")
	close(s.stopChan)
	<-s.doneChan

	if err := s.store.Flush(ctx); err != nil {
		s.logger.Error("Failed to flush store on shutdown", zap.Error(err))
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reminders.Tick(ctx, time.Now())
		case <-s.stopChan:
			s.logger.Info("Reminder loop stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reminder loop cancelled")
			return
		}
	}
}
