package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"shift_report_bot/internal/app"
)

// WindowEvaluator decides on every wake-up whether a broadcast cycle is due.
type WindowEvaluator interface {
	Evaluate(ctx context.Context, now time.Time, reason app.WakeReason) bool
}

type BroadcastScheduler struct {
	cronEngine *cron.Cron
	evaluator  WindowEvaluator
	logger     *logrus.Entry
	cronSpec   string
	timeout    time.Duration
	now        func() time.Time
	wakes      sync.WaitGroup
}

func NewBroadcastScheduler(
	evaluator WindowEvaluator,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 * * * *" (top of every hour)
	location *time.Location,
) *BroadcastScheduler {
	return &BroadcastScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		evaluator: evaluator,
		logger:    logger,
		cronSpec:  cronSpec,
		timeout:   5 * time.Minute,
		now:       time.Now,
	}
}

// Start registers the tick job, evaluates the window once right away and
// starts the cron engine. It fails only on an invalid cron spec.
func (s *BroadcastScheduler) Start() error {
	s.logger.Info("Starting broadcast scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.wake(app.WakeTick)
	})
	if err != nil {
		return err
	}

	s.wakes.Add(1)
	go func() {
		defer s.wakes.Done()
		s.wake(app.WakeStart)
	}()

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Broadcast scheduler started.")
	return nil
}

func (s *BroadcastScheduler) wake(reason app.WakeReason) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("Broadcast evaluation panicked")
		}
	}()

	if s.evaluator.Evaluate(ctx, s.now(), reason) {
		s.logger.WithField("wake", reason).Info("Broadcast cycle completed")
	}
}

func (s *BroadcastScheduler) Stop() {
	s.logger.Info("Stopping broadcast scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.wakes.Wait()
	s.logger.Info("Broadcast scheduler gracefully stopped.")
}
