package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

type Task func(ctx context.Context) error

type Scheduler interface {
	Schedule(ctx context.Context, interval time.Duration, task Task) error
	Stop()
}

// CronScheduler runs recurring pipeline tasks on a fixed interval. Each run
// gets its own timeout so a stuck task cannot block the next cycle.
type CronScheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  logger.Logger
	entries map[cron.EntryID]context.CancelFunc
}

func NewCronScheduler(timeout time.Duration, log logger.Logger) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(cron.WithSeconds()),
		timeout: timeout,
		logger:  log.WithField("component", "cron_scheduler"),
		entries: make(map[cron.EntryID]context.CancelFunc),
	}
}

func (s *CronScheduler) Schedule(ctx context.Context, interval time.Duration, task Task) error {
	cronExpr := intervalToCron(interval)
	s.logger.Debugf("Converted interval %v to cron expression: %s", interval, cronExpr)

	entryID, err := s.cron.AddFunc(cronExpr, s.wrapTask(ctx, task))
	if err != nil {
		return fmt.Errorf("failed to schedule task: %w", err)
	}

	_, cancel := context.WithCancel(ctx)
	s.entries[entryID] = cancel

	s.logger.Infof("Task scheduled with entry ID: %d, interval: %v", entryID, interval)

	if len(s.cron.Entries()) == 1 {
		s.cron.Start()
		s.logger.Info("Cron scheduler started")
	}

	return nil
}

func (s *CronScheduler) wrapTask(ctx context.Context, task Task) func() {
	return func() {
		startTime := time.Now()
		s.logger.Debug("Starting scheduled task")

		taskCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if err := task(taskCtx); err != nil {
			s.logger.Errorf("Task failed: %v", err)
			return
		}

		s.logger.Debugf("Task completed successfully in %v", time.Since(startTime))
	}
}

func (s *CronScheduler) Stop() {
	s.logger.Info("Stopping cron scheduler")

	for entryID, cancel := range s.entries {
		s.logger.Debugf("Cancelling task with entry ID: %d", entryID)
		cancel()
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.logger.Info("Cron scheduler stopped")
}

func intervalToCron(interval time.Duration) string {
	if interval == 0 {
		return "0 */5 * * * *"
	}

	seconds := int(interval.Seconds())
	if seconds < 10 {
		seconds = 10
	}
	if seconds >= 60 && seconds%60 == 0 {
		return fmt.Sprintf("0 */%d * * * *", seconds/60)
	}

	return fmt.Sprintf("*/%d * * * * *", seconds)
}
