// internal/app/system/tasks/scheduler.go
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named unit of background work run on a cron schedule.
type Job struct {
	Name string
	// Schedule is a cron spec ("*/5 * * * *") or a descriptor ("@every 5m").
	Schedule string
	// Timeout bounds a single run; zero means one minute.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler runs Jobs on their schedules. A run that is still going when
// its next tick arrives is skipped, and a panicking job is recovered.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
	ctx  context.Context
	stop context.CancelFunc
}

// NewScheduler creates a scheduler that evaluates schedules in UTC.
func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{s: logger.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:  logger,
		ctx:  ctx,
		stop: cancel,
	}
}

// Add registers j. An invalid schedule is an error.
func (s *Scheduler) Add(j Job) error {
	if _, err := s.cron.AddFunc(j.Schedule, s.wrap(j)); err != nil {
		return fmt.Errorf("schedule job %s (%q): %w", j.Name, j.Schedule, err)
	}
	s.log.Info("scheduled background job",
		zap.String("job", j.Name),
		zap.String("schedule", j.Schedule))
	return nil
}

// Start begins running registered jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs, cancels running ones and waits for them to
// return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	s.stop()
	select {
	case <-done.Done():
		s.log.Info("background jobs stopped")
	case <-ctx.Done():
		s.log.Warn("background jobs still running at shutdown", zap.Error(ctx.Err()))
	}
}

func (s *Scheduler) wrap(j Job) func() {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return func() {
		ctx, cancel := context.WithTimeout(s.ctx, timeout)
		defer cancel()

		start := time.Now()
		if err := j.Run(ctx); err != nil {
			s.log.Error("background job failed",
				zap.String("job", j.Name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return
		}
		s.log.Debug("background job finished",
			zap.String("job", j.Name),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
