package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/logging"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// Runner performs one backup.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Scheduler runs backups on a cron schedule.
type Scheduler struct {
	runner   Runner
	schedule string
	logger   *zap.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewScheduler(runner Runner, schedule string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		logger:   logging.OrNop(logger),
	}
}

// Start schedules the backup job. Cancelling ctx stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cron = cron.New(cron.WithParser(cronParser))
	entryID, err := s.cron.AddFunc(s.schedule, func() { s.runBackup(runCtx) })
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID
	s.cancelFunc = cancel

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("backup scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.nextRunLocked()))

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running backup and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopped := s.cron.Stop()
	s.cancelFunc()
	<-stopped.Done()

	s.isRunning = false
	s.cancelFunc = nil
	s.logger.Info("backup scheduler stopped")
}

// RunNow runs a backup immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) (Result, error) {
	return s.runner.Run(ctx)
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next backup will occur, or nil when stopped.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.nextRunLocked()
	return &next
}

func (s *Scheduler) nextRunLocked() time.Time {
	entry := s.cron.Entry(s.entryID)
	// Next is filled in asynchronously once the cron loop starts.
	if entry.Next.IsZero() && entry.Schedule != nil {
		return entry.Schedule.Next(time.Now())
	}
	return entry.Next
}

func (s *Scheduler) runBackup(ctx context.Context) {
	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.Error("scheduled backup failed", zap.Error(err))
	}
}
