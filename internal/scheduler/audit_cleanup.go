package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrima/records-portal/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Job is the work a scheduler triggers.
type Job func(ctx context.Context) error

// Enqueuer saves a background task. Implemented by tasks.Client.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// Cleaner deletes audit events directly. Implemented by audit.Service.
type Cleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
	LogCleanup(deleted int64, err error)
}

// EnqueueCleanup hands each sweep to the task queue.
func EnqueueCleanup(enqueuer Enqueuer, retentionDays int) Job {
	return func(ctx context.Context) error {
		id, err := enqueuer.Enqueue(ctx, tasks.CleanupAuditEventsTask{RetentionDays: retentionDays})
		if err != nil {
			return err
		}
		log.Printf("[SCHEDULER] Audit cleanup enqueued as task %s", id)
		return nil
	}
}

// DirectCleanup runs each sweep in the scheduler goroutine, for
// deployments without a task queue.
func DirectCleanup(cleaner Cleaner, retentionDays int) Job {
	processor := tasks.CleanupAuditEventsProcessor(cleaner)
	return func(ctx context.Context) error {
		return processor(ctx, tasks.CleanupAuditEventsTask{RetentionDays: retentionDays})
	}
}

// AuditCleanupScheduler triggers audit retention sweeps on a cron schedule.
type AuditCleanupScheduler struct {
	schedule string
	job      Job

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	isActive  bool
}

func NewAuditCleanupScheduler(schedule string, job Job) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start registers the job and starts the cron loop. It stops when ctx is
// cancelled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SCHEDULER] Audit cleanup started with schedule '%s'. Next run: %v",
		s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running sweep and stops the cron loop.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	// The lock is released first; a sweep in flight still needs it.
	done := s.cron.Stop()
	<-done.Done()

	log.Printf("[SCHEDULER] Audit cleanup stopped")
}

// RunNow triggers an immediate sweep and waits for it.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) {
	s.run(ctx)
}

func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next sweep will occur.
func (s *AuditCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

func (s *AuditCleanupScheduler) run(ctx context.Context) {
	s.mu.Lock()
	if s.isActive {
		s.mu.Unlock()
		log.Printf("[SCHEDULER] Audit cleanup skipped (already running)")
		return
	}
	s.isActive = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isActive = false
		s.mu.Unlock()
	}()

	if err := s.job(ctx); err != nil {
		log.Printf("[SCHEDULER] Audit cleanup failed: %v", err)
	}
}
