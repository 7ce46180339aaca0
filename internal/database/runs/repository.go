// Package runs persists import run progress and serialises imports per
// domain.
//
// # Interface Implementation
//
//	var _ importers.Locker = (*Lock)(nil)
//	var _ importers.ProgressSink = (*Lock)(nil)
//
// # Usage
//
//	repo := runs.NewRepository(db, 10*time.Minute)
//	lock := repo.NewLock("societies.csv", userID)
//	imp := importers.NewImporter(cfg, store, importers.Options{Lock: lock})
//	result, err := imp.Import(ctx, src, lock)
//	_ = repo.Complete(lock.RunID(), result, err)
package runs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/mrima/records-portal/internal/entities"
	"github.com/mrima/records-portal/internal/importers"
)

// DefaultStaleAfter is how long a running import may go without progress
// before its lock is released.
const DefaultStaleAfter = 10 * time.Minute

// Repository handles import run database operations.
type Repository struct {
	db         *gorm.DB
	staleAfter time.Duration
}

// NewRepository creates a run repository. A non-positive staleAfter uses
// DefaultStaleAfter.
func NewRepository(db *gorm.DB, staleAfter time.Duration) *Repository {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Repository{db: db, staleAfter: staleAfter}
}

// Start records a new running import for domain. It returns
// importers.ErrImportInProgress if another run of the domain is active.
func (r *Repository) Start(domain, fileName string, userID uint) (*entities.ImportRun, error) {
	if err := r.releaseStale(domain); err != nil {
		return nil, err
	}

	running, err := r.IsRunning(domain)
	if err != nil {
		return nil, err
	}
	if running {
		return nil, importers.ErrImportInProgress
	}

	now := time.Now()
	active := domain
	run := &entities.ImportRun{
		Domain:       domain,
		ActiveDomain: &active,
		FileName:     fileName,
		UserID:       userID,
		Status:       entities.ImportRunRunning,
		Phase:        string(importers.PhaseValidating),
		StartedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.db.Create(run).Error; err != nil {
		// Lost a race with a concurrent Start.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, importers.ErrImportInProgress
		}
		return nil, fmt.Errorf("failed to start import run: %w", err)
	}
	return run, nil
}

// releaseStale fails running imports of domain that stopped reporting.
func (r *Repository) releaseStale(domain string) error {
	threshold := time.Now().Add(-r.staleAfter)
	result := r.db.Model(&entities.ImportRun{}).
		Where("domain = ? AND status = ? AND updated_at < ?", domain, entities.ImportRunRunning, threshold).
		Updates(map[string]any{
			"status":        entities.ImportRunFailed,
			"active_domain": nil,
			"error":         "import was interrupted",
			"completed_at":  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to release stale runs: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("[IMPORT] Released %d stale %s run(s)", result.RowsAffected, domain)
	}
	return nil
}

// IsRunning reports whether domain has an active run.
func (r *Repository) IsRunning(domain string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.ImportRun{}).
		Where("active_domain = ?", domain).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateProgress stores the latest progress of a run.
func (r *Repository) UpdateProgress(runID uint, p importers.Progress) error {
	return r.db.Model(&entities.ImportRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"phase":        string(p.Phase),
			"total_items":  p.Total,
			"processed":    p.Processed,
			"percentage":   p.Percentage,
			"current_item": p.CurrentRecordLabel,
			"updated_at":   time.Now(),
		}).Error
}

// Unlock frees the domain without changing the run status.
func (r *Repository) Unlock(runID uint) error {
	return r.db.Model(&entities.ImportRun{}).
		Where("id = ?", runID).
		Update("active_domain", nil).Error
}

// Complete records the final result of a run and frees its domain.
func (r *Repository) Complete(runID uint, result *importers.Result, runErr error) error {
	now := time.Now()

	status := entities.ImportRunCompleted
	switch {
	case result != nil && result.Cancelled:
		status = entities.ImportRunCancelled
	case runErr != nil, result == nil, !result.Success:
		status = entities.ImportRunFailed
	}

	updates := map[string]any{
		"status":        status,
		"active_domain": nil,
		"phase":         string(importers.PhaseDone),
		"current_item":  "",
		"updated_at":    now,
		"completed_at":  now,
	}
	if result != nil {
		updates["batch_id"] = result.BatchID
		updates["total_items"] = result.TotalRecords
		updates["processed"] = result.TotalRecords
		updates["succeeded"] = result.SuccessfulRecords
		updates["failed"] = result.FailedRecords
		updates["duplicates"] = result.DuplicateRecords
		updates["skipped"] = result.SkippedRecords
		updates["conflicts"] = result.ConflictRecords
		if !result.Success {
			updates["error"] = result.Message
		}
	}
	if runErr != nil {
		updates["error"] = runErr.Error()
	}

	return r.db.Model(&entities.ImportRun{}).Where("id = ?", runID).Updates(updates).Error
}

// Latest returns the most recent run of domain.
func (r *Repository) Latest(domain string) (*entities.ImportRun, error) {
	var run entities.ImportRun
	err := r.db.Where("domain = ?", domain).Order("id DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Recent lists the latest runs across domains, newest first.
func (r *Repository) Recent(limit int) ([]entities.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []entities.ImportRun
	err := r.db.Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// Lock ties one import to a run row. It is the importer's Locker and one
// of its progress sinks.
type Lock struct {
	repo     *Repository
	fileName string
	userID   uint

	mu  sync.Mutex
	run *entities.ImportRun
}

// NewLock prepares a lock for one import of fileName.
func (r *Repository) NewLock(fileName string, userID uint) *Lock {
	return &Lock{repo: r, fileName: fileName, userID: userID}
}

func (l *Lock) Acquire(_ context.Context, domain string) (func(), error) {
	run, err := l.repo.Start(domain, l.fileName, l.userID)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.run = run
	l.mu.Unlock()

	return func() {
		if err := l.repo.Unlock(run.ID); err != nil {
			log.Printf("[IMPORT] Failed to unlock run %d: %v", run.ID, err)
		}
	}, nil
}

func (l *Lock) OnProgress(p importers.Progress) error {
	id := l.RunID()
	if id == 0 {
		return nil
	}
	return l.repo.UpdateProgress(id, p)
}

// RunID is zero until the lock has been acquired.
func (l *Lock) RunID() uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.run == nil {
		return 0
	}
	return l.run.ID
}
