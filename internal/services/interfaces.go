package services

import (
	"time"

	"github.com/mrima/records-portal/internal/audit"
	"github.com/mrima/records-portal/internal/database/runs"
	"github.com/mrima/records-portal/internal/entities"
	"github.com/mrima/records-portal/internal/importers"
)

// RunTracker persists import runs and hands out per-domain locks.
// Implemented by runs.Repository.
type RunTracker interface {
	NewLock(fileName string, userID uint) *runs.Lock
	Complete(runID uint, result *importers.Result, err error) error
	Latest(domain string) (*entities.ImportRun, error)
}

// AuditLogger records imports and file checks. Implemented by audit.Service.
type AuditLogger interface {
	LogImport(entry audit.ImportEntry)
	LogValidate(userID uint, domain, fileName string, validation importers.Validation)
}

// ImportObserver receives finished runs. Implemented by metrics.Metrics.
type ImportObserver interface {
	ObserveImport(domain string, result *importers.Result, err error, elapsed time.Duration)
}
