package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrima/records-portal/internal/database/audit"
	"github.com/mrima/records-portal/internal/entities"
	"github.com/mrima/records-portal/internal/importers"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	auditor *Auditor
	pending sync.WaitGroup
}

// NewService creates a new audit service. auditor may be nil, in which
// case import reports are not archived to disk.
func NewService(repo *audit.Repository, auditor *Auditor) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("[AUDIT] Failed to log audit event: %v", err)
		}
	}()
}

// Flush waits for background writes to finish.
func (s *Service) Flush() {
	s.pending.Wait()
}

// ImportEntry describes a finished import for the audit trail.
type ImportEntry struct {
	UserID   uint
	Domain   string
	FileName string
	RunID    uint
	Result   *importers.Result
	Err      error
}

// LogImport records an import with its result counts as metadata and,
// when an auditor is configured, archives the full report.
func (s *Service) LogImport(entry ImportEntry) {
	event := &entities.AuditEvent{
		UserID:     entry.UserID,
		EventType:  entities.AuditEventImport,
		Action:     entry.Domain + "_import",
		Domain:     entry.Domain,
		EntityType: "import_run",
		Status:     entities.AuditStatusSuccess,
	}
	if entry.RunID > 0 {
		id := entry.RunID
		event.EntityID = &id
	}

	metadata := map[string]any{"file_name": entry.FileName}
	if r := entry.Result; r != nil {
		event.Description = truncate(r.Message, 500)
		metadata["batch_id"] = r.BatchID
		metadata["total_records"] = r.TotalRecords
		metadata["successful_records"] = r.SuccessfulRecords
		metadata["failed_records"] = r.FailedRecords
		metadata["duplicate_records"] = r.DuplicateRecords
		metadata["skipped_records"] = r.SkippedRecords
		metadata["conflict_records"] = r.ConflictRecords
		if !r.Success {
			event.Status = entities.AuditStatusFailed
		}
		s.archive(entry)
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if entry.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(entry.Err.Error(), 500)
		if event.Description == "" {
			event.Description = fmt.Sprintf("Import of %s failed", entry.FileName)
		}
	}

	s.LogAsync(event)
}

func (s *Service) archive(entry ImportEntry) {
	if s.auditor == nil {
		return
	}
	name := entry.Result.BatchID
	if name != "" {
		name = entry.Domain + "_" + name
	}
	if _, err := s.auditor.SaveJSON(name, entry.Result); err != nil {
		log.Printf("[AUDIT] Failed to archive %s report: %v", entry.Domain, err)
	}
}

// LogValidate records a file pre-check.
func (s *Service) LogValidate(userID uint, domain, fileName string, validation importers.Validation) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventValidate,
		Action:      domain + "_validate",
		Description: "Validated " + fileName,
		Domain:      domain,
		Status:      entities.AuditStatusSuccess,
	}

	if !validation.Valid {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(validation.Error, 500)
	}

	s.LogAsync(event)
}

// LogCleanup records an audit retention sweep.
func (s *Service) LogCleanup(deleted int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCleanup,
		Action:      "audit_cleanup",
		Description: fmt.Sprintf("Removed %d audit events", deleted),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
