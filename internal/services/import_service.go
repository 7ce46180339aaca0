package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mrima/records-portal/internal/audit"
	"github.com/mrima/records-portal/internal/config"
	"github.com/mrima/records-portal/internal/entities"
	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/registry"
)

// ImportRequest is one uploaded file.
type ImportRequest struct {
	Domain   string
	FileName string
	Content  []byte
	UserID   uint
}

// ImportSettings are the deployment-wide pipeline knobs. Zero values fall
// back to the pipeline defaults.
type ImportSettings struct {
	MaxFileSize      int64
	BatchSize        int
	MaxRetries       int
	RetryDelay       time.Duration
	MaxErrors        int
	FailureTolerance float64
}

// SettingsFromConfig copies the import section of the configuration.
func SettingsFromConfig(cfg config.Import) ImportSettings {
	return ImportSettings{
		MaxFileSize:      cfg.MaxFileSize,
		BatchSize:        cfg.BatchSize,
		MaxRetries:       cfg.MaxRetries,
		RetryDelay:       cfg.RetryDelay,
		MaxErrors:        cfg.MaxErrors,
		FailureTolerance: cfg.FailureTolerance,
	}
}

// ImportService resolves the registry domain of a request and runs the
// import pipeline with run tracking, audit logging and metrics around it.
type ImportService struct {
	store    importers.Store
	runs     RunTracker
	auditor  AuditLogger
	observer ImportObserver
	settings ImportSettings
}

// NewImportService creates an ImportService. runs, audit and observer are
// optional; a nil RunTracker disables locking and progress persistence.
func NewImportService(store importers.Store, runs RunTracker, auditor AuditLogger, observer ImportObserver, settings ImportSettings) *ImportService {
	return &ImportService{
		store:    store,
		runs:     runs,
		auditor:  auditor,
		observer: observer,
		settings: settings,
	}
}

// Import runs one file through the pipeline. Progress goes to sink and,
// when runs are tracked, to the run record.
func (s *ImportService) Import(ctx context.Context, req ImportRequest, sink importers.ProgressSink) (*importers.Result, error) {
	domain, err := registry.Lookup(req.Domain)
	if err != nil {
		return nil, err
	}

	opts := importers.Options{
		MaxFileSize:      s.settings.MaxFileSize,
		BatchSize:        s.settings.BatchSize,
		MaxRetries:       s.settings.MaxRetries,
		RetryDelay:       s.settings.RetryDelay,
		MaxErrors:        s.settings.MaxErrors,
		FailureTolerance: s.settings.FailureTolerance,
	}

	sinks := importers.MultiSink{importers.LogSink{Prefix: "[IMPORT] " + domain.Name}}
	if sink != nil {
		sinks = append(sinks, sink)
	}

	var runID func() uint
	if s.runs != nil {
		lock := s.runs.NewLock(req.FileName, req.UserID)
		opts.Lock = lock
		sinks = append(sinks, lock)
		runID = lock.RunID
	}

	imp := importers.NewImporter(domain.Config, s.store, opts)

	started := time.Now()
	result, err := imp.Import(ctx, importers.Source{Name: req.FileName, Content: req.Content}, sinks)
	elapsed := time.Since(started)

	var id uint
	if runID != nil {
		id = runID()
		if id > 0 {
			if cerr := s.runs.Complete(id, result, err); cerr != nil {
				log.Printf("[IMPORT] Failed to complete run %d: %v", id, cerr)
			}
		}
	}

	if s.observer != nil {
		s.observer.ObserveImport(domain.Name, result, err, elapsed)
	}
	if s.auditor != nil {
		s.auditor.LogImport(audit.ImportEntry{
			UserID:   req.UserID,
			Domain:   domain.Name,
			FileName: req.FileName,
			RunID:    id,
			Result:   result,
			Err:      err,
		})
	}

	return result, err
}

// Validate pre-checks an upload without reading it.
func (s *ImportService) Validate(userID uint, domainName string, info importers.FileInfo) (importers.Validation, error) {
	domain, err := registry.Lookup(domainName)
	if err != nil {
		return importers.Validation{}, err
	}

	validation := importers.ValidateFile(info, s.settings.MaxFileSize)
	if s.auditor != nil {
		s.auditor.LogValidate(userID, domain.Name, info.Name, validation)
	}
	return validation, nil
}

// WriteTemplate writes the sample CSV of a domain.
func (s *ImportService) WriteTemplate(w io.Writer, domainName string) error {
	domain, err := registry.Lookup(domainName)
	if err != nil {
		return err
	}
	if err := importers.WriteTemplate(w, domain.Config); err != nil {
		return fmt.Errorf("failed to write %s template: %w", domain.Name, err)
	}
	return nil
}

// LatestRun returns the most recent run of a domain.
func (s *ImportService) LatestRun(domainName string) (*entities.ImportRun, error) {
	domain, err := registry.Lookup(domainName)
	if err != nil {
		return nil, err
	}
	if s.runs == nil {
		return nil, fmt.Errorf("import runs are not tracked")
	}
	return s.runs.Latest(domain.Name)
}

// MaxFileSize is the effective upload ceiling.
func (s *ImportService) MaxFileSize() int64 {
	if s.settings.MaxFileSize > 0 {
		return s.settings.MaxFileSize
	}
	return importers.DefaultMaxFileSize
}
