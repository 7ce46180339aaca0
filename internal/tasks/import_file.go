package tasks

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/services"
)

// FileImporter runs one import. Implemented by services.ImportService.
type FileImporter interface {
	Import(ctx context.Context, req services.ImportRequest, sink importers.ProgressSink) (*importers.Result, error)
}

// ImportFileTask imports an uploaded file that was spooled to disk.
type ImportFileTask struct {
	Domain   string `json:"domain"`
	FileName string `json:"file_name"`
	Path     string `json:"path"`
	UserID   uint   `json:"user_id"`
}

// Config returns the queue configuration for file imports. Imports are not
// retried: a partial run has already committed its batches.
func (t ImportFileTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_file",
		MaxAttempts: 1,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportFileProcessor creates a processor function for ImportFileTask. The
// spooled file is removed once the run finishes.
func ImportFileProcessor(importer FileImporter) backlite.QueueProcessor[ImportFileTask] {
	return func(ctx context.Context, task ImportFileTask) error {
		if importer == nil {
			return fmt.Errorf("file importer not configured")
		}
		defer func() {
			if err := os.Remove(task.Path); err != nil && !os.IsNotExist(err) {
				log.Printf("[TASK] Failed to remove spooled file %s: %v", task.Path, err)
			}
		}()

		content, err := os.ReadFile(task.Path)
		if err != nil {
			return fmt.Errorf("read spooled file: %w", err)
		}

		result, err := importer.Import(ctx, services.ImportRequest{
			Domain:   task.Domain,
			FileName: task.FileName,
			Content:  content,
			UserID:   task.UserID,
		}, nil)
		if err != nil {
			return fmt.Errorf("import %s into %s: %w", task.FileName, task.Domain, err)
		}

		log.Printf("[TASK] %s import of %s: %s", task.Domain, task.FileName, result.Message)
		return nil
	}
}

// NewImportFileQueue creates a backlite queue for file imports.
func NewImportFileQueue(importer FileImporter) backlite.Queue {
	return backlite.NewQueue(ImportFileProcessor(importer))
}

// SpoolFile writes upload content to dir for a later ImportFileTask.
func SpoolFile(dir, domain string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create spool directory: %w", err)
	}
	f, err := os.CreateTemp(dir, domain+"-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write spool file: %w", err)
	}
	return f.Name(), nil
}
