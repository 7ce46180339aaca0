package http

import (
	"context"
	"io"

	"github.com/mikestefanello/backlite"

	"github.com/mrima/records-portal/internal/database/audit"
	"github.com/mrima/records-portal/internal/database/records"
	"github.com/mrima/records-portal/internal/entities"
	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/services"
)

// This file consolidates the interfaces HTTP controllers depend on.
// Each controller takes only what it uses.

// Importer runs and inspects imports. Implemented by services.ImportService.
type Importer interface {
	Import(ctx context.Context, req services.ImportRequest, sink importers.ProgressSink) (*importers.Result, error)
	Validate(userID uint, domain string, info importers.FileInfo) (importers.Validation, error)
	WriteTemplate(w io.Writer, domain string) error
	LatestRun(domain string) (*entities.ImportRun, error)
	MaxFileSize() int64
}

// RecordSearcher serves the public registry. Implemented by records.Repository.
type RecordSearcher interface {
	Search(ctx context.Context, table string, q records.Query) ([]map[string]any, int64, error)
	CountBy(ctx context.Context, table, column string, minQuality int) ([]records.Count, error)
}

// AuditReader lists audit events. Implemented by audit.Service.
type AuditReader interface {
	GetEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// TaskQueue enqueues and inspects background tasks. Implemented by tasks.Client.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Pinger checks database connectivity. Implemented by database.Database.
type Pinger interface {
	Ping() error
}
