package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrima/records-portal/internal/audit"
	"github.com/mrima/records-portal/internal/database"
	"github.com/mrima/records-portal/internal/database/records"
	"github.com/mrima/records-portal/internal/database/runs"
	"github.com/mrima/records-portal/internal/http"
	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/metrics"
	"github.com/mrima/records-portal/internal/scheduler"
	"github.com/mrima/records-portal/internal/services"
	"github.com/mrima/records-portal/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ importers.Store = (*records.Repository)(nil)
var _ http.RecordSearcher = (*records.Repository)(nil)

var _ services.RunTracker = (*runs.Repository)(nil)
var _ importers.Locker = (*runs.Lock)(nil)
var _ importers.ProgressSink = (*runs.Lock)(nil)

var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ http.Importer = (*services.ImportService)(nil)
var _ tasks.FileImporter = (*services.ImportService)(nil)
var _ importers.ProgressSink = importers.NopSink{}
var _ importers.ProgressSink = importers.SinkFunc(nil)

// =============================================================================
// Audit and Observability
// =============================================================================

var _ services.AuditLogger = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.Cleaner = (*audit.Service)(nil)

var _ services.ImportObserver = (*metrics.Metrics)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.Pinger = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
