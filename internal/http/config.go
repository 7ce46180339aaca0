package http

import (
	"net/http"

	"github.com/mrima/records-portal/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Importer Importer
	Records  RecordSearcher
	Audit    AuditReader
	Database Pinger

	// Task queue (optional); SpoolDir holds uploads waiting for a worker
	TaskQueue  TaskQueue
	TaskHealth Pinger
	SpoolDir   string

	// Staff endpoints are open when StaffGuard is nil or disabled
	StaffGuard *auth.StaffGuard

	// ReadOnly refuses every import; registry reads and file checks still work
	ReadOnly bool

	// Metrics is served at /metrics when set
	Metrics http.Handler

	// Public registry
	MinQuality int
	PageSize   int

	// Application info
	Version string
}
