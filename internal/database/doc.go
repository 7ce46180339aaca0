// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Driver selection (sqlite or postgres) and migrations
//	├── records/         # Registry tables: import store, search, statistics
//	├── runs/            # Import run progress and the per-domain run lock
//	└── audit/           # Audit events
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(database.Options{Driver: "sqlite", Path: "./records.db"})
//
//	recordsRepo := records.NewRepository(db.DB)
//	runsRepo := runs.NewRepository(db.DB, 10*time.Minute)
//	auditRepo := audit.NewRepository(db.DB)
//
// # Interface Implementations
//
//   - records.Repository: implements importers.Store and http.RegistryStore
//   - runs.Lock: implements importers.Locker and importers.ProgressSink
//   - audit.Repository: implements audit.Store and http.AuditStore
package database
