// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and see how to implement new functionality.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - Store: Natural key lookup and batch inserts (internal/importers/pipeline.go)
//   - Locker: Per-domain run lock (internal/importers/pipeline.go)
//   - RunTracker: Import run bookkeeping (internal/services/interfaces.go)
//   - RecordSearcher: Public registry search (internal/http/stores.go)
//   - AuditReader: Audit event listing (internal/http/stores.go)
//
// ## Progress and Observation Interfaces
//
//   - ProgressSink: Per-batch progress (internal/importers/progress.go)
//   - ImportObserver: Finished run metrics (internal/services/interfaces.go)
//   - AuditLogger: Import and validation events (internal/services/interfaces.go)
//
// ## Background Work Interfaces
//
//   - FileImporter: Imports spooled uploads (internal/tasks/import_file.go)
//   - AuditEventCleaner: Retention sweeps (internal/tasks/cleanup_audit.go)
//   - Enqueuer, Cleaner: Scheduler job targets (internal/scheduler/audit_cleanup.go)
//   - TaskQueue: Enqueue and status from HTTP (internal/http/stores.go)
//
// # Adding a New Registry
//
// The pipeline is shared by every registry. A new one is configuration only:
//
//  1. Add a file in internal/registry/ returning a Domain
//
//     const LandLeases = "land_leases"
//
//     func landLeases() Domain {
//         return Domain{
//             Config: importers.Config{
//                 Name:   LandLeases,
//                 Table:  "land_leases",
//                 Fields: []importers.FieldSpec{...},
//                 Rules:  []importers.QualityRule{...},
//                 Key:    importers.FieldsKey("lease_number"),
//             },
//         }
//     }
//
//  2. Register it in the registry package init and add any short aliases
//
//  3. Add its entity to internal/entities/records.go and list it in database.Migrate
//
// HTTP routes and CLI commands resolve domains by name, so nothing else changes.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the checks in this codebase.
package interfaces
