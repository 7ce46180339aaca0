package config

const (
	// DefaultDatabasePath is the default sqlite file for the registry database
	DefaultDatabasePath = "./records.db"

	// DefaultAuditCleanupSchedule runs the retention sweep daily at 03:00
	DefaultAuditCleanupSchedule = "0 3 * * *"

	// DefaultMinQuality is the score a record needs to appear in the public registry
	DefaultMinQuality = 60
)
