package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Import
		Registry
		Audit
		Tasks
		Auth
		Metrics
	}

	HTTP struct {
		Port     int32
		Host     string
		ReadOnly bool // public mirror: registry reads only, imports rejected
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver  string // "sqlite" (default) or "postgres"
		Path    string // sqlite file
		DSN     string // postgres connection string
		Verbose bool
	}
	Import struct {
		MaxFileSize      int64 // bytes
		BatchSize        int   // 0 keeps the per-domain batch size
		MaxRetries       int
		RetryDelay       time.Duration
		MaxErrors        int
		FailureTolerance float64       // 0 keeps the per-domain tolerance
		StaleRunTimeout  time.Duration // running imports without progress for this long are released
		SpoolDir         string        // uploads queued for async import wait here
	}
	Registry struct {
		MinQuality int
		PageSize   int
	}
	Audit struct {
		Dir             string // report archive, disabled when empty
		RetentionDays   int
		CleanupEnabled  bool
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Tasks struct {
		Enabled           bool
		DatabasePath      string // defaults to <database>-tasks.db next to the sqlite file
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Auth struct {
		// StaffTokenHash is a bcrypt hash of the staff API token. Staff
		// endpoints are open when it is empty.
		StaffTokenHash string
	}
	Metrics struct {
		Enabled bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("read_only", false)

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_verbose", false)

	// Import pipeline defaults
	v.SetDefault("import_max_file_size", 10<<20) // 10 MiB
	v.SetDefault("import_batch_size", 0)
	v.SetDefault("import_max_retries", 2)
	v.SetDefault("import_retry_delay", "500ms")
	v.SetDefault("import_max_errors", 50)
	v.SetDefault("import_failure_tolerance", 0)
	v.SetDefault("import_stale_run_timeout", "10m")
	v.SetDefault("import_spool_dir", filepath.Join(os.TempDir(), "records-import"))

	v.SetDefault("registry_min_quality", DefaultMinQuality)
	v.SetDefault("registry_page_size", 25)

	v.SetDefault("audit_dir", "")
	v.SetDefault("audit_retention_days", 90)
	v.SetDefault("audit_cleanup_enabled", true)
	v.SetDefault("audit_cleanup_schedule", DefaultAuditCleanupSchedule)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_database_path", "")
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 1)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "10m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("staff_token_hash", "")
	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port:     v.GetInt32("PORT"),
			Host:     v.GetString("HOST"),
			ReadOnly: v.GetBool("READ_ONLY"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:  v.GetString("DATABASE_DRIVER"),
			Path:    v.GetString("DATABASE_PATH"),
			DSN:     v.GetString("DATABASE_DSN"),
			Verbose: v.GetBool("DATABASE_VERBOSE"),
		},
		Import: Import{
			MaxFileSize:      v.GetInt64("IMPORT_MAX_FILE_SIZE"),
			BatchSize:        v.GetInt("IMPORT_BATCH_SIZE"),
			MaxRetries:       v.GetInt("IMPORT_MAX_RETRIES"),
			RetryDelay:       v.GetDuration("IMPORT_RETRY_DELAY"),
			MaxErrors:        v.GetInt("IMPORT_MAX_ERRORS"),
			FailureTolerance: v.GetFloat64("IMPORT_FAILURE_TOLERANCE"),
			StaleRunTimeout:  v.GetDuration("IMPORT_STALE_RUN_TIMEOUT"),
			SpoolDir:         v.GetString("IMPORT_SPOOL_DIR"),
		},
		Registry: Registry{
			MinQuality: v.GetInt("REGISTRY_MIN_QUALITY"),
			PageSize:   v.GetInt("REGISTRY_PAGE_SIZE"),
		},
		Audit: Audit{
			Dir:             v.GetString("AUDIT_DIR"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupEnabled:  v.GetBool("AUDIT_CLEANUP_ENABLED"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DatabasePath:      v.GetString("TASKS_DATABASE_PATH"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			StaffTokenHash: v.GetString("STAFF_TOKEN_HASH"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
