package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.False(t, cfg.HTTP.ReadOnly)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxFileSize)
	assert.Equal(t, 2, cfg.Import.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Import.RetryDelay)
	assert.Equal(t, 10*time.Minute, cfg.Import.StaleRunTimeout)
	assert.NotEmpty(t, cfg.Import.SpoolDir)
	assert.Equal(t, DefaultMinQuality, cfg.Registry.MinQuality)
	assert.Equal(t, DefaultAuditCleanupSchedule, cfg.Audit.CleanupSchedule)
	assert.True(t, cfg.Tasks.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Auth.StaffTokenHash)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=portal dbname=records")
	t.Setenv("IMPORT_BATCH_SIZE", "200")
	t.Setenv("IMPORT_FAILURE_TOLERANCE", "0.1")
	t.Setenv("REGISTRY_MIN_QUALITY", "75")
	t.Setenv("TASKS_ENABLED", "false")
	t.Setenv("READ_ONLY", "true")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=portal dbname=records", cfg.Database.DSN)
	assert.Equal(t, 200, cfg.Import.BatchSize)
	assert.InDelta(t, 0.1, cfg.Import.FailureTolerance, 1e-9)
	assert.Equal(t, 75, cfg.Registry.MinQuality)
	assert.False(t, cfg.Tasks.Enabled)
	assert.True(t, cfg.HTTP.ReadOnly)
}
