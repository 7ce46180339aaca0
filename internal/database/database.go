package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrima/records-portal/internal/entities"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures the database driver.
type Options struct {
	Driver string
	// Path is the sqlite file; DSN is the postgres connection string.
	Path    string
	DSN     string
	Verbose bool
}

type Database struct {
	DB     *gorm.DB
	Driver string
}

func NewDatabase(opts Options) (*Database, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if opts.Verbose {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully (%s)", describe(opts))

	return &Database{DB: db, Driver: normalizeDriver(opts.Driver)}, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Society{},
		&entities.PublicTrustee{},
		&entities.GovernmentCase{},
		&entities.ImportRun{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch normalizeDriver(opts.Driver) {
	case DriverSQLite:
		path := opts.Path
		if path == "" {
			path = "./records.db"
		}
		return sqlite.Open(path), nil
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires a DSN")
		}
		return postgres.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return driver
	}
}

func describe(opts Options) string {
	if normalizeDriver(opts.Driver) == DriverPostgres {
		return "postgres"
	}
	if opts.Path == "" {
		return "sqlite at ./records.db"
	}
	return "sqlite at " + opts.Path
}
