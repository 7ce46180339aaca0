package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrima/records-portal/internal/audit"
	"github.com/mrima/records-portal/internal/config"
	"github.com/mrima/records-portal/internal/database"
	auditRepo "github.com/mrima/records-portal/internal/database/audit"
	"github.com/mrima/records-portal/internal/database/records"
	"github.com/mrima/records-portal/internal/database/runs"
	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/registry"
	"github.com/mrima/records-portal/internal/services"
)

// ErrImportUnsuccessful is returned when a run rejected rows beyond its
// failure tolerance without importing anything usable.
var ErrImportUnsuccessful = errors.New("import was not successful")

// acceptable reports whether the command should exit cleanly. A re-run
// whose rows are all stored already is fine: nothing was rejected.
func acceptable(result *importers.Result) bool {
	if result.Success {
		return true
	}
	return !result.Cancelled && result.FailedRecords == 0 && result.SkippedRecords == 0
}

// ImportCommand imports one CSV file into a registry.
type ImportCommand struct {
	Domain       string
	FilePath     string
	DatabasePath string
	DryRun       bool
	Verbose      bool
	JSON         bool

	cfg *config.Config
}

func newImportCommand(cfg *config.Config) *cobra.Command {
	ic := &ImportCommand{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV file into a registry",
		Long: `Import a CSV file into one of the public registries.

Registries: ` + strings.Join(registry.Names(), ", ") + `

Rows already stored under the same natural key are counted as duplicates,
so running the same file twice imports nothing the second time.

Examples:
  # Import a societies export into the local database
  records import --domain societies --file societies.csv

  # Check a file without writing anything
  records import --domain cases --file cases.csv --dry-run --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ic.Run(cmd)
		},
	}

	cmd.Flags().StringVar(&ic.Domain, "domain", "", "Registry to import into (required)")
	cmd.Flags().StringVar(&ic.FilePath, "file", "", "Path to the CSV file (required)")
	cmd.Flags().StringVar(&ic.DatabasePath, "db", cfg.Database.Path, "Path to the sqlite database (ignored for postgres)")
	cmd.Flags().BoolVar(&ic.DryRun, "dry-run", false, "Process the file without writing to the database")
	cmd.Flags().BoolVar(&ic.Verbose, "verbose", false, "Print progress and every row error")
	cmd.Flags().BoolVar(&ic.JSON, "json", false, "Print the import result as JSON")

	cmd.MarkFlagRequired("domain") //nolint:errcheck
	cmd.MarkFlagRequired("file")   //nolint:errcheck

	return cmd
}

func (ic *ImportCommand) Run(cmd *cobra.Command) error {
	domain, err := registry.Lookup(ic.Domain)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(ic.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ic.FilePath, err)
	}

	svc, cleanup, err := ic.service()
	if err != nil {
		return err
	}
	defer cleanup()

	if !ic.JSON {
		printf(cmd, "%s Import\n", domain.Label)
		printf(cmd, "%s\n", strings.Repeat("=", len(domain.Label)+7))
		if ic.DryRun {
			printf(cmd, "DRY RUN MODE - No changes will be made\n")
		}
		printf(cmd, "File: %s\n\n", ic.FilePath)
	}

	var sink importers.ProgressSink
	if ic.Verbose && !ic.JSON {
		sink = importers.SinkFunc(func(p importers.Progress) error {
			printf(cmd, "  [%s] %d/%d (%.0f%%) %s\n", p.Phase, p.Processed, p.Total, p.Percentage, p.CurrentRecordLabel)
			return nil
		})
	}

	result, err := svc.Import(cmd.Context(), services.ImportRequest{
		Domain:   domain.Name,
		FileName: filepath.Base(ic.FilePath),
		Content:  content,
	}, sink)
	if result == nil {
		return err
	}

	if ic.JSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
	} else {
		printResult(cmd, result, ic.Verbose)
	}

	if err != nil {
		return err
	}
	if !acceptable(result) {
		return ErrImportUnsuccessful
	}
	return nil
}

// service wires the import service. A dry run touches no database.
func (ic *ImportCommand) service() (*services.ImportService, func(), error) {
	settings := services.SettingsFromConfig(ic.cfg.Import)
	if ic.DryRun {
		return services.NewImportService(dryRunStore{}, nil, nil, nil, settings), func() {}, nil
	}

	dbPath := ic.DatabasePath
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	db, err := database.NewDatabase(database.Options{
		Driver:  ic.cfg.Database.Driver,
		Path:    dbPath,
		DSN:     ic.cfg.Database.DSN,
		Verbose: ic.Verbose,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var auditor *audit.Auditor
	if ic.cfg.Audit.Dir != "" {
		auditor = audit.NewAuditor(ic.cfg.Audit.Dir)
	}
	auditService := audit.NewService(auditRepo.NewRepository(db.DB), auditor)

	svc := services.NewImportService(
		records.NewRepository(db.DB),
		runs.NewRepository(db.DB, ic.cfg.Import.StaleRunTimeout),
		auditService,
		nil,
		settings,
	)
	cleanup := func() {
		auditService.Flush()
		db.Close()
	}
	return svc, cleanup, nil
}

func printResult(cmd *cobra.Command, result *importers.Result, verbose bool) {
	printf(cmd, "\n=== Import Summary ===\n")
	printf(cmd, "%s\n", result.Message)
	printf(cmd, "Total rows:  %d\n", result.TotalRecords)
	printf(cmd, "Imported:    %d\n", result.SuccessfulRecords)
	printf(cmd, "Duplicates:  %d\n", result.DuplicateRecords)
	printf(cmd, "Failed:      %d\n", result.FailedRecords)
	printf(cmd, "Skipped:     %d\n", result.SkippedRecords)
	if result.ConflictRecords > 0 {
		printf(cmd, "Conflicts:   %d\n", result.ConflictRecords)
	}
	if result.BatchID != "" {
		printf(cmd, "Batch:       %s\n", result.BatchID)
	}

	if len(result.Errors) == 0 {
		return
	}
	shown := result.Errors
	if !verbose && len(shown) > 10 {
		shown = shown[:10]
	}
	printf(cmd, "\n%d errors occurred:\n", len(result.Errors)+result.ErrorsTruncated)
	for _, issue := range shown {
		printf(cmd, "  [ERROR] row %d: %s\n", issue.Row, issue.Error)
	}
	if hidden := len(result.Errors) - len(shown) + result.ErrorsTruncated; hidden > 0 {
		printf(cmd, "  ... and %d more\n", hidden)
	}
}

// dryRunStore finds nothing and keeps nothing.
type dryRunStore struct{}

func (dryRunStore) FindByKey(context.Context, string, importers.Key) (map[string]any, bool, error) {
	return nil, false, nil
}

func (dryRunStore) InsertBatch(context.Context, string, []map[string]any) error {
	return nil
}
