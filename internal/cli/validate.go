package cli

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrima/records-portal/internal/config"
	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/registry"
	"github.com/mrima/records-portal/internal/services"
)

var ErrInvalidFile = errors.New("file is not valid for import")

func newValidateCommand(cfg *config.Config) *cobra.Command {
	var filePath, domainName string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a CSV file before uploading it",
		Long: `Check a CSV file before uploading it.

The file name, type and size are checked first. With --domain the file is
also run through the import pipeline without touching the database, so header
problems and row errors show up before the real import.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stat, err := os.Stat(filePath)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", filePath, err)
			}

			info := importers.FileInfo{
				Name:        filepath.Base(filePath),
				Size:        stat.Size(),
				ContentType: mime.TypeByExtension(filepath.Ext(filePath)),
			}
			validation := importers.ValidateFile(info, cfg.Import.MaxFileSize)
			if !validation.Valid {
				printf(cmd, "[INVALID] %s: %s\n", info.Name, validation.Error)
				return ErrInvalidFile
			}
			printf(cmd, "[OK] %s (%d bytes)\n", info.Name, info.Size)

			if domainName == "" {
				return nil
			}
			domain, err := registry.Lookup(domainName)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", filePath, err)
			}

			svc := services.NewImportService(dryRunStore{}, nil, nil, nil, services.SettingsFromConfig(cfg.Import))
			result, err := svc.Import(cmd.Context(), services.ImportRequest{
				Domain:   domain.Name,
				FileName: info.Name,
				Content:  content,
			}, nil)
			if result != nil {
				printResult(cmd, result, true)
			}
			if err != nil {
				return err
			}
			if !acceptable(result) {
				return ErrImportUnsuccessful
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Path to the CSV file (required)")
	cmd.Flags().StringVar(&domainName, "domain", "", "Registry to check the file against")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}
