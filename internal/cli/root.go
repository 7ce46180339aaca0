// Package cli holds the command line interface of the records service.
//
// Running the binary without a command starts the HTTP server. The other
// commands work on local files and the configured database without it.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrima/records-portal/internal/config"
)

// ServeFunc runs the HTTP server until ctx is cancelled.
type ServeFunc func(ctx context.Context, cfg *config.Config, version string) error

// NewRootCommand builds the "records" command tree. Configuration is read
// from the environment once, when the tree is built.
func NewRootCommand(version string, serve ServeFunc) *cobra.Command {
	cfg := config.NewConfig()

	root := &cobra.Command{
		Use:          "records",
		Short:        "Bulk CSV import service for the public records portal",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg, version)
		},
	}

	root.AddCommand(
		newServeCommand(cfg, version, serve),
		newImportCommand(cfg),
		newValidateCommand(cfg),
		newTemplateCommand(),
		newTokenCommand(),
	)
	return root
}

func newServeCommand(cfg *config.Config, version string, serve ServeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default if no command given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg, version)
		},
	}
}

// printf writes formatted output to the command's stdout.
func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
