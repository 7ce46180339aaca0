package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/registry"
)

func newTemplateCommand() *cobra.Command {
	var domainName, output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the sample CSV of a registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			domain, err := registry.Lookup(domainName)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := importers.WriteTemplate(w, domain.Config); err != nil {
				return fmt.Errorf("failed to write %s template: %w", domain.Name, err)
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s template to %s\n", domain.Name, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&domainName, "domain", "", "Registry whose template to write (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.MarkFlagRequired("domain") //nolint:errcheck

	return cmd
}
