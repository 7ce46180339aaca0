package importers

import (
	"encoding/csv"
	"fmt"
	"io"
)

// TemplateHeader returns the header written to a domain template. Each
// column uses the field's first alias, which always binds back to it.
func TemplateHeader(cfg Config) []string {
	header := make([]string, len(cfg.Fields))
	for i, f := range cfg.Fields {
		if len(f.Aliases) > 0 {
			header[i] = f.Aliases[0]
		} else {
			header[i] = f.Target
		}
	}
	return header
}

// WriteTemplate writes the domain header followed by its example rows.
func WriteTemplate(w io.Writer, cfg Config) error {
	cw := csv.NewWriter(w)
	header := TemplateHeader(cfg)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write template header: %w", err)
	}
	for i, row := range cfg.TemplateRows {
		if len(row) != len(header) {
			return fmt.Errorf("template row %d has %d cells, want %d", i+1, len(row), len(header))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write template row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
