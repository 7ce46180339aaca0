package importers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row is one data line as read from the file.
type Row struct {
	Line  int
	Cells []string
}

// Map returns the row keyed by header name. Cells beyond the header are
// dropped and missing trailing cells read as "".
func (r Row) Map(header []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(r.Cells) {
			m[h] = r.Cells[i]
		} else {
			m[h] = ""
		}
	}
	return m
}

// RowReader streams data rows from CSV content. It reads the header on
// construction and cannot be rewound.
type RowReader struct {
	reader   *csv.Reader
	header   []string
	encoding string
	lastLine int
}

// NewRowReader decodes content and reads its header row.
func NewRowReader(content []byte) (*RowReader, error) {
	decoded, enc, err := decodeContent(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	reader := newCSVReader(bytes.NewReader(decoded))
	rr := &RowReader{reader: reader, encoding: enc}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHeader, err)
	}
	if allBlank(header) {
		return nil, ErrNoHeader
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	rr.header = header
	rr.lastLine, _ = reader.FieldPos(0)
	return rr, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false
	return reader
}

// Header returns the trimmed header cells in file order.
func (r *RowReader) Header() []string { return r.header }

// Encoding names the character set the content was decoded from.
func (r *RowReader) Encoding() string { return r.encoding }

// Next returns the next non-blank data row. A row whose cell count differs
// from the header, or that fails CSV syntax, is returned as a *RowError and
// reading can continue. io.EOF marks the end of the data.
func (r *RowReader) Next() (Row, error) {
	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			return Row{}, io.EOF
		}
		if err != nil {
			var pe *csv.ParseError
			line := r.lastLine + 1
			if errors.As(err, &pe) {
				line = pe.StartLine
				r.lastLine = pe.Line
			}
			return Row{}, &RowError{Line: line, Err: err}
		}

		line, _ := r.reader.FieldPos(0)
		r.lastLine = line

		if allBlank(record) {
			continue
		}

		if len(record) != len(r.header) {
			return Row{}, &RowError{
				Line: line,
				Err:  fmt.Errorf("expected %d columns, found %d", len(r.header), len(record)),
			}
		}

		return Row{Line: line, Cells: record}, nil
	}
}

// CountRows returns the number of non-blank data rows in content, ragged
// or malformed ones included. It is used for progress percentages only.
func CountRows(content []byte) int {
	decoded, _, err := decodeContent(content)
	if err != nil {
		return 0
	}

	reader := newCSVReader(bytes.NewReader(decoded))
	count := -1 // header
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			count++
			continue
		}
		if count < 0 || !allBlank(record) {
			count++
		}
	}
	if count < 0 {
		return 0
	}
	return count
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
