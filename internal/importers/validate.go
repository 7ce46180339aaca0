package importers

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// FileInfo is what is known about an upload before reading it.
type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
}

// Validation is the outcome of ValidateFile.
type Validation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

var csvContentTypes = map[string]bool{
	"text/csv":                    true,
	"application/csv":             true,
	"text/comma-separated-values": true,
	"application/vnd.ms-excel":    true,
	"text/x-csv":                  true,
}

// ValidateFile checks extension or MIME type and size without reading the
// content. maxSize <= 0 uses DefaultMaxFileSize.
func ValidateFile(info FileInfo, maxSize int64) Validation {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	if !isCSV(info) {
		return Validation{Error: ErrInvalidFileType.Error()}
	}
	if info.Size <= 0 {
		return Validation{Error: ErrEmptyFile.Error()}
	}
	if info.Size > maxSize {
		return Validation{Error: fmt.Sprintf("%s (%d MB)", ErrFileTooLarge.Error(), maxSize>>20)}
	}
	return Validation{Valid: true}
}

func isCSV(info FileInfo) bool {
	if strings.EqualFold(filepath.Ext(info.Name), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(info.ContentType)
	if err != nil {
		return false
	}
	return csvContentTypes[strings.ToLower(mediaType)]
}
