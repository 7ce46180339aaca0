package importers

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrFileTooLarge     = errors.New("file exceeds maximum size")
	ErrNoHeader         = errors.New("file has no header row")
	ErrNoMappedColumns  = errors.New("no recognised columns in header")
	ErrMissingColumn    = errors.New("required column missing from header")
	ErrImportInProgress = errors.New("another import is already running for this domain")
	ErrInvalidFileType  = errors.New("file must be a CSV file")
)

// PreconditionError means the file was rejected before any row was read.
type PreconditionError struct {
	Err    error
	Detail string
}

func (e *PreconditionError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

func precondition(err error, detail string) *PreconditionError {
	return &PreconditionError{Err: err, Detail: detail}
}

// RowError is a problem confined to a single source line.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err rejected the whole file.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
