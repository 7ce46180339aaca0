package importers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acmeCSV = "Registered Name,registration_date,registration_number\n" +
	"\"ACME SOCIETY\",\"2022-09-01\",\"SOC-001\"\n" +
	"\"ACME SOCIETY\",\"2022-09-01\",\"SOC-001\"\n" +
	"\"BETA GROUP\",\"\",\"SOC-002\""

func importString(t *testing.T, imp *Importer, content string) *Result {
	t.Helper()
	result, err := imp.Import(context.Background(), Source{Name: "test.csv", Content: []byte(content)}, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Balanced(), "row counts must balance: %+v", result)
	return result
}

func TestImporter_Import_DuplicateWithinFile(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})

	result := importString(t, imp, acmeCSV)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalRecords)
	assert.Equal(t, 2, result.SuccessfulRecords)
	assert.Equal(t, 1, result.DuplicateRecords)
	assert.Equal(t, 0, result.FailedRecords)
	assert.Equal(t, 0, result.SkippedRecords)
	assert.NotEmpty(t, result.BatchID)

	rows := store.rows("societies")
	require.Len(t, rows, 2)
	assert.Equal(t, "ACME SOCIETY", rows[0]["society_name"])
	assert.Equal(t, 100, rows[0][ColumnQualityScore])

	beta := rows[1]
	assert.Equal(t, "BETA GROUP", beta["society_name"])
	assert.Nil(t, beta["registration_date"])
	assert.Equal(t, 80, beta[ColumnQualityScore])
	assert.Equal(t, `["registration_date"]`, beta[ColumnMissingFields])
	assert.Equal(t, "test.csv", beta[ColumnFileSource])
	assert.Equal(t, result.BatchID, beta[ColumnImportBatchID])
	assert.Equal(t, "ACTIVE", beta["registration_status"])
}

func TestImporter_Import_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		opts    Options
		wantErr error
	}{
		{name: "empty file", content: "", wantErr: ErrEmptyFile},
		{name: "whitespace only", content: "  \n\t\n", wantErr: ErrEmptyFile},
		{name: "too large", content: acmeCSV, opts: Options{MaxFileSize: 10}, wantErr: ErrFileTooLarge},
		{name: "blank header cells", content: ",,\nACME,2022-01-01,SOC-1\n", wantErr: ErrNoHeader},
		{name: "no recognised columns", content: "foo,bar\n1,2\n", wantErr: ErrNoMappedColumns},
		{name: "hard-required column missing", content: "registration number\nSOC-1\n", wantErr: ErrMissingColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			imp := NewImporter(testConfig(), store, tt.opts)

			result, err := imp.Import(context.Background(), Source{Name: "x.csv", Content: []byte(tt.content)}, nil)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, IsPrecondition(err))
			require.NotNil(t, result)
			assert.False(t, result.Success)
			assert.Equal(t, 0, result.TotalRecords)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, 0, result.Errors[0].Row)
			assert.Equal(t, 0, store.inserts)
		})
	}
}

func TestImporter_Import_ReimportIsIdempotent(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})

	first := importString(t, imp, acmeCSV)
	require.Equal(t, 2, first.SuccessfulRecords)

	second := importString(t, imp, acmeCSV)

	assert.Equal(t, 0, second.SuccessfulRecords)
	assert.Equal(t, second.TotalRecords, second.DuplicateRecords)
	assert.False(t, second.Success)
	assert.Len(t, store.rows("societies"), 2)
}

func TestImporter_Import_RowWithoutKeyIsNotDeduplicated(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})
	content := "society name,registration number\nNo Number Society,\nNo Number Society,\n"

	importString(t, imp, content)
	second := importString(t, imp, content)

	assert.Equal(t, 2, second.SuccessfulRecords)
	assert.Equal(t, 0, second.DuplicateRecords)
}

func TestImporter_Import_MalformedRowIsIsolated(t *testing.T) {
	var b strings.Builder
	b.WriteString("registration number,society name,registration date\n")
	for i := 0; i < 100; i++ {
		if i == 50 {
			b.WriteString("SOC-BAD,Broken Row,2022-01-01,unexpected\n")
			continue
		}
		fmt.Fprintf(&b, "SOC-%03d,Society %d,2022-01-01\n", i, i)
	}

	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})
	result := importString(t, imp, b.String())

	assert.Equal(t, 100, result.TotalRecords)
	assert.Equal(t, 99, result.SuccessfulRecords)
	assert.Equal(t, 1, result.FailedRecords)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 52, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Error, "expected 3 columns")
	assert.False(t, result.Success)
}

func TestImporter_Import_DuplicateAcrossBatchBoundary(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{BatchSize: 2})
	content := "registration number,society name\nSOC-1,A\nSOC-2,B\nSOC-3,C\nSOC-1,A\n"

	result := importString(t, imp, content)

	assert.Equal(t, 3, result.SuccessfulRecords)
	assert.Equal(t, 1, result.DuplicateRecords)
	assert.Len(t, store.rows("societies"), 3)
}

func TestImporter_Import_HardRequiredMissingSkipsRow(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})

	result := importString(t, imp, "registration number,society name\nSOC-1,\nSOC-2,Named\n")

	assert.Equal(t, 1, result.SuccessfulRecords)
	assert.Equal(t, 1, result.SkippedRecords)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Error, "society_name")
}

func TestImporter_Import_ConflictIsSkippedAndReported(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})
	importString(t, imp, "registration number,society name\nSOC-1,Original Name\n")

	result := importString(t, imp, "registration number,society name\nSOC-1,Different Name\n")

	assert.Equal(t, 1, result.SkippedRecords)
	assert.Equal(t, 1, result.ConflictRecords)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error, "conflicts with existing record")
	assert.Contains(t, result.Message, "conflicting")
}

func TestImporter_Import_LookupFailureStillInserts(t *testing.T) {
	store := newMemStore()
	store.findErr = errors.New("lookup timeout")
	imp := NewImporter(testConfig(), store, Options{})

	result := importString(t, imp, "registration number,society name\nSOC-1,A\n")

	assert.Equal(t, 1, result.SuccessfulRecords)
}

func TestImporter_Import_BatchRetry(t *testing.T) {
	t.Run("transient failure recovers on retry", func(t *testing.T) {
		store := newMemStore()
		calls := 0
		store.insertHook = func(rows []map[string]any) error {
			calls++
			if calls == 1 {
				return errors.New("connection reset")
			}
			return nil
		}
		imp := NewImporter(testConfig(), store, Options{MaxRetries: 2})

		result := importString(t, imp, "registration number,society name\nSOC-1,A\nSOC-2,B\n")

		assert.Equal(t, 2, result.SuccessfulRecords)
		assert.Equal(t, 2, store.inserts)
	})

	t.Run("persistent failure falls back to single rows", func(t *testing.T) {
		store := newMemStore()
		store.insertHook = func(rows []map[string]any) error {
			for _, r := range rows {
				if r["registration_number"] == "SOC-BAD" {
					return errors.New("constraint violation")
				}
			}
			return nil
		}
		imp := NewImporter(testConfig(), store, Options{MaxRetries: 1})

		result := importString(t, imp, "registration number,society name\nSOC-1,A\nSOC-BAD,B\nSOC-3,C\n")

		assert.Equal(t, 2, result.SuccessfulRecords)
		assert.Equal(t, 1, result.FailedRecords)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 3, result.Errors[0].Row)
		assert.Contains(t, result.Errors[0].Error, "constraint violation")
		assert.Len(t, store.rows("societies"), 2)
	})

	t.Run("failed key can be claimed by a later row", func(t *testing.T) {
		store := newMemStore()
		store.insertHook = func(rows []map[string]any) error {
			for _, r := range rows {
				if r["society_name"] == "Unlucky" {
					return errors.New("rejected")
				}
			}
			return nil
		}
		imp := NewImporter(testConfig(), store, Options{BatchSize: 1})

		result := importString(t, imp, "registration number,society name\nSOC-1,Unlucky\nSOC-1,Lucky\n")

		assert.Equal(t, 1, result.FailedRecords)
		assert.Equal(t, 1, result.SuccessfulRecords)
		assert.Equal(t, 0, result.DuplicateRecords)
	})
}

func TestImporter_Import_RepeatOfRejectedRowFails(t *testing.T) {
	store := newMemStore()
	store.insertHook = func(rows []map[string]any) error {
		for _, r := range rows {
			if r["society_name"] == "Bad" {
				return errors.New("constraint violation")
			}
		}
		return nil
	}
	imp := NewImporter(testConfig(), store, Options{MaxRetries: 1})

	result := importString(t, imp, "registration number,society name\nSOC-1,Bad\nSOC-1,Bad\nSOC-2,Good\n")

	assert.Equal(t, 1, result.SuccessfulRecords)
	assert.Equal(t, 2, result.FailedRecords)
	assert.Equal(t, 0, result.DuplicateRecords)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Error, "line 2 with the same key was rejected")
	assert.Len(t, store.rows("societies"), 1)
}

func TestImporter_Import_RepeatOfStoredRowIsDuplicate(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})

	result := importString(t, imp, "registration number,society name\nSOC-1,A\nSOC-2,B\nSOC-1,A\n")

	assert.Equal(t, 2, result.SuccessfulRecords)
	assert.Equal(t, 1, result.DuplicateRecords)
	assert.Empty(t, result.Errors)
}

func TestImporter_Import_ConflictWithinFile(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})

	result := importString(t, imp, "registration number,society name\nSOC-1,First Name\nSOC-1,Second Name\n")

	assert.Equal(t, 1, result.SuccessfulRecords)
	assert.Equal(t, 1, result.SkippedRecords)
	assert.Equal(t, 1, result.ConflictRecords)
	assert.Equal(t, 0, result.DuplicateRecords)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Error, "conflicts with earlier row")
	assert.Contains(t, result.Errors[0].Error, "society_name")

	rows := store.rows("societies")
	require.Len(t, rows, 1)
	assert.Equal(t, "First Name", rows[0]["society_name"])
}

func TestImporter_Import_KeyCaseIsSignificant(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})

	first := importString(t, imp, "registration number,society name\nsoc-001,Acme\nSOC-001,Acme\n")
	assert.Equal(t, 2, first.SuccessfulRecords)
	assert.Equal(t, 0, first.DuplicateRecords)

	// A second run agrees with the first: each spelling matches only itself.
	second := importString(t, imp, "registration number,society name\nSOC-001,Acme\nsoc-001,Acme\n")
	assert.Equal(t, 0, second.SuccessfulRecords)
	assert.Equal(t, 2, second.DuplicateRecords)
	assert.Len(t, store.rows("societies"), 2)
}

func TestImporter_Import_Cancellation(t *testing.T) {
	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := SinkFunc(func(p Progress) error {
		if p.Batch == 1 {
			cancel()
		}
		return nil
	})
	imp := NewImporter(testConfig(), store, Options{BatchSize: 2})
	content := "registration number,society name\nSOC-1,A\nSOC-2,B\nSOC-3,C\nSOC-4,D\nSOC-5,E\n"

	result, err := imp.Import(ctx, Source{Name: "x.csv", Content: []byte(content)}, sink)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.True(t, result.Cancelled)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.SuccessfulRecords)
	assert.Equal(t, 2, result.SkippedRecords)
	assert.True(t, result.Balanced())
	assert.Len(t, store.rows("societies"), 2)
}

func TestImporter_Import_ProgressSink(t *testing.T) {
	t.Run("receives cumulative progress", func(t *testing.T) {
		var updates []Progress
		sink := SinkFunc(func(p Progress) error {
			updates = append(updates, p)
			return nil
		})
		imp := NewImporter(testConfig(), newMemStore(), Options{BatchSize: 2})
		content := "registration number,society name\nSOC-1,A\nSOC-2,B\nSOC-3,C\n"

		_, err := imp.Import(context.Background(), Source{Content: []byte(content)}, sink)
		require.NoError(t, err)

		require.NotEmpty(t, updates)
		last := updates[len(updates)-1]
		assert.Equal(t, PhaseDone, last.Phase)
		assert.Equal(t, 3, last.Processed)
		assert.Equal(t, 3, last.Total)
		assert.InDelta(t, 100.0, last.Percentage, 0.001)
		assert.Equal(t, "C", last.CurrentRecordLabel)

		for i := 1; i < len(updates); i++ {
			assert.GreaterOrEqual(t, updates[i].Processed, updates[i-1].Processed)
		}
	})

	t.Run("failing and panicking sinks are ignored", func(t *testing.T) {
		sink := MultiSink{
			SinkFunc(func(Progress) error { return errors.New("sink down") }),
			SinkFunc(func(Progress) error { panic("boom") }),
		}
		imp := NewImporter(testConfig(), newMemStore(), Options{})

		result, err := imp.Import(context.Background(), Source{Content: []byte(acmeCSV)}, sink)

		require.NoError(t, err)
		assert.Equal(t, 2, result.SuccessfulRecords)
	})
}

func TestImporter_Import_Lock(t *testing.T) {
	t.Run("held lock rejects run", func(t *testing.T) {
		lock := lockerFunc(func(context.Context, string) (func(), error) {
			return nil, ErrImportInProgress
		})
		store := newMemStore()
		imp := NewImporter(testConfig(), store, Options{Lock: lock})

		result, err := imp.Import(context.Background(), Source{Content: []byte(acmeCSV)}, nil)

		require.ErrorIs(t, err, ErrImportInProgress)
		assert.False(t, result.Success)
		assert.Equal(t, 0, store.inserts)
	})

	t.Run("lock released after run", func(t *testing.T) {
		released := false
		var domain string
		lock := lockerFunc(func(_ context.Context, d string) (func(), error) {
			domain = d
			return func() { released = true }, nil
		})
		imp := NewImporter(testConfig(), newMemStore(), Options{Lock: lock})

		importString(t, imp, acmeCSV)

		assert.Equal(t, "societies", domain)
		assert.True(t, released)
	})
}

func TestImporter_Import_ErrorCapAndTolerance(t *testing.T) {
	var b strings.Builder
	b.WriteString("registration number,society name\n")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "SOC-R%d,Ragged,extra\n", i)
	}
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "SOC-%d,Fine %d\n", i, i)
	}

	t.Run("errors are capped", func(t *testing.T) {
		imp := NewImporter(testConfig(), newMemStore(), Options{MaxErrors: 2})
		result := importString(t, imp, b.String())

		assert.Equal(t, 5, result.FailedRecords)
		assert.Len(t, result.Errors, 2)
		assert.Equal(t, 3, result.ErrorsTruncated)
		assert.Contains(t, result.Message, "3 further errors")
	})

	t.Run("tolerance allows some failures", func(t *testing.T) {
		imp := NewImporter(testConfig(), newMemStore(), Options{FailureTolerance: 0.5})
		result := importString(t, imp, b.String())

		assert.True(t, result.Success)
		assert.Equal(t, 15, result.SuccessfulRecords)
	})

	t.Run("tolerance exceeded", func(t *testing.T) {
		imp := NewImporter(testConfig(), newMemStore(), Options{FailureTolerance: 0.1})
		result := importString(t, imp, b.String())

		assert.False(t, result.Success)
	})
}

func TestImporter_Import_InvalidDateIsSoftFailure(t *testing.T) {
	store := newMemStore()
	imp := NewImporter(testConfig(), store, Options{})

	result := importString(t, imp, "registration number,society name,registration date\nSOC-1,A,1954-20-20\n")

	assert.Equal(t, 1, result.SuccessfulRecords)
	rows := store.rows("societies")
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["registration_date"])
	assert.Equal(t, 80, rows[0][ColumnQualityScore])
	assert.Contains(t, rows[0][ColumnImportWarnings], "invalid date")
}
