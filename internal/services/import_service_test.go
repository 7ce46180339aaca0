package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrima/records-portal/internal/audit"
	"github.com/mrima/records-portal/internal/database"
	auditRepo "github.com/mrima/records-portal/internal/database/audit"
	"github.com/mrima/records-portal/internal/database/records"
	"github.com/mrima/records-portal/internal/database/runs"
	"github.com/mrima/records-portal/internal/entities"
	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/registry"
)

type observed struct {
	domain string
	result *importers.Result
	err    error
}

type fakeObserver struct {
	mu    sync.Mutex
	calls []observed
}

func (f *fakeObserver) ObserveImport(domain string, result *importers.Result, err error, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, observed{domain, result, err})
}

type fixture struct {
	db       *gorm.DB
	svc      *ImportService
	runs     *runs.Repository
	audit    *audit.Service
	observer *fakeObserver
}

func setup(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	f := &fixture{
		db:       db,
		runs:     runs.NewRepository(db, time.Minute),
		audit:    audit.NewService(auditRepo.NewRepository(db), nil),
		observer: &fakeObserver{},
	}
	f.svc = NewImportService(records.NewRepository(db), f.runs, f.audit, f.observer, ImportSettings{})
	return f
}

const societiesCSV = "Registration Number,Society Name,Registration Date,County\n" +
	"SOC/1,ACME Traders,12/03/2015,Nairobi\n" +
	"SOC/2,Umoja Women Group,2016-07-01,Kisumu\n"

func TestImportService_Import(t *testing.T) {
	f := setup(t)

	var last importers.Progress
	sink := importers.SinkFunc(func(p importers.Progress) error {
		last = p
		return nil
	})

	result, err := f.svc.Import(context.Background(), ImportRequest{
		Domain:   "societies",
		FileName: "societies.csv",
		Content:  []byte(societiesCSV),
		UserID:   4,
	}, sink)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.SuccessfulRecords)
	assert.Equal(t, importers.PhaseDone, last.Phase)

	run, err := f.runs.Latest(registry.Societies)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportRunCompleted, run.Status)
	assert.Equal(t, 2, run.Succeeded)
	assert.Equal(t, result.BatchID, run.BatchID)
	assert.Nil(t, run.ActiveDomain)

	f.audit.Flush()
	events, total, err := f.audit.GetEvents(auditRepo.Filter{Domain: registry.Societies}, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, uint(4), events[0].UserID)
	require.NotNil(t, events[0].EntityID)
	assert.Equal(t, run.ID, *events[0].EntityID)

	require.Len(t, f.observer.calls, 1)
	assert.Equal(t, registry.Societies, f.observer.calls[0].domain)
}

func TestImportService_DomainAliases(t *testing.T) {
	f := setup(t)

	content := "AG File Reference,Court Station,Case Year,Parties\n" +
		"AG/CIV/1/2020,Milimani,2020,Republic v. Kamau\n"
	result, err := f.svc.Import(context.Background(), ImportRequest{
		Domain:   "cases",
		FileName: "cases.csv",
		Content:  []byte(content),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessfulRecords)

	var n int64
	f.db.Model(&entities.GovernmentCase{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestImportService_UnknownDomain(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Import(context.Background(), ImportRequest{Domain: "land_titles", Content: []byte("a\n1\n")}, nil)
	assert.ErrorIs(t, err, registry.ErrUnknownDomain)
	assert.Empty(t, f.observer.calls)
}

func TestImportService_Precondition(t *testing.T) {
	f := setup(t)

	result, err := f.svc.Import(context.Background(), ImportRequest{
		Domain:   "societies",
		FileName: "empty.csv",
		Content:  []byte("   \n"),
	}, nil)
	require.Error(t, err)
	assert.True(t, importers.IsPrecondition(err))
	assert.ErrorIs(t, err, importers.ErrEmptyFile)
	assert.False(t, result.Success)

	// Rejected before the lock, so no run was recorded.
	_, err = f.runs.Latest(registry.Societies)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	f.audit.Flush()
	events, _, err := f.audit.GetEvents(auditRepo.Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entities.AuditStatusFailed, events[0].Status)
}

func TestImportService_ConcurrentRunRejected(t *testing.T) {
	f := setup(t)

	_, err := f.runs.Start(registry.Societies, "other.csv", 1)
	require.NoError(t, err)

	result, err := f.svc.Import(context.Background(), ImportRequest{
		Domain:   "societies",
		FileName: "societies.csv",
		Content:  []byte(societiesCSV),
	}, nil)
	assert.ErrorIs(t, err, importers.ErrImportInProgress)
	assert.Zero(t, result.SuccessfulRecords)

	var n int64
	f.db.Model(&entities.Society{}).Count(&n)
	assert.Zero(t, n)
}

func TestImportService_Cancelled(t *testing.T) {
	f := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.svc.Import(ctx, ImportRequest{
		Domain:   "societies",
		FileName: "societies.csv",
		Content:  []byte(societiesCSV),
	}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, result)
	assert.True(t, result.Cancelled)

	run, err := f.runs.Latest(registry.Societies)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportRunCancelled, run.Status)
}

func TestImportService_WithoutTracking(t *testing.T) {
	f := setup(t)
	svc := NewImportService(records.NewRepository(f.db), nil, nil, nil, ImportSettings{BatchSize: 1})

	result, err := svc.Import(context.Background(), ImportRequest{
		Domain:   "societies",
		FileName: "societies.csv",
		Content:  []byte(societiesCSV),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessfulRecords)

	_, err = svc.LatestRun("societies")
	assert.Error(t, err)
}

func TestImportService_Validate(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name  string
		info  importers.FileInfo
		valid bool
	}{
		{"csv", importers.FileInfo{Name: "a.csv", Size: 10}, true},
		{"excel", importers.FileInfo{Name: "a.xlsx", Size: 10, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, false},
		{"too large", importers.FileInfo{Name: "a.csv", Size: importers.DefaultMaxFileSize + 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := f.svc.Validate(1, "public-trustees", tt.info)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, v.Valid)
		})
	}

	_, err := f.svc.Validate(1, "nope", importers.FileInfo{Name: "a.csv", Size: 1})
	assert.ErrorIs(t, err, registry.ErrUnknownDomain)
}

func TestImportService_WriteTemplate(t *testing.T) {
	f := setup(t)

	var buf bytes.Buffer
	require.NoError(t, f.svc.WriteTemplate(&buf, "trustees"))
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Contains(t, header, "Deceased")

	assert.Equal(t, int64(importers.DefaultMaxFileSize), f.svc.MaxFileSize())
}
