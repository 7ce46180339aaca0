// Package records stores and queries the public registry tables.
//
// The repository is table-generic: rows arrive as column maps built by the
// import pipeline, and queries return column maps, so one implementation
// serves every registry domain.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrima/records-portal/internal/entities"
	"github.com/mrima/records-portal/internal/importers"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

var ErrUnknownTable = errors.New("unknown registry table")

type Repository struct {
	db     *gorm.DB
	models map[string]any
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, models: entities.RecordModels()}
}

func (r *Repository) scope(ctx context.Context, table string) (*gorm.DB, error) {
	model, ok := r.models[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return r.db.WithContext(ctx).Model(model), nil
}

// FindByKey returns the first stored row whose columns equal the key. Nil
// key values match NULL columns.
func (r *Repository) FindByKey(ctx context.Context, table string, key importers.Key) (map[string]any, bool, error) {
	q, err := r.scope(ctx, table)
	if err != nil {
		return nil, false, err
	}

	row := map[string]any{}
	err = q.Where(key.Conditions()).Order("id").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up %s by key: %w", table, err)
	}
	if len(row) == 0 {
		return nil, false, nil
	}
	return row, true, nil
}

// InsertBatch writes rows in one transaction; either every row is stored
// or none is.
func (r *Repository) InsertBatch(ctx context.Context, table string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	if _, ok := r.models[table]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	now := time.Now()
	stamped := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(row)+2)
		for k, v := range row {
			m[k] = v
		}
		m["created_at"] = now
		m["updated_at"] = now
		stamped[i] = m
	}

	// Table, not Model: with a model gorm scans the returned id into the map.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(table).Create(stamped).Error; err != nil {
			return fmt.Errorf("failed to insert %d rows into %s: %w", len(rows), table, err)
		}
		return nil
	})
}

// Query filters a registry listing.
type Query struct {
	Term       string
	Columns    []string
	MinQuality int
	Limit      int
	Offset     int
}

// Search returns rows at or above the quality threshold whose searchable
// columns contain the term, newest first, plus the total match count.
func (r *Repository) Search(ctx context.Context, table string, query Query) ([]map[string]any, int64, error) {
	q, err := r.scope(ctx, table)
	if err != nil {
		return nil, 0, err
	}

	q = q.Where(importers.ColumnQualityScore+" >= ?", query.MinQuality)
	if term := strings.TrimSpace(query.Term); term != "" && len(query.Columns) > 0 {
		pattern := "%" + strings.ToLower(term) + "%"
		clauses := make([]string, len(query.Columns))
		args := make([]any, len(query.Columns))
		for i, c := range query.Columns {
			clauses[i] = "LOWER(" + c + ") LIKE ?"
			args[i] = pattern
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []map[string]any
	err = q.Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search %s: %w", table, err)
	}
	return rows, total, nil
}

// Count is the number of rows sharing one column value.
type Count struct {
	Value *string `gorm:"column:value" json:"value"`
	Count int64   `gorm:"column:count" json:"count"`
}

// CountBy groups visible rows by column, largest group first.
func (r *Repository) CountBy(ctx context.Context, table, column string, minQuality int) ([]Count, error) {
	q, err := r.scope(ctx, table)
	if err != nil {
		return nil, err
	}

	var counts []Count
	err = q.Select("CAST("+column+" AS TEXT) AS value, COUNT(*) AS count").
		Where(importers.ColumnQualityScore+" >= ?", minQuality).
		Group(column).
		Order("count DESC, value ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count %s by %s: %w", table, column, err)
	}
	return counts, nil
}

// DeleteBatch removes every row written by one import batch.
func (r *Repository) DeleteBatch(ctx context.Context, table, batchID string) (int64, error) {
	model, ok := r.models[table]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	result := r.db.WithContext(ctx).Where(importers.ColumnImportBatchID+" = ?", batchID).Delete(model)
	return result.RowsAffected, result.Error
}

// CountRecords returns the number of rows in a table.
func (r *Repository) CountRecords(ctx context.Context, table string) (int64, error) {
	q, err := r.scope(ctx, table)
	if err != nil {
		return 0, err
	}
	var n int64
	err = q.Count(&n).Error
	return n, err
}
