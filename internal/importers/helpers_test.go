package importers

import (
	"context"
	"fmt"
	"sync"
)

// memStore is an in-memory Store. insertHook may reject a batch.
type memStore struct {
	mu         sync.Mutex
	tables     map[string][]map[string]any
	findErr    error
	insertHook func(rows []map[string]any) error
	inserts    int
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[string][]map[string]any)}
}

func (s *memStore) FindByKey(_ context.Context, table string, key Key) (map[string]any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, false, s.findErr
	}
	for _, row := range s.tables[table] {
		match := true
		for col, want := range key.Conditions() {
			if fmt.Sprint(row[col]) != fmt.Sprint(want) {
				match = false
				break
			}
		}
		if match {
			return row, true, nil
		}
	}
	return nil, false, nil
}

func (s *memStore) InsertBatch(_ context.Context, table string, rows []map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if s.insertHook != nil {
		if err := s.insertHook(rows); err != nil {
			return err
		}
	}
	s.tables[table] = append(s.tables[table], rows...)
	return nil
}

func (s *memStore) rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[table]
}

func testConfig() Config {
	return Config{
		Name:  "societies",
		Label: "Societies",
		Table: "societies",
		Fields: []FieldSpec{
			{Target: "registration_number", Aliases: []string{"Registration Number", "reg no"}},
			{Target: "society_name", Aliases: []string{"Society Name", "registered name", "name of society"}},
			{Target: "registration_date", Aliases: []string{"Registration Date", "date registered"}, Transform: Date},
			{Target: "member_count", Aliases: []string{"Members"}, Transform: Int},
			{Target: "registration_status", Aliases: []string{"Status"}, Transform: UpperEnum,
				Enum: []string{"ACTIVE", "DEREGISTERED"}, Default: "ACTIVE"},
		},
		Rules: []QualityRule{
			{Field: "society_name", Weight: 40, Level: HardRequired},
			{Field: "registration_number", Weight: 30, Level: Required},
			{Field: "registration_date", Weight: 20, Level: Required},
			{Field: "member_count", Weight: 10, Level: Optional},
		},
		Key:        FieldsKey("registration_number"),
		CoreFields: []string{"society_name", "registration_date"},
		LabelField: "society_name",
		BatchSize:  50,
		TemplateRows: [][]string{
			{"SOC-001", "Example Welfare Society", "2022-09-01", "25", "ACTIVE"},
		},
	}
}

type lockerFunc func(ctx context.Context, domain string) (func(), error)

func (f lockerFunc) Acquire(ctx context.Context, domain string) (func(), error) {
	return f(ctx, domain)
}
