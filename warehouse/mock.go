package warehouse

import (
	"context"
	"fmt"
)

// MockLoader records warehouse calls for tests.
type MockLoader struct {
	Tables   map[string]bool // table name -> exists
	RowCount int64           // rows reported per load

	Creates []MockCreate
	Deletes []MockDelete
	Loads   []MockLoad
	Inserts []MockInsert

	LoadErr    error // returned by LoadFromURIs when set
	FailOnLoad int   // 1-based call number on which LoadFromURIs returns LoadErr; 0 fails every call
	DeleteErr  error // returned by DeletePartition when set

	loadCalls int
}

type MockCreate struct {
	Table     string
	Prototype interface{}
}

type MockDelete struct {
	Table  string
	Column string
	Value  string
}

type MockLoad struct {
	Table  string
	URIs   []string
	Config LoadConfig
}

type MockInsert struct {
	Table string
	Rows  interface{}
}

func NewMockLoader() *MockLoader {
	return &MockLoader{Tables: map[string]bool{}, RowCount: 100}
}

func (m *MockLoader) TableExists(ctx context.Context, table string) (bool, error) {
	return m.Tables[table], nil
}

func (m *MockLoader) CreateTable(ctx context.Context, table string, prototype interface{}) error {
	if m.Tables[table] {
		return fmt.Errorf("table %v already exists", table)
	}
	m.Creates = append(m.Creates, MockCreate{Table: table, Prototype: prototype})
	m.Tables[table] = true
	return nil
}

func (m *MockLoader) DeletePartition(ctx context.Context, table, column, value string) (int64, error) {
	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}
	if !m.Tables[table] {
		return 0, nil
	}
	m.Deletes = append(m.Deletes, MockDelete{Table: table, Column: column, Value: value})
	return m.RowCount, nil
}

func (m *MockLoader) LoadFromURIs(ctx context.Context, uris []string, table string, cfg LoadConfig) (*LoadResult, error) {
	m.loadCalls++
	if m.LoadErr != nil && (m.FailOnLoad == 0 || m.FailOnLoad == m.loadCalls) {
		return nil, m.LoadErr
	}
	m.Loads = append(m.Loads, MockLoad{Table: table, URIs: uris, Config: cfg})
	m.Tables[table] = true
	return &LoadResult{Rows: m.RowCount}, nil
}

// Insert fails for a missing table the way a streaming insert does.
func (m *MockLoader) Insert(ctx context.Context, table string, rows interface{}) error {
	if !m.Tables[table] {
		return fmt.Errorf("table %v not found", table)
	}
	m.Inserts = append(m.Inserts, MockInsert{Table: table, Rows: rows})
	return nil
}

// LastLoad returns the most recent load or an error when none happened.
func (m *MockLoader) LastLoad() (MockLoad, error) {
	if len(m.Loads) == 0 {
		return MockLoad{}, fmt.Errorf("no loads recorded")
	}
	return m.Loads[len(m.Loads)-1], nil
}
