package facttable

import (
	"context"
	"sync"
	"time"
)

// ColumnType classifies a warehouse column. The empty string means the type
// is not yet known; a later refresh may learn it from fresh sample rows.
type ColumnType string

const (
	ColumnTypeUnknown ColumnType = ""
	ColumnTypeNumber  ColumnType = "number"
	ColumnTypeString  ColumnType = "string"
	ColumnTypeBoolean ColumnType = "boolean"
	ColumnTypeDate    ColumnType = "date"
	ColumnTypeJSON    ColumnType = "json"
)

// Column describes one column discovered in a fact table's query result.
// Columns are never removed once seen; when a refresh stops returning one it
// is marked deleted so downstream metric definitions keep resolving.
type Column struct {
	Column       string     `json:"column"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Datatype     ColumnType `json:"datatype"`
	NumberFormat string     `json:"numberFormat"`
	Deleted      bool       `json:"deleted"`
	DateCreated  time.Time  `json:"dateCreated"`
	DateUpdated  time.Time  `json:"dateUpdated"`
}

// FactTable binds a SQL query to the columns discovered from it.
type FactTable struct {
	ID           string    `json:"id"`
	Organization string    `json:"organization"`
	Name         string    `json:"name"`
	DataSource   string    `json:"datasource"`
	SQL          string    `json:"sql"`
	EventName    string    `json:"eventName,omitempty"`
	Columns      []Column  `json:"columns"`
	ColumnsError string    `json:"columnsError,omitempty"`
	DateCreated  time.Time `json:"dateCreated"`
	DateUpdated  time.Time `json:"dateUpdated"`
}

// QueryRunner executes a fact table's query against its warehouse and
// returns a small sample of rows. Warehouse drivers live with the hosting
// application; this package only needs the sample to learn column shapes.
type QueryRunner interface {
	RunSampleQuery(ctx context.Context, sql, eventName string) ([]map[string]any, error)
}

// Store persists fact tables.
type Store interface {
	Get(ctx context.Context, organization, id string) (*FactTable, error)
	UpdateColumns(ctx context.Context, organization, id string, columns []Column, columnsError string) error
}

// MemoryStore is an in-memory Store guarded by a RWMutex.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*FactTable
}

// NewMemoryStore creates an empty in-memory fact table store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*FactTable)}
}

// Put inserts or replaces a fact table.
func (s *MemoryStore) Put(ctx context.Context, ft *FactTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := cloneFactTable(ft)
	s.tables[ft.ID] = clone
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, organization, id string) (*FactTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ft, exists := s.tables[id]
	if !exists || ft.Organization != organization {
		return nil, ErrNotFound
	}
	return cloneFactTable(ft), nil
}

func (s *MemoryStore) UpdateColumns(ctx context.Context, organization, id string, columns []Column, columnsError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ft, exists := s.tables[id]
	if !exists || ft.Organization != organization {
		return ErrNotFound
	}
	ft.Columns = append([]Column(nil), columns...)
	ft.ColumnsError = columnsError
	return nil
}

func cloneFactTable(ft *FactTable) *FactTable {
	clone := *ft
	clone.Columns = append([]Column(nil), ft.Columns...)
	return &clone
}
