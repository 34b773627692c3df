package facttable

import (
	"context"
	"encoding/json"
	"slices"
	"time"
)

// RefreshColumns runs the fact table's sample query and merges the columns
// it observes into the table's existing column list:
//
//   - a known column missing from the sample is marked deleted
//   - a deleted column that reappears is revived
//   - a column with an unknown datatype learns it from the fresh sample
//   - columns never seen before are appended
//
// The merged list is returned; the input fact table is not mutated.
func RefreshColumns(ctx context.Context, runner QueryRunner, ft *FactTable, now func() time.Time) ([]Column, error) {
	if now == nil {
		now = time.Now
	}

	rows, err := runner.RunSampleQuery(ctx, ft.SQL, ft.EventName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoSampleRows
	}

	observed := determineColumnTypes(rows)
	ts := now().UTC()

	columns := append([]Column(nil), ft.Columns...)
	for i := range columns {
		col := &columns[i]

		datatype, exists := observed[col.Column]
		if !exists {
			if !col.Deleted {
				col.Deleted = true
				col.DateUpdated = ts
			}
			continue
		}

		if col.Deleted {
			col.Deleted = false
			col.DateUpdated = ts
		}
		if col.Datatype == ColumnTypeUnknown && datatype != ColumnTypeUnknown {
			col.Datatype = datatype
			col.DateUpdated = ts
		}
	}

	known := make(map[string]bool, len(columns))
	for i := range columns {
		known[columns[i].Column] = true
	}
	// Sort new names so the append order is stable across runs.
	for _, name := range sortedColumnNames(observed) {
		if known[name] {
			continue
		}
		columns = append(columns, Column{
			Column:      name,
			Name:        name,
			Datatype:    observed[name],
			DateCreated: ts,
			DateUpdated: ts,
		})
		known[name] = true
	}

	return columns, nil
}

// determineColumnTypes infers a datatype per column from sample rows. The
// first non-nil value wins; columns that are nil in every row stay unknown.
func determineColumnTypes(rows []map[string]any) map[string]ColumnType {
	types := make(map[string]ColumnType)
	for _, row := range rows {
		for name, value := range row {
			if existing, seen := types[name]; seen && existing != ColumnTypeUnknown {
				continue
			}
			types[name] = valueType(value)
		}
	}
	return types
}

func valueType(value any) ColumnType {
	switch v := value.(type) {
	case nil:
		return ColumnTypeUnknown
	case bool:
		return ColumnTypeBoolean
	case float64, float32, int, int32, int64, json.Number:
		return ColumnTypeNumber
	case time.Time:
		return ColumnTypeDate
	case string:
		if _, err := time.Parse(time.RFC3339, v); err == nil {
			return ColumnTypeDate
		}
		return ColumnTypeString
	case map[string]any, []any:
		return ColumnTypeJSON
	default:
		return ColumnTypeString
	}
}

func sortedColumnNames(observed map[string]ColumnType) []string {
	names := make([]string, 0, len(observed))
	for name := range observed {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
