// Package shared holds helpers common to the SQL-backed connectors.
package shared

import (
	"database/sql"
	"time"

	"github.com/ecochain/ecochain/pkg/connector/core"
)

// RowsToRecords drains a database/sql result set into raw records keyed by
// column name. Driver []byte values are converted to strings so downstream
// mapping and import see plain scalars.
func RowsToRecords(rows *sql.Rows) ([]core.RawRecord, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := make([]core.RawRecord, 0)
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		record := make(core.RawRecord, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val
	default:
		return v
	}
}
