package store

import (
	"context"
	"fmt"

	"github.com/OscarFredriksson/tire-logger/internal/record"
)

// QueryRecords runs query and converts every result row into a Record
// whose fields follow the result column order.
func QueryRecords(ctx context.Context, q Querier, query string, args ...any) ([]record.Record, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []record.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		var r record.Record
		for i, col := range cols {
			v, err := record.FromAny(vals[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			r.Set(col, v)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
