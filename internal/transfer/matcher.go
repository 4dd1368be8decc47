package transfer

import (
	"context"

	"github.com/OscarFredriksson/tire-logger/internal/record"
	"github.com/OscarFredriksson/tire-logger/internal/sqlbuild"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// FindExisting looks up the stored row corresponding to incoming.
//
// With primary-key columns, the lookup uses only those columns; a missing
// or empty key value means no match is possible. Without a primary key,
// every field of incoming must be equal (a full-row match). This fallback
// misses rows that differ in any field, including fields added upstream.
func FindExisting(ctx context.Context, q store.Querier, b sqlbuild.Builder, table string, incoming record.Record, keys []string) (record.Record, bool, error) {
	match := incoming
	if len(keys) > 0 {
		match = record.Record{}
		for _, k := range keys {
			v, ok := incoming.Get(k)
			if !ok || record.IsEmpty(v) {
				return record.Record{}, false, nil
			}
			match.Set(k, v)
		}
	}
	if match.Len() == 0 {
		return record.Record{}, false, nil
	}

	query, args, err := b.SelectMatch(table, match)
	if err != nil {
		return record.Record{}, false, err
	}
	rows, err := store.QueryRecords(ctx, q, query, args...)
	if err != nil {
		return record.Record{}, false, err
	}
	if len(rows) == 0 {
		return record.Record{}, false, nil
	}
	return rows[0], true, nil
}
