package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/OscarFredriksson/tire-logger/internal/record"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// tableMeta is the store metadata needed to import one table.
type tableMeta struct {
	name    string
	columns []store.Column
	byName  map[string]store.Column
	keys    []string
}

// KeyResolver discovers primary keys and column metadata from the store.
// Results are cached for the resolver's lifetime, which is one import.
type KeyResolver struct {
	q     store.Querier
	d     store.Dialect
	cache map[string]*tableMeta
}

// NewKeyResolver returns a resolver reading metadata through q.
func NewKeyResolver(q store.Querier, d store.Dialect) *KeyResolver {
	return &KeyResolver{q: q, d: d, cache: make(map[string]*tableMeta)}
}

// PrimaryKeys returns the primary-key columns of table in declared order;
// empty when the table has no primary key. An unknown table is an
// ErrCodeUnknownTable error.
func (r *KeyResolver) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	m, err := r.meta(ctx, table)
	if err != nil {
		return nil, err
	}
	return m.keys, nil
}

func (r *KeyResolver) meta(ctx context.Context, table string) (*tableMeta, error) {
	if m, ok := r.cache[table]; ok {
		return m, nil
	}
	cols, err := store.Columns(ctx, r.q, r.d, table)
	if errors.Is(err, store.ErrNoSuchTable) {
		return nil, newError(ErrCodeUnknownTable, table, -1, "table does not exist", err)
	}
	if err != nil {
		return nil, newError(ErrCodeStore, table, -1, "read table metadata", err)
	}

	m := &tableMeta{
		name:    table,
		columns: cols,
		byName:  make(map[string]store.Column, len(cols)),
		keys:    store.KeyColumns(cols),
	}
	for _, c := range cols {
		m.byName[c.Name] = c
	}
	r.cache[table] = m
	return m, nil
}

// columnNames returns the declared column names in order.
func (m *tableMeta) columnNames() []string {
	names := make([]string, len(m.columns))
	for i, c := range m.columns {
		names[i] = c.Name
	}
	return names
}

// conform checks that every field of row is a column of the table and
// converts booleans and integers to the column's declared kind, so that
// matching and merging compare like with like.
func (m *tableMeta) conform(row record.Record) (record.Record, error) {
	var out record.Record
	for _, f := range row.Fields() {
		col, ok := m.byName[f.Name]
		if !ok {
			return record.Record{}, fmt.Errorf("unknown column %q", f.Name)
		}
		out.Set(f.Name, coerce(col, f.Value))
	}
	return out, nil
}

func coerce(col store.Column, v record.Value) record.Value {
	switch val := v.(type) {
	case record.Bool:
		if col.IsInteger() {
			if val {
				return record.Int(1)
			}
			return record.Int(0)
		}
	case record.Int:
		if col.IsBoolean() {
			return record.Bool(val != 0)
		}
	}
	return v
}
