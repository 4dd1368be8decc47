package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrNoSuchTable is returned by metadata lookups for an unknown table.
var ErrNoSuchTable = errors.New("no such table")

// Column describes one table column.
type Column struct {
	Name    string
	Type    string // declared type, e.g. "varchar", "int"
	NotNull bool
	// PrimaryKey is the 1-based position within the primary key, 0 if the
	// column is not part of it.
	PrimaryKey int
}

// IsInteger reports whether the declared type has integer affinity.
func (c Column) IsInteger() bool {
	return strings.Contains(strings.ToUpper(c.Type), "INT")
}

// IsBoolean reports whether the declared type is boolean.
func (c Column) IsBoolean() bool {
	return strings.Contains(strings.ToUpper(c.Type), "BOOL")
}

// ForeignKey is one referencing column of a table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableNames lists user tables. SQLite returns creation order,
// PostgreSQL alphabetical order.
func TableNames(ctx context.Context, q Querier, d Dialect) ([]string, error) {
	names, err := queryStrings(ctx, q, d.tableNamesQuery())
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

// TableExists reports whether table exists.
func TableExists(ctx context.Context, q Querier, d Dialect, table string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, d.tableExistsQuery(), table).Scan(&n); err != nil {
		return false, fmt.Errorf("lookup table %s: %w", table, err)
	}
	return n > 0, nil
}

// Columns returns the columns of table in declaration order.
func Columns(ctx context.Context, q Querier, d Dialect, table string) ([]Column, error) {
	ok, err := TableExists(ctx, q, d, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchTable, table)
	}

	rows, err := q.QueryContext(ctx, d.columnsQuery(), table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		var notNull int
		if err := rows.Scan(&c.Name, &c.Type, &notNull, &c.PrimaryKey); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		c.NotNull = notNull != 0
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	return cols, nil
}

// PrimaryKeys returns the primary-key columns of table in key order.
// The result is empty (not an error) for a table without a primary key.
func PrimaryKeys(ctx context.Context, q Querier, d Dialect, table string) ([]string, error) {
	cols, err := Columns(ctx, q, d, table)
	if err != nil {
		return nil, err
	}
	return KeyColumns(cols), nil
}

// KeyColumns extracts primary-key column names ordered by key position.
func KeyColumns(cols []Column) []string {
	var pk []Column
	for _, c := range cols {
		if c.PrimaryKey > 0 {
			pk = append(pk, c)
		}
	}
	slices.SortFunc(pk, func(a, b Column) int { return a.PrimaryKey - b.PrimaryKey })

	names := make([]string, len(pk))
	for i, c := range pk {
		names[i] = c.Name
	}
	return names
}

// ForeignKeys returns the referencing columns of table.
func ForeignKeys(ctx context.Context, q Querier, d Dialect, table string) ([]ForeignKey, error) {
	rows, err := q.QueryContext(ctx, d.foreignKeysQuery(), table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		var to *string
		if err := rows.Scan(&fk.Column, &fk.RefTable, &to); err != nil {
			return nil, fmt.Errorf("scan foreign key of %s: %w", table, err)
		}
		if to != nil {
			fk.RefColumn = *to
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", table, err)
	}
	return fks, nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, q Querier, d Dialect, table string) (int64, error) {
	var n int64
	query := "SELECT COUNT(*) FROM " + d.QuoteIdent(table)
	if err := q.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
