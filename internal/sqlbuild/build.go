// Package sqlbuild renders the parameterized statements used by the import
// and export paths.
//
// All values are bound as parameters; identifiers are quoted by the dialect.
// Statements are dialect-neutral apart from placeholders and quoting, so the
// same builder serves SQLite and PostgreSQL.
package sqlbuild

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OscarFredriksson/tire-logger/internal/record"
)

// Dialect supplies the two syntax differences the builder cares about.
type Dialect interface {
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string
	// QuoteIdent quotes a table or column name.
	QuoteIdent(name string) string
}

// Conflict selects what an INSERT does when it collides with an existing key.
type Conflict int

const (
	// ConflictFail issues a plain INSERT; a collision is a store error.
	ConflictFail Conflict = iota
	// ConflictIgnore skips the colliding row.
	ConflictIgnore
	// ConflictReplace overwrites the colliding row's non-key columns.
	ConflictReplace
)

func (c Conflict) String() string {
	switch c {
	case ConflictFail:
		return "fail"
	case ConflictIgnore:
		return "ignore"
	case ConflictReplace:
		return "replace"
	default:
		return fmt.Sprintf("Conflict(%d)", int(c))
	}
}

// ErrNoColumns is returned when a statement would have no columns.
var ErrNoColumns = errors.New("no columns")

// Builder renders statements for one dialect.
type Builder struct {
	d Dialect
}

// New returns a Builder for d.
func New(d Dialect) Builder {
	return Builder{d: d}
}

// args collects bind parameters and hands out placeholders.
type args struct {
	d    Dialect
	vals []any
}

func (a *args) add(v any) string {
	a.vals = append(a.vals, v)
	return a.d.Placeholder(len(a.vals))
}

// where renders an AND of equality terms. Null values compare with IS NULL
// since "= NULL" never matches.
func (b Builder) where(match record.Record, a *args) string {
	terms := make([]string, 0, match.Len())
	for _, f := range match.Fields() {
		col := b.d.QuoteIdent(f.Name)
		if record.IsNull(f.Value) {
			terms = append(terms, col+" IS NULL")
			continue
		}
		terms = append(terms, col+" = "+a.add(record.Any(f.Value)))
	}
	return strings.Join(terms, " AND ")
}

// SelectMatch renders a lookup of at most one row whose columns equal every
// field of match.
func (b Builder) SelectMatch(table string, match record.Record) (string, []any, error) {
	if match.Len() == 0 {
		return "", nil, fmt.Errorf("select %s: %w", table, ErrNoColumns)
	}
	a := &args{d: b.d}
	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1", b.d.QuoteIdent(table), b.where(match, a))
	return sql, a.vals, nil
}

// SelectAll renders a full-table read ordered by orderBy.
func (b Builder) SelectAll(table string, orderBy []string) string {
	sql := "SELECT * FROM " + b.d.QuoteIdent(table)
	if len(orderBy) > 0 {
		sql += " ORDER BY " + b.quoteList(orderBy)
	}
	return sql
}

// Insert renders an INSERT of row restricted to columns. Columns missing
// from row bind NULL. keys are the table's primary-key columns and are only
// consulted for ConflictReplace.
func (b Builder) Insert(table string, columns []string, row record.Record, conflict Conflict, keys []string) (string, []any, error) {
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("insert %s: %w", table, ErrNoColumns)
	}
	a := &args{d: b.d}
	marks := make([]string, len(columns))
	for i, col := range columns {
		v, _ := row.Get(col)
		marks[i] = a.add(record.Any(v))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)", b.d.QuoteIdent(table), b.quoteList(columns), strings.Join(marks, ", "))

	switch conflict {
	case ConflictIgnore:
		sb.WriteString(" ON CONFLICT DO NOTHING")
	case ConflictReplace:
		if len(keys) == 0 {
			// No key to conflict on; the row is simply inserted.
			break
		}
		set := nonKey(columns, keys)
		fmt.Fprintf(&sb, " ON CONFLICT (%s) ", b.quoteList(keys))
		if len(set) == 0 {
			sb.WriteString("DO NOTHING")
			break
		}
		assigns := make([]string, len(set))
		for i, col := range set {
			q := b.d.QuoteIdent(col)
			assigns[i] = q + " = excluded." + q
		}
		sb.WriteString("DO UPDATE SET " + strings.Join(assigns, ", "))
	}
	return sb.String(), a.vals, nil
}

// Update renders an UPDATE setting every field of set on the row matched by
// keys.
func (b Builder) Update(table string, set, keys record.Record) (string, []any, error) {
	if set.Len() == 0 {
		return "", nil, fmt.Errorf("update %s: %w", table, ErrNoColumns)
	}
	if keys.Len() == 0 {
		return "", nil, fmt.Errorf("update %s: no key columns", table)
	}
	a := &args{d: b.d}
	assigns := make([]string, 0, set.Len())
	for _, f := range set.Fields() {
		assigns = append(assigns, b.d.QuoteIdent(f.Name)+" = "+a.add(record.Any(f.Value)))
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s", b.d.QuoteIdent(table), strings.Join(assigns, ", "), b.where(keys, a))
	return sql, a.vals, nil
}

// DeleteWhere renders a DELETE of the rows matching keys.
func (b Builder) DeleteWhere(table string, keys record.Record) (string, []any, error) {
	if keys.Len() == 0 {
		return "", nil, fmt.Errorf("delete %s: %w", table, ErrNoColumns)
	}
	a := &args{d: b.d}
	return fmt.Sprintf("DELETE FROM %s WHERE %s", b.d.QuoteIdent(table), b.where(keys, a)), a.vals, nil
}

// DeleteAll renders a DELETE of every row.
func (b Builder) DeleteAll(table string) string {
	return "DELETE FROM " + b.d.QuoteIdent(table)
}

// Count renders a row count.
func (b Builder) Count(table string) string {
	return "SELECT COUNT(*) FROM " + b.d.QuoteIdent(table)
}

// CountMatch renders a count of the rows whose columns equal every field of
// match. An empty match counts the whole table.
func (b Builder) CountMatch(table string, match record.Record) (string, []any) {
	if match.Len() == 0 {
		return b.Count(table), nil
	}
	a := &args{d: b.d}
	return b.Count(table) + " WHERE " + b.where(match, a), a.vals
}

func (b Builder) quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = b.d.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func nonKey(columns, keys []string) []string {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var out []string
	for _, c := range columns {
		if !isKey[c] {
			out = append(out, c)
		}
	}
	return out
}

// QuoteIdent quotes name with double quotes, doubling embedded quotes.
// Both SQLite and PostgreSQL accept this form.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
