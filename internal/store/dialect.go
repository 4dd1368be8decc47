package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/OscarFredriksson/tire-logger/internal/sqlbuild"
)

// Dialect describes a SQL backend: statement syntax, where schema
// metadata lives, and how constraint violations are reported.
type Dialect interface {
	sqlbuild.Dialect

	// Name is "sqlite" or "postgres".
	Name() string

	// IsConstraintViolation reports whether err is a uniqueness, not-null,
	// check or foreign-key violation raised by the backend.
	IsConstraintViolation(err error) bool

	tableNamesQuery() string
	tableExistsQuery() string
	columnsQuery() string
	foreignKeysQuery() string
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) QuoteIdent(name string) string { return sqlbuild.QuoteIdent(name) }

func (sqliteDialect) IsConstraintViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}

// sqlite_master rowid order is table creation order, which is also the
// parent-before-child order of the schema.
func (sqliteDialect) tableNamesQuery() string {
	return `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY rowid`
}

func (sqliteDialect) tableExistsQuery() string {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
}

func (sqliteDialect) columnsQuery() string {
	return `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`
}

func (sqliteDialect) foreignKeysQuery() string {
	return `SELECT "from", "table", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) QuoteIdent(name string) string { return sqlbuild.QuoteIdent(name) }

// Class 23 is "integrity constraint violation".
func (postgresDialect) IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}

func (postgresDialect) tableNamesQuery() string {
	return `SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`
}

func (postgresDialect) tableExistsQuery() string {
	return `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' AND table_name = $1`
}

func (postgresDialect) columnsQuery() string {
	return `SELECT c.column_name, c.data_type,
			CASE WHEN c.is_nullable = 'NO' THEN 1 ELSE 0 END,
			COALESCE(k.ordinal_position, 0)
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name, kcu.ordinal_position
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON kcu.constraint_name = tc.constraint_name
				AND kcu.table_schema = tc.table_schema
				AND kcu.table_name = tc.table_name
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = current_schema()
				AND tc.table_name = $1
		) k ON k.column_name = c.column_name
		WHERE c.table_schema = current_schema() AND c.table_name = $1
		ORDER BY c.ordinal_position`
}

func (postgresDialect) foreignKeysQuery() string {
	return `SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = current_schema()
			AND tc.table_name = $1
		ORDER BY tc.constraint_name, kcu.ordinal_position`
}

// DialectByName returns the dialect for "sqlite" or "postgres".
func DialectByName(name string) (Dialect, error) {
	switch name {
	case "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	case "postgres", "postgresql":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

// queryStrings runs a single-column query.
func queryStrings(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s.String)
	}
	return out, rows.Err()
}
