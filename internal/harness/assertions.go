package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/OscarFredriksson/tire-logger/internal/record"
	"github.com/OscarFredriksson/tire-logger/internal/sqlbuild"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Table    string
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s on %s\n", e.Type, e.Table)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext provides database access for evaluating assertions.
type AssertionContext struct {
	Ctx     context.Context
	Querier store.Querier
	Dialect store.Dialect
}

// EvaluateAssertions evaluates all assertions against the store.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(actx *AssertionContext, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRow:
			err = assertRow(actx, assertion)
		case AssertRowCount:
			err = assertRowCount(actx, assertion)
		case AssertAbsent:
			assertion.Count = 0
			err = assertRowCount(actx, assertion)
			if ae, ok := err.(*AssertionError); ok {
				ae.Type = AssertAbsent
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertRow checks that exactly one row matches Where and that it holds
// every Expect field (subset semantics).
func assertRow(actx *AssertionContext, a Assertion) error {
	where, err := record.FromMap(a.Where)
	if err != nil {
		return fmt.Errorf("%s where: %w", a.Table, err)
	}

	n, err := countRows(actx, a.Table, where)
	if err != nil {
		return err
	}
	if n != 1 {
		return &AssertionError{
			Type:     AssertRow,
			Table:    a.Table,
			Expected: fmt.Sprintf("exactly one row where %s", formatWhere(a.Where)),
			Actual:   fmt.Sprintf("%d rows", n),
		}
	}

	b := sqlbuild.New(actx.Dialect)
	var rows []record.Record
	if where.Len() == 0 {
		rows, err = store.QueryRecords(actx.Ctx, actx.Querier, b.SelectAll(a.Table, nil))
	} else {
		query, args, qerr := b.SelectMatch(a.Table, where)
		if qerr != nil {
			return qerr
		}
		rows, err = store.QueryRecords(actx.Ctx, actx.Querier, query, args...)
	}
	if err != nil {
		return fmt.Errorf("query %s: %w", a.Table, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("query %s: row vanished", a.Table)
	}
	actual := rows[0]

	for _, key := range sortedKeys(a.Expect) {
		want, err := record.FromAny(a.Expect[key])
		if err != nil {
			return fmt.Errorf("%s expect %q: %w", a.Table, key, err)
		}
		got, ok := actual.Get(key)
		if !ok {
			return &AssertionError{
				Type:     AssertRow,
				Table:    a.Table,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("columns %v", actual.Names()),
			}
		}
		if !stateValuesEqual(want, got) {
			return &AssertionError{
				Type:     AssertRow,
				Table:    a.Table,
				Expected: fmt.Sprintf("field %q = %s", key, describe(want)),
				Actual:   fmt.Sprintf("field %q = %s", key, describe(got)),
			}
		}
	}
	return nil
}

// assertRowCount checks how many rows match Where.
func assertRowCount(actx *AssertionContext, a Assertion) error {
	where, err := record.FromMap(a.Where)
	if err != nil {
		return fmt.Errorf("%s where: %w", a.Table, err)
	}
	n, err := countRows(actx, a.Table, where)
	if err != nil {
		return err
	}
	if n != int64(a.Count) {
		return &AssertionError{
			Type:     AssertRowCount,
			Table:    a.Table,
			Expected: fmt.Sprintf("%d rows where %s", a.Count, formatWhere(a.Where)),
			Actual:   fmt.Sprintf("%d rows", n),
		}
	}
	return nil
}

func countRows(actx *AssertionContext, table string, where record.Record) (int64, error) {
	query, args := sqlbuild.New(actx.Dialect).CountMatch(table, where)
	var n int64
	if err := actx.Querier.QueryRowContext(actx.Ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// stateValuesEqual compares an expected value with a stored one. SQLite
// stores booleans as integers, so Bool matches Int 0/1.
func stateValuesEqual(expected, actual record.Value) bool {
	if b, ok := expected.(record.Bool); ok {
		if i, ok := actual.(record.Int); ok {
			return bool(b) == (i != 0)
		}
	}
	return record.Equal(expected, actual)
}

func describe(v record.Value) string {
	if record.IsNull(v) {
		return "null"
	}
	return fmt.Sprintf("%s (%T)", record.Format(v), v)
}

// formatWhere creates a human-readable description of WHERE conditions.
func formatWhere(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	parts := make([]string, 0, len(where))
	for _, k := range sortedKeys(where) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
