package transfer

import (
	"context"
	"fmt"

	"github.com/OscarFredriksson/tire-logger/internal/record"
	"github.com/OscarFredriksson/tire-logger/internal/sqlbuild"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// TableResult counts what happened to one table's rows.
type TableResult struct {
	Table     string `json:"table"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
}

// Rows returns the number of rows accounted for.
func (r TableResult) Rows() int {
	return r.Inserted + r.Updated + r.Unchanged + r.Skipped
}

// tableImporter writes one table's rows inside the import transaction.
type tableImporter struct {
	q    store.Querier
	d    store.Dialect
	b    sqlbuild.Builder
	meta *tableMeta
	mode Mode

	// columns are the first row's fields, used for every insert.
	columns []string
}

func newTableImporter(q store.Querier, d store.Dialect, meta *tableMeta, mode Mode) *tableImporter {
	return &tableImporter{q: q, d: d, b: sqlbuild.New(d), meta: meta, mode: mode}
}

// run imports rows in order and stops at the first failure.
func (ti *tableImporter) run(ctx context.Context, rows []record.Record) (TableResult, error) {
	res := TableResult{Table: ti.meta.name}
	if len(rows) == 0 {
		return res, nil
	}
	ti.columns = rows[0].Names()

	for i, raw := range rows {
		if err := ctx.Err(); err != nil {
			return res, newError(ErrCodeStore, ti.meta.name, i, "import cancelled", err)
		}
		row, err := ti.meta.conform(raw)
		if err != nil {
			return res, newError(ErrCodeShape, ti.meta.name, i, "row does not fit table", err)
		}

		var outcome rowOutcome
		if ti.mode == ModeMerge {
			outcome, err = ti.mergeRow(ctx, row)
		} else {
			outcome, err = ti.conflictRow(ctx, row)
		}
		if err != nil {
			return res, ti.rowError(i, err)
		}
		outcome.count(&res)
	}
	return res, nil
}

type rowOutcome int

const (
	rowInserted rowOutcome = iota
	rowUpdated
	rowUnchanged
	rowSkipped
)

func (o rowOutcome) count(r *TableResult) {
	switch o {
	case rowInserted:
		r.Inserted++
	case rowUpdated:
		r.Updated++
	case rowUnchanged:
		r.Unchanged++
	case rowSkipped:
		r.Skipped++
	}
}

// mergeRow inserts an unmatched row verbatim, or overlays the row onto its
// stored counterpart and writes every non-key column back.
func (ti *tableImporter) mergeRow(ctx context.Context, row record.Record) (rowOutcome, error) {
	keys := ti.meta.keys
	existing, found, err := FindExisting(ctx, ti.q, ti.b, ti.meta.name, row, keys)
	if err != nil {
		return 0, fmt.Errorf("lookup: %w", err)
	}
	if !found {
		if err := ti.exec(ctx, ti.insert(row, sqlbuild.ConflictFail)); err != nil {
			return 0, err
		}
		return rowInserted, nil
	}
	if len(keys) == 0 {
		// A full-row match already holds every incoming value.
		return rowUnchanged, nil
	}

	merged := record.Merge(existing, row)
	var set, where record.Record
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
		v, _ := existing.Get(k)
		where.Set(k, v)
	}
	for _, f := range merged.Fields() {
		if !isKey[f.Name] {
			set.Set(f.Name, f.Value)
		}
	}

	if set.Len() > 0 {
		update := func() (string, []any, error) { return ti.b.Update(ti.meta.name, set, where) }
		if err := ti.exec(ctx, update); err != nil {
			return 0, err
		}
	}
	if len(record.Changed(existing, merged)) > 0 {
		return rowUpdated, nil
	}
	return rowUnchanged, nil
}

// conflictRow inserts with the mode's ON CONFLICT policy.
func (ti *tableImporter) conflictRow(ctx context.Context, row record.Record) (rowOutcome, error) {
	keys := ti.meta.keys
	switch {
	case ti.mode == ModeReplace && len(keys) > 0:
		_, found, err := FindExisting(ctx, ti.q, ti.b, ti.meta.name, row, keys)
		if err != nil {
			return 0, fmt.Errorf("lookup: %w", err)
		}
		if err := ti.exec(ctx, ti.insert(row, sqlbuild.ConflictReplace)); err != nil {
			return 0, err
		}
		if found {
			return rowUpdated, nil
		}
		return rowInserted, nil

	case ti.mode == ModeIgnore:
		query, args, err := ti.insert(row, sqlbuild.ConflictIgnore)()
		if err != nil {
			return 0, err
		}
		res, err := ti.q.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return rowSkipped, nil
		}
		return rowInserted, nil

	default:
		if err := ti.exec(ctx, ti.insert(row, sqlbuild.ConflictFail)); err != nil {
			return 0, err
		}
		return rowInserted, nil
	}
}

func (ti *tableImporter) insert(row record.Record, c sqlbuild.Conflict) func() (string, []any, error) {
	return func() (string, []any, error) {
		return ti.b.Insert(ti.meta.name, ti.columns, row, c, ti.meta.keys)
	}
}

func (ti *tableImporter) exec(ctx context.Context, build func() (string, []any, error)) error {
	query, args, err := build()
	if err != nil {
		return err
	}
	_, err = ti.q.ExecContext(ctx, query, args...)
	return err
}

func (ti *tableImporter) rowError(row int, err error) *Error {
	if ti.d.IsConstraintViolation(err) {
		return newError(ErrCodeConstraint, ti.meta.name, row, "constraint violation", err)
	}
	return newError(ErrCodeStore, ti.meta.name, row, "write row", err)
}
