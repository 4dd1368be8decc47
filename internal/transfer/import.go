package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/OscarFredriksson/tire-logger/internal/logging"
	"github.com/OscarFredriksson/tire-logger/internal/schema"
	"github.com/OscarFredriksson/tire-logger/internal/sqlbuild"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// errDryRun aborts the transaction of a dry run after all rows are written.
var errDryRun = errors.New("dry run")

// Result summarizes one import.
type Result struct {
	ImportID string           `json:"importId"`
	Mode     Mode             `json:"mode"`
	DryRun   bool             `json:"dryRun"`
	Cleared  map[string]int64 `json:"cleared,omitempty"`
	Tables   []TableResult    `json:"tables"`
	Duration time.Duration    `json:"durationNs"`
}

// Totals sums the per-table counts.
func (r *Result) Totals() TableResult {
	var t TableResult
	for _, tr := range r.Tables {
		t.Inserted += tr.Inserted
		t.Updated += tr.Updated
		t.Unchanged += tr.Unchanged
		t.Skipped += tr.Skipped
	}
	return t
}

// Importer applies documents to a store.
type Importer struct {
	store *store.Store
	ids   store.IDGenerator
	now   func() time.Time
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithImportIDs sets the generator for import ids.
func WithImportIDs(g store.IDGenerator) ImporterOption {
	return func(im *Importer) { im.ids = g }
}

// WithClock sets the clock used to time imports.
func WithClock(now func() time.Time) ImporterOption {
	return func(im *Importer) { im.now = now }
}

// NewImporter returns an Importer writing to s.
func NewImporter(s *store.Store, opts ...ImporterOption) *Importer {
	im := &Importer{store: s, ids: store.UUIDv7Generator{}, now: time.Now}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportJSON parses raw with the default validator and imports it.
func (im *Importer) ImportJSON(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	if _, err := opts.normalized(); err != nil {
		return nil, err
	}
	v, err := schema.Default()
	if err != nil {
		return nil, newError(ErrCodeStore, "", -1, "load import schema", err)
	}
	doc, err := ParseDocument(raw, v)
	if err != nil {
		return nil, err
	}
	return im.Import(ctx, doc, opts)
}

// Import applies doc in a single transaction. Either every row is applied
// or, on the first failure, none is. Tables are processed parents first.
// A dry run performs every statement and then rolls back.
func (im *Importer) Import(ctx context.Context, doc *Document, opts Options) (*Result, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}

	id := im.ids.Generate()
	ctx = logging.WithImportID(ctx, id)
	logger := logging.FromContext(ctx)
	start := im.now()

	res := &Result{ImportID: id, Mode: opts.Mode, DryRun: opts.DryRun, Tables: []TableResult{}}
	logger.Info("import started",
		"mode", opts.Mode,
		"tables", len(doc.Tables),
		"rows", doc.RowCount(),
		"clear", opts.ClearExisting,
		"dry_run", opts.DryRun,
	)

	err = im.store.WithTx(ctx, func(q store.Querier) error {
		return im.apply(ctx, q, doc, opts, res)
	})
	res.Duration = im.now().Sub(start)

	switch {
	case errors.Is(err, errDryRun):
		logger.Info("import dry run rolled back", "duration", res.Duration)
		return res, nil
	case err != nil:
		var te *Error
		if !errors.As(err, &te) {
			err = newError(ErrCodeStore, "", -1, "import transaction", err)
		}
		logger.Error("import rolled back", "error", err)
		return nil, err
	}

	totals := res.Totals()
	logger.Info("import committed",
		"inserted", totals.Inserted,
		"updated", totals.Updated,
		"unchanged", totals.Unchanged,
		"skipped", totals.Skipped,
		"duration", res.Duration,
	)
	return res, nil
}

func (im *Importer) apply(ctx context.Context, q store.Querier, doc *Document, opts Options, res *Result) error {
	d := im.store.Dialect()
	resolver := NewKeyResolver(q, d)

	var names []string
	for _, t := range doc.Tables {
		if len(t.Rows) == 0 && !opts.ClearExisting {
			continue
		}
		if _, err := resolver.meta(ctx, t.Name); err != nil {
			return err
		}
		names = append(names, t.Name)
	}

	order, err := dependencyOrder(ctx, resolver, names)
	if err != nil {
		return err
	}

	if opts.ClearExisting {
		if err := clearTables(ctx, q, d, reversed(order), res); err != nil {
			return err
		}
	}

	for _, name := range order {
		t, _ := doc.Table(name)
		if len(t.Rows) == 0 {
			continue
		}
		meta, err := resolver.meta(ctx, name)
		if err != nil {
			return err
		}
		tr, err := newTableImporter(q, d, meta, opts.Mode).run(ctx, t.Rows)
		if err != nil {
			return err
		}
		logging.WithFields(ctx, "table", name).Debug("table imported",
			"inserted", tr.Inserted,
			"updated", tr.Updated,
			"unchanged", tr.Unchanged,
			"skipped", tr.Skipped,
		)
		res.Tables = append(res.Tables, tr)
	}

	if opts.DryRun {
		return errDryRun
	}
	return nil
}

func clearTables(ctx context.Context, q store.Querier, d store.Dialect, tables []string, res *Result) error {
	b := sqlbuild.New(d)
	res.Cleared = make(map[string]int64, len(tables))
	for _, t := range tables {
		r, err := q.ExecContext(ctx, b.DeleteAll(t))
		if err != nil {
			if d.IsConstraintViolation(err) {
				return newError(ErrCodeConstraint, t, -1, "clear table", err)
			}
			return newError(ErrCodeStore, t, -1, "clear table", err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			return newError(ErrCodeStore, t, -1, "clear table", err)
		}
		res.Cleared[t] = n
	}
	return nil
}
