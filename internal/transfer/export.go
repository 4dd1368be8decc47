package transfer

import (
	"context"
	"time"

	"github.com/OscarFredriksson/tire-logger/internal/record"
	"github.com/OscarFredriksson/tire-logger/internal/sqlbuild"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// DefaultVersion is stamped on exports when no version is configured.
const DefaultVersion = "1.0.0"

// Exporter reads a whole store into a Document.
type Exporter struct {
	store   *store.Store
	now     func() time.Time
	version string
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithExportClock sets the clock that stamps exportDate.
func WithExportClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) { e.now = now }
}

// WithVersion sets the version stamped on exports.
func WithVersion(v string) ExporterOption {
	return func(e *Exporter) {
		if v != "" {
			e.version = v
		}
	}
}

// NewExporter returns an Exporter reading from s.
func NewExporter(s *store.Store, opts ...ExporterOption) *Exporter {
	e := &Exporter{store: s, now: time.Now, version: DefaultVersion}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export reads every table, parents first, in one transaction. Rows are
// ordered by primary key, or by all columns for key-less tables, so equal
// stores export identical documents.
func (e *Exporter) Export(ctx context.Context) (*Document, error) {
	doc := &Document{
		ExportDate: store.FormatDate(e.now()),
		Version:    e.version,
		AppName:    AppName,
	}
	err := e.store.WithTx(ctx, func(q store.Querier) error {
		tables, err := readTables(ctx, q, e.store.Dialect())
		if err != nil {
			return err
		}
		doc.Tables = tables
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Snapshot fingerprints the current store contents.
func (e *Exporter) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := e.store.WithTx(ctx, func(q store.Querier) error {
		var err error
		snap, err = TakeSnapshot(ctx, q, e.store.Dialect())
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func readTables(ctx context.Context, q store.Querier, d store.Dialect) ([]Table, error) {
	names, err := store.TableNames(ctx, q, d)
	if err != nil {
		return nil, newError(ErrCodeStore, "", -1, "list tables", err)
	}
	resolver := NewKeyResolver(q, d)
	order, err := dependencyOrder(ctx, resolver, names)
	if err != nil {
		return nil, err
	}

	b := sqlbuild.New(d)
	tables := make([]Table, 0, len(order))
	for _, name := range order {
		meta, err := resolver.meta(ctx, name)
		if err != nil {
			return nil, err
		}
		orderBy := meta.keys
		if len(orderBy) == 0 {
			orderBy = meta.columnNames()
		}
		rows, err := store.QueryRecords(ctx, q, b.SelectAll(name, orderBy))
		if err != nil {
			return nil, newError(ErrCodeStore, name, -1, "read rows", err)
		}
		if rows == nil {
			rows = []record.Record{}
		}
		tables = append(tables, Table{Name: name, Rows: rows, Columns: meta.columnNames()})
	}
	return tables, nil
}
