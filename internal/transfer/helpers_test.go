package transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OscarFredriksson/tire-logger/internal/schema"
	"github.com/OscarFredriksson/tire-logger/internal/store"
	"github.com/OscarFredriksson/tire-logger/internal/testutil"
)

func newImporter(s *store.Store) *Importer {
	return NewImporter(s,
		WithImportIDs(testutil.NewSequentialIDs("import")),
		WithClock(testutil.NewFixedClock(testutil.Epoch).Now),
	)
}

func newExporter(s *store.Store) *Exporter {
	return NewExporter(s, WithExportClock(testutil.NewFixedClock(testutil.Epoch).Now))
}

func parse(t *testing.T, raw string) *Document {
	t.Helper()
	v, err := schema.Default()
	require.NoError(t, err)
	doc, err := ParseDocument([]byte(raw), v)
	require.NoError(t, err)
	return doc
}

func importDoc(t *testing.T, s *store.Store, raw string, opts Options) *Result {
	t.Helper()
	res, err := newImporter(s).Import(context.Background(), parse(t, raw), opts)
	require.NoError(t, err)
	return res
}

func tableResult(t *testing.T, res *Result, table string) TableResult {
	t.Helper()
	for _, tr := range res.Tables {
		if tr.Table == table {
			return tr
		}
	}
	t.Fatalf("no result for table %s in %+v", table, res.Tables)
	return TableResult{}
}

func snapshot(t *testing.T, s *store.Store) *Snapshot {
	t.Helper()
	snap, err := newExporter(s).Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func countRows(t *testing.T, s *store.Store, table string) int64 {
	t.Helper()
	n, err := store.CountRows(context.Background(), s.DB(), s.Dialect(), table)
	require.NoError(t, err)
	return n
}
