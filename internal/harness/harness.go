package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/OscarFredriksson/tire-logger/internal/logging"
	"github.com/OscarFredriksson/tire-logger/internal/store"
	"github.com/OscarFredriksson/tire-logger/internal/testutil"
	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

// Harness is the test execution engine.
// It runs scenarios with a fixed clock and sequential ids.
type Harness struct {
	store    *store.Store
	importer *transfer.Importer
	exporter *transfer.Exporter
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Run setup statements and import the seed tables
// 3. Run each step and check its expect clause
// 4. Evaluate assertions, snapshot and export the final store
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDs("row")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewFixedClock(testutil.Epoch)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	ctx = logging.WithLogger(ctx, logger)

	h := &Harness{
		store: st,
		importer: transfer.NewImporter(st,
			transfer.WithImportIDs(testutil.NewSequentialIDs("import")),
			transfer.WithClock(clock.Now),
		),
		exporter: transfer.NewExporter(st, transfer.WithExportClock(clock.Now)),
		logger:   logger,
	}

	if err := h.setup(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.runStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	actx := &AssertionContext{Ctx: ctx, Querier: st.DB(), Dialect: st.Dialect()}
	for _, msg := range EvaluateAssertions(actx, scenario.Assertions) {
		result.AddError(msg)
	}

	if result.Snapshot, err = h.exporter.Snapshot(ctx); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if result.Export, err = h.exporter.Export(ctx); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return result, nil
}

// setup runs the setup statements and imports the seed tables.
func (h *Harness) setup(ctx context.Context, scenario *Scenario) error {
	for i, stmt := range scenario.Setup {
		if _, err := h.store.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	if isZero(scenario.Seed) {
		return nil
	}

	raw, err := nodeJSON(&scenario.Seed)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	res, err := h.importer.ImportJSON(ctx, raw, transfer.Options{Mode: transfer.ModeMerge})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	h.logger.Info("seed imported", "rows", res.Totals().Rows())
	return nil
}

// runStep imports one document and records mismatches with its expect
// clause on result. Only harness failures are returned.
func (h *Harness) runStep(ctx context.Context, i int, step Step, result *Result) error {
	raw := []byte(step.Raw)
	if step.Raw == "" {
		var err error
		if raw, err = nodeJSON(&step.Document); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	mode, err := transfer.ParseMode(step.Mode)
	if err != nil {
		return fmt.Errorf("step %d: %w", i, err)
	}

	expect := step.Expect
	if expect == nil {
		expect = &Expect{}
	}

	var before *transfer.Snapshot
	if expect.StoreUnchanged {
		if before, err = h.exporter.Snapshot(ctx); err != nil {
			return fmt.Errorf("step %d: snapshot: %w", i, err)
		}
	}

	sr := StepResult{Step: i}
	res, importErr := h.importer.ImportJSON(ctx, raw, transfer.Options{
		Mode:          mode,
		ClearExisting: step.Clear,
		DryRun:        step.DryRun,
	})
	if importErr != nil {
		sr.Error = string(transfer.CodeOf(importErr))
		if sr.Error == "" {
			return fmt.Errorf("step %d: %w", i, importErr)
		}
	} else {
		sr.ImportID = res.ImportID
		sr.Tables = res.Tables
	}
	result.Steps = append(result.Steps, sr)

	if sr.Error != expect.Error {
		result.AddError(fmt.Sprintf("step %d: expected error %q, got %q (%v)", i, expect.Error, sr.Error, importErr))
	}
	checkCounts(i, expect.Tables, sr.Tables, result)

	if before != nil {
		after, err := h.exporter.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("step %d: snapshot: %w", i, err)
		}
		if after.Digest != before.Digest {
			result.AddError(fmt.Sprintf("step %d: store changed (digest %s -> %s)", i, before.Digest, after.Digest))
		}
	}

	h.logger.Info("step completed", "step", i, "import_id", sr.ImportID, "error", sr.Error)
	return nil
}

// checkCounts compares expected per-table counts. A table missing from
// the import result counts as all zero.
func checkCounts(step int, want map[string]Counts, got []transfer.TableResult, result *Result) {
	byTable := make(map[string]transfer.TableResult, len(got))
	for _, tr := range got {
		byTable[tr.Table] = tr
	}

	tables := make([]string, 0, len(want))
	for t := range want {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	for _, t := range tables {
		w, tr := want[t], byTable[t]
		g := Counts{Inserted: tr.Inserted, Updated: tr.Updated, Unchanged: tr.Unchanged, Skipped: tr.Skipped}
		if g != w {
			result.AddError(fmt.Sprintf("step %d: table %s: expected %+v, got %+v", step, t, w, g))
		}
	}
}
