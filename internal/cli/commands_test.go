package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OscarFredriksson/tire-logger/internal/schema"
	"github.com/OscarFredriksson/tire-logger/internal/stats"
	"github.com/OscarFredriksson/tire-logger/internal/store"
	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

const garageExport = `{
  "exportDate": "2025-03-14T18:00:00.000Z",
  "version": "1.0.0",
  "data": {
    "cars": [{"carId": "c1", "name": "Miata"}],
    "tracks": [{"trackId": "k1", "name": "Knutstorp", "length": 2000}],
    "tires": [
      {"tireId": "t1", "name": "Hoosier 1", "carId": "c1", "allowedLf": true, "allowedRf": true, "allowedLr": false, "allowedRr": false},
      {"tireId": "t2", "name": "Hoosier 2", "carId": "c1", "allowedLf": true, "allowedRf": true, "allowedLr": false, "allowedRr": false},
      {"tireId": "t3", "name": "Hoosier 3", "carId": "c1", "allowedLf": false, "allowedRf": false, "allowedLr": true, "allowedRr": true},
      {"tireId": "t4", "name": "Hoosier 4", "carId": "c1", "allowedLf": false, "allowedRf": false, "allowedLr": true, "allowedRr": true}
    ],
    "stints": [
      {"stintId": "s1", "trackId": "k1", "carId": "c1", "date": "2025-03-10T12:00:00.000Z", "laps": 20,
       "leftFront": "t1", "rightFront": "t2", "leftRear": "t3", "rightRear": "t4", "note": null}
    ]
  }
}`

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// decodeData unmarshals the data field of a JSON CLI response into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func decodeError(t *testing.T, out string) CLIError {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "error", resp.Status, out)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestAddListAndUsage(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("add", "car", "--name", "Miata")
	assert.Equal(t, "Saved car id-1 (Miata)\n", out)

	env.mustRun("add", "track", "--id", "knutstorp", "--name", "Knutstorp", "--length", "2000")
	for _, tire := range [][]string{
		{"--id", "t1", "--name", "Front L", "--lf", "--rf"},
		{"--id", "t2", "--name", "Front R", "--lf", "--rf"},
		{"--id", "t3", "--name", "Rear L", "--lr", "--rr"},
		{"--id", "t4", "--name", "Rear R", "--lr", "--rr"},
	} {
		env.mustRun(append([]string{"add", "tire", "--car", "id-1"}, tire...)...)
	}

	out = env.mustRun("--format", "json", "add", "stint",
		"--car", "id-1", "--track", "knutstorp", "--laps", "20",
		"--lf", "t1", "--rf", "t2", "--lr", "t3", "--rr", "t4")
	var stint store.Stint
	decodeData(t, out, &stint)
	assert.Equal(t, "id-2", stint.StintID)
	assert.Equal(t, "2025-03-15T09:30:00.000Z", stint.Date)

	var tires []store.Tire
	decodeData(t, env.mustRun("--format", "json", "list", "tires", "--car", "id-1"), &tires)
	require.Len(t, tires, 4)

	out = env.mustRun("list", "tires", "--car", "id-1")
	assert.Contains(t, out, "POSITIONS")
	assert.Contains(t, out, "LR RR")

	var usage []stats.Usage
	decodeData(t, env.mustRun("--format", "json", "usage", "--car", "id-1"), &usage)
	require.Len(t, usage, 4)
	for _, u := range usage {
		assert.Equal(t, int64(1), u.Stints, u.TireID)
		assert.Equal(t, int64(20), u.Laps, u.TireID)
		assert.Equal(t, int64(40000), u.Distance, u.TireID)
		assert.Equal(t, "2025-03-15T09:30:00.000Z", u.LastUsed, u.TireID)
	}

	out = env.mustRun("usage", "--car", "id-1")
	assert.Contains(t, out, "40.0 km")
}

func TestAddUpdatesExistingID(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun("add", "car", "--id", "c1", "--name", "Miata")
	env.mustRun("add", "car", "--id", "c1", "--name", "Miata NB")

	var cars []store.Car
	decodeData(t, env.mustRun("--format", "json", "list", "cars"), &cars)
	assert.Equal(t, []store.Car{{CarID: "c1", Name: "Miata NB"}}, cars)
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"tire without position", []string{"add", "tire", "--car", "c1", "--name", "Spare"}, "E104"},
		{"car with empty name", []string{"add", "car"}, "E101"},
		{"track with zero length", []string{"add", "track", "--name", "Kart", "--length", "0"}, "E101"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t)

			out, err := env.run("", append([]string{"--format", "json"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			cliErr := decodeError(t, out)
			assert.Equal(t, tt.wantCode, cliErr.Code)
		})
	}
}

func TestImportCommand(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(env.dir, "backup.json")
	require.NoError(t, writeTestFile(path, garageExport))

	out := env.mustRun("--format", "json", "import", path)
	var res transfer.Result
	decodeData(t, out, &res)
	assert.Equal(t, "id-1", res.ImportID)
	assert.Equal(t, transfer.ModeMerge, res.Mode)
	assert.Equal(t, 7, res.Totals().Inserted)

	out = env.mustRun("import", path)
	assert.Contains(t, out, "Imported "+path+" (mode merge, import id-2)")
	assert.Contains(t, out, "total")
	assert.NotContains(t, out, "Dry run")

	var summary []TableSummary
	decodeData(t, env.mustRun("--format", "json", "tables"), &summary)
	assert.Contains(t, summary, TableSummary{Table: "tires", Rows: 4, PrimaryKey: []string{"tireId"}})
}

func TestImportFromStdin(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(garageExport, "--format", "json", "import", "-")
	require.NoError(t, err, out)

	var cars []store.Car
	decodeData(t, env.mustRun("--format", "json", "list", "cars"), &cars)
	assert.Equal(t, []store.Car{{CarID: "c1", Name: "Miata"}}, cars)
}

func TestImportDryRun(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(garageExport, "import", "-", "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Dry run: no changes were saved.")

	var cars []store.Car
	decodeData(t, env.mustRun("--format", "json", "list", "cars"), &cars)
	assert.Empty(t, cars)
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode string
		wantExit int
	}{
		{"invalid mode", garageExport, []string{"--mode", "upsert"}, "E203", ExitFailure},
		{"malformed json", `{"cars": [`, nil, "E201", ExitFailure},
		{"unknown table", `{"wheels": [{"id": "w1"}]}`, nil, "E204", ExitFailure},
		{"dangling reference", `{"tires": [{"tireId": "t9", "name": "Orphan", "carId": "nope", "allowedLf": true, "allowedRf": false, "allowedLr": false, "allowedRr": false}]}`, nil, "E205", ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t)

			args := append([]string{"--format", "json", "import", "-"}, tt.args...)
			out, err := env.run(tt.stdin, args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Equal(t, tt.wantCode, decodeError(t, out).Code)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		env := newCLIEnv(t)
		_, err := env.run("", "import", filepath.Join(env.dir, "nope.json"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestExportRoundTrip(t *testing.T) {
	env := newCLIEnv(t)
	env.run(garageExport, "import", "-")

	out := env.mustRun("export")
	wantPath := "tire-logger-export-2025-03-15.json"
	assert.Equal(t, "Exported 7 rows from 4 tables to "+wantPath+"\n", out)
	require.FileExists(t, filepath.Join(env.dir, wantPath))

	other := filepath.Join(env.dir, "other.db")
	out, err := env.runDB(other, "", "import", wantPath)
	require.NoError(t, err, out)

	digest := func(db string) string {
		out, err := env.runDB(db, "", "--format", "json", "status")
		require.NoError(t, err, out)
		var status struct {
			Driver   string             `json:"driver"`
			Snapshot transfer.Snapshot `json:"snapshot"`
		}
		decodeData(t, out, &status)
		assert.Equal(t, "sqlite", status.Driver)
		return status.Snapshot.Digest
	}
	assert.Equal(t, digest(env.db), digest(other))
}

func TestExportToStdout(t *testing.T) {
	env := newCLIEnv(t)
	env.run(garageExport, "import", "-")

	out := env.mustRun("export", "-")
	v, err := schema.Default()
	require.NoError(t, err)
	doc, err := transfer.ParseDocument([]byte(out), v)
	require.NoError(t, err)
	assert.Equal(t, 7, doc.RowCount())
	assert.Equal(t, "2025-03-15T09:30:00.000Z", doc.ExportDate)
}

func TestExportXLSX(t *testing.T) {
	env := newCLIEnv(t)
	env.run(garageExport, "import", "-")

	var summary ExportSummary
	decodeData(t, env.mustRun("--format", "json", "export", "--xlsx"), &summary)
	assert.Equal(t, ExportSummary{Path: "tire-logger-export-2025-03-15.xlsx", Tables: 4, Rows: 7}, summary)
	assert.FileExists(t, filepath.Join(env.dir, summary.Path))
}

func TestUsageRequiresCar(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("", "usage")
	require.Error(t, err)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}
