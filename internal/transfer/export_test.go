package transfer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/OscarFredriksson/tire-logger/internal/record"
	"github.com/OscarFredriksson/tire-logger/internal/testutil"
)

func TestExport_SeededStore(t *testing.T) {
	s := testutil.OpenStore(t)
	testutil.SeedGarage(t, s)

	doc, err := NewExporter(s,
		WithExportClock(testutil.NewFixedClock(testutil.Epoch).Now),
		WithVersion("2.1.0"),
	).Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-03-15T09:30:00.000Z", doc.ExportDate)
	assert.Equal(t, "2.1.0", doc.Version)
	assert.Equal(t, AppName, doc.AppName)

	var names []string
	for _, tbl := range doc.Tables {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"cars", "tracks", "tires", "stints"}, names)

	tires, _ := doc.Table("tires")
	require.Len(t, tires.Rows, 4)
	assert.Equal(t, []string{"tireId", "name", "carId", "allowedLf", "allowedRf", "allowedLr", "allowedRr"}, tires.Rows[0].Names())
	want := record.New(
		record.F("tireId", record.String("t1")),
		record.F("name", record.String("Hoosier t1")),
		record.F("carId", record.String("c1")),
		record.F("allowedLf", record.Int(1)),
		record.F("allowedRf", record.Int(1)),
		record.F("allowedLr", record.Int(0)),
		record.F("allowedRr", record.Int(0)),
	)
	assert.True(t, want.Equal(tires.Rows[0]), "got %v", tires.Rows[0])

	stints, _ := doc.Table("stints")
	note, ok := stints.Rows[0].Get("note")
	require.True(t, ok)
	assert.True(t, record.IsNull(note))
}

func TestExport_EmptyStoreHasEveryTable(t *testing.T) {
	s := testutil.OpenStore(t)

	doc, err := newExporter(s).Export(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Tables, 4)
	for _, tbl := range doc.Tables {
		assert.NotNil(t, tbl.Rows, tbl.Name)
		assert.Empty(t, tbl.Rows, tbl.Name)
	}
	assert.Equal(t, DefaultVersion, doc.Version)
}

func TestExport_OrdersRowsByKey(t *testing.T) {
	s := testutil.OpenStore(t)
	importDoc(t, s, `{"cars":[{"carId":"c3","name":"A"},{"carId":"c1","name":"B"},{"carId":"c2","name":"C"}]}`, Options{})

	doc, err := newExporter(s).Export(context.Background())
	require.NoError(t, err)

	cars, _ := doc.Table("cars")
	var ids []string
	for _, r := range cars.Rows {
		v, _ := r.Get("carId")
		ids = append(ids, record.Format(v))
	}
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids)
}

func TestWriteXLSX(t *testing.T) {
	s := testutil.OpenStore(t)
	testutil.SeedGarage(t, s)
	doc, err := newExporter(s).Export(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"cars", "tracks", "tires", "stints"}, f.GetSheetList())

	cars, err := f.GetRows("cars")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"carId", "name"}, {"c1", "Miata"}}, cars)

	tracks, err := f.GetRows("tracks")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"trackId", "name", "length"}, {"k1", "Knutstorp", "2000"}}, tracks)
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "cars", sheetName("cars", used))
	assert.Len(t, sheetName("a_very_long_table_name_that_exceeds_the_limit", used), maxSheetName)
	assert.Equal(t, "a_very_long_table_name_that_e~2", sheetName("a_very_long_table_name_that_exceeds_it_too", used))
	assert.Equal(t, "Cars~2", sheetName("Cars", used))
}

func TestWriteXLSX_TruncatedNamesDoNotCollide(t *testing.T) {
	long := "stint_laps_recorded_at_the_track_"
	doc := &Document{Tables: []Table{
		{Name: long + "a", Rows: []record.Record{record.New(record.F("id", record.String("a1")))}},
		{Name: long + "b", Rows: []record.Record{record.New(record.F("id", record.String("b1")))}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 2)

	first, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id"}, {"a1"}}, first)

	second, err := f.GetRows(sheets[1])
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id"}, {"b1"}}, second)
}

func TestSnapshot_ChangesWithContent(t *testing.T) {
	s := testutil.OpenStore(t)
	testutil.SeedGarage(t, s)

	before := snapshot(t, s)
	cars, ok := before.Table("cars")
	require.True(t, ok)
	assert.Equal(t, 1, cars.Rows)
	assert.Len(t, before.Tables, 4)

	importDoc(t, s, `{"cars":[{"carId":"c1","name":"NA Miata"}]}`, Options{})
	after := snapshot(t, s)

	assert.NotEqual(t, before.Digest, after.Digest)
	afterCars, _ := after.Table("cars")
	assert.NotEqual(t, cars.Digest, afterCars.Digest)

	tires, _ := before.Table("tires")
	afterTires, _ := after.Table("tires")
	assert.Equal(t, tires.Digest, afterTires.Digest)
}
