package store

import (
	"context"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNamesCreationOrder(t *testing.T) {
	s := createTestStore(t)

	names, err := TableNames(context.Background(), s.DB(), s.Dialect())
	require.NoError(t, err)
	assert.Equal(t, []string{"cars", "tracks", "tires", "stints"}, names)
}

func TestPrimaryKeys(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	pk, err := PrimaryKeys(ctx, s.DB(), s.Dialect(), "tires")
	require.NoError(t, err)
	assert.Equal(t, []string{"tireId"}, pk)
}

func TestPrimaryKeysComposite(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.DB().Exec(`CREATE TABLE setups (b TEXT, a TEXT, v INT, PRIMARY KEY (a, b))`)
	require.NoError(t, err)

	pk, err := PrimaryKeys(ctx, s.DB(), s.Dialect(), "setups")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, pk, "key order, not column order")
}

func TestPrimaryKeysNone(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.DB().Exec(`CREATE TABLE lap_log (stintId TEXT, lap INT, seconds REAL)`)
	require.NoError(t, err)

	pk, err := PrimaryKeys(ctx, s.DB(), s.Dialect(), "lap_log")
	require.NoError(t, err)
	assert.Empty(t, pk)
}

func TestPrimaryKeysUnknownTable(t *testing.T) {
	s := createTestStore(t)

	_, err := PrimaryKeys(context.Background(), s.DB(), s.Dialect(), "wheels")
	assert.ErrorIs(t, err, ErrNoSuchTable)
}

func TestColumns(t *testing.T) {
	s := createTestStore(t)

	cols, err := Columns(context.Background(), s.DB(), s.Dialect(), "tracks")
	require.NoError(t, err)
	require.Len(t, cols, 3)

	assert.Equal(t, "trackId", cols[0].Name)
	assert.Equal(t, 1, cols[0].PrimaryKey)
	assert.Equal(t, "length", cols[2].Name)
	assert.True(t, cols[2].IsInteger())
	assert.False(t, cols[1].IsInteger())
}

func TestForeignKeys(t *testing.T) {
	s := createTestStore(t)

	fks, err := ForeignKeys(context.Background(), s.DB(), s.Dialect(), "stints")
	require.NoError(t, err)

	refs := map[string]string{}
	for _, fk := range fks {
		refs[fk.Column] = fk.RefTable
	}
	assert.Equal(t, map[string]string{
		"trackId":    "tracks",
		"carId":      "cars",
		"leftFront":  "tires",
		"rightFront": "tires",
		"leftRear":   "tires",
		"rightRear":  "tires",
	}, refs)

	fks, err = ForeignKeys(context.Background(), s.DB(), s.Dialect(), "cars")
	require.NoError(t, err)
	assert.Empty(t, fks)
}

func TestIsConstraintViolation(t *testing.T) {
	s := createTestStore(t)
	d := s.Dialect()

	_, err := s.DB().Exec(`INSERT INTO tires (tireId, name, carId) VALUES ('t1', 'x', 'missing')`)
	require.Error(t, err)
	assert.True(t, d.IsConstraintViolation(err))

	assert.False(t, d.IsConstraintViolation(assert.AnError))
	assert.True(t, d.IsConstraintViolation(sqlite3.Error{Code: sqlite3.ErrConstraint}))
}

func TestDialectByName(t *testing.T) {
	d, err := DialectByName("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
	assert.Equal(t, "$2", d.Placeholder(2))

	d, err = DialectByName("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "?", d.Placeholder(2))

	_, err = DialectByName("oracle")
	assert.Error(t, err)
}

func TestQueryRecords(t *testing.T) {
	s := createTestStore(t)
	seedGarage(t, s)

	recs, err := QueryRecords(context.Background(), s.DB(), `SELECT * FROM tracks`)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"trackId", "name", "length"}, recs[0].Names())
	assert.Equal(t, map[string]any{"trackId": "k1", "name": "Knutstorp", "length": int64(2000)}, recs[0].Map())
}
