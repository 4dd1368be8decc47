// Package testutil holds deterministic clocks, id generators and store
// fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// OpenStore opens a file-backed SQLite store in a temp dir and closes it
// when the test ends.
func OpenStore(t testing.TB, opts ...store.Option) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "tirelog.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// SeedGarage stores car c1 "Miata", track k1 "Knutstorp" (2000 m), tires
// t1-t4 for c1 and stint s1 on all four of them (20 laps).
func SeedGarage(t testing.TB, s *store.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.PutCar(ctx, store.Car{CarID: "c1", Name: "Miata"})
	require.NoError(t, err)
	_, err = s.PutTrack(ctx, store.Track{TrackID: "k1", Name: "Knutstorp", Length: 2000})
	require.NoError(t, err)
	for _, id := range []string{"t1", "t2", "t3", "t4"} {
		_, err = s.PutTire(ctx, store.Tire{TireID: id, Name: "Hoosier " + id, CarID: "c1", AllowedLF: true, AllowedRF: true})
		require.NoError(t, err)
	}
	_, err = s.PutStint(ctx, store.Stint{
		StintID: "s1", TrackID: "k1", CarID: "c1", Date: "2025-03-10T12:00:00.000Z", Laps: 20,
		LeftFront: "t1", RightFront: "t2", LeftRear: "t3", RightRear: "t4",
	})
	require.NoError(t, err)
}

// Exec runs statements against s, failing the test on error.
func Exec(t testing.TB, s *store.Store, stmts ...string) {
	t.Helper()
	for _, q := range stmts {
		_, err := s.DB().ExecContext(context.Background(), q)
		require.NoError(t, err, q)
	}
}
