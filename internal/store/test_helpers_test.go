package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

// seqIDs hands out "id-1", "id-2", ...
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(&seqIDs{}))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedGarage inserts one car, one track, four tires and one stint.
func seedGarage(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	mustPut := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	_, err := s.PutCar(ctx, Car{CarID: "c1", Name: "Miata"})
	mustPut(err)
	_, err = s.PutTrack(ctx, Track{TrackID: "k1", Name: "Knutstorp", Length: 2000})
	mustPut(err)
	for _, id := range []string{"t1", "t2", "t3", "t4"} {
		_, err = s.PutTire(ctx, Tire{TireID: id, Name: "Hoosier " + id, CarID: "c1", AllowedLF: true, AllowedRF: true})
		mustPut(err)
	}
	_, err = s.PutStint(ctx, Stint{
		StintID: "s1", TrackID: "k1", CarID: "c1", Date: "2025-03-10T12:00:00.000Z", Laps: 20,
		LeftFront: "t1", RightFront: "t2", LeftRear: "t3", RightRear: "t4",
	})
	mustPut(err)
}
