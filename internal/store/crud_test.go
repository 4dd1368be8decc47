package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutCarGeneratesID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	car, err := s.PutCar(ctx, Car{Name: "Miata"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", car.CarID)

	cars, err := s.ListCars(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Car{{CarID: "id-1", Name: "Miata"}}, cars)
}

func TestPutCarUpdatesExisting(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.PutCar(ctx, Car{CarID: "c1", Name: "Miata"})
	require.NoError(t, err)
	_, err = s.PutCar(ctx, Car{CarID: "c1", Name: "MX-5"})
	require.NoError(t, err)

	cars, err := s.ListCars(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Car{{CarID: "c1", Name: "MX-5"}}, cars)
}

func TestPutTireRequiresCar(t *testing.T) {
	s := createTestStore(t)

	_, err := s.PutTire(context.Background(), Tire{TireID: "t1", Name: "Hoosier", CarID: "nope", AllowedLF: true})
	require.Error(t, err)
	assert.True(t, s.Dialect().IsConstraintViolation(err))
}

func TestListTiresByCar(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedGarage(t, s)
	_, err := s.PutCar(ctx, Car{CarID: "c2", Name: "Civic"})
	require.NoError(t, err)
	_, err = s.PutTire(ctx, Tire{TireID: "t9", Name: "Toyo", CarID: "c2", AllowedRR: true})
	require.NoError(t, err)

	tires, err := s.ListTires(ctx, "c2")
	require.NoError(t, err)
	require.Len(t, tires, 1)
	assert.Equal(t, Tire{TireID: "t9", Name: "Toyo", CarID: "c2", AllowedRR: true}, tires[0])

	all, err := s.ListTires(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListStintsNewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedGarage(t, s)

	_, err := s.PutStint(ctx, Stint{
		StintID: "s2", TrackID: "k1", CarID: "c1", Date: "2025-04-01T09:30:00.000Z", Laps: 5,
		LeftFront: "t1", RightFront: "t2", LeftRear: "t3", RightRear: "t4", Note: "wet",
	})
	require.NoError(t, err)

	stints, err := s.ListStints(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, stints, 2)
	assert.Equal(t, "s2", stints[0].StintID)
	assert.Equal(t, "wet", stints[0].Note)
	assert.Equal(t, "s1", stints[1].StintID)
	assert.Equal(t, "", stints[1].Note)
}

func TestDeleteCarCascades(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedGarage(t, s)

	require.NoError(t, s.DeleteCar(ctx, "c1"))

	for _, table := range []string{TableCars, TableTires, TableStints} {
		n, err := CountRows(ctx, s.DB(), s.Dialect(), table)
		require.NoError(t, err)
		assert.Zero(t, n, table)
	}
	n, err := CountRows(ctx, s.DB(), s.Dialect(), TableTracks)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteMissing(t *testing.T) {
	s := createTestStore(t)

	err := s.DeleteTrack(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFormatDate(t *testing.T) {
	ts := mustParse(t, "2025-03-10T14:00:00+02:00")
	assert.Equal(t, "2025-03-10T12:00:00.000Z", FormatDate(ts))
}
