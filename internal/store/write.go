package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/OscarFredriksson/tire-logger/internal/record"
	"github.com/OscarFredriksson/tire-logger/internal/sqlbuild"
)

// PutCar inserts car with a new id when CarID is empty, otherwise updates
// the row with that id (inserting it if missing). Returns the stored car.
func (s *Store) PutCar(ctx context.Context, car Car) (Car, error) {
	err := s.put(ctx, &car.CarID,
		`UPDATE "cars" SET "name" = ? WHERE "carId" = ?`,
		[]any{car.Name},
		`INSERT INTO "cars" ("carId", "name") VALUES (?, ?)`,
		[]any{car.Name},
	)
	if err != nil {
		return Car{}, fmt.Errorf("put car: %w", err)
	}
	return car, nil
}

// PutTrack stores track; see PutCar for id handling.
func (s *Store) PutTrack(ctx context.Context, track Track) (Track, error) {
	err := s.put(ctx, &track.TrackID,
		`UPDATE "tracks" SET "name" = ?, "length" = ? WHERE "trackId" = ?`,
		[]any{track.Name, track.Length},
		`INSERT INTO "tracks" ("trackId", "name", "length") VALUES (?, ?, ?)`,
		[]any{track.Name, track.Length},
	)
	if err != nil {
		return Track{}, fmt.Errorf("put track: %w", err)
	}
	return track, nil
}

// PutTire stores tire; see PutCar for id handling.
func (s *Store) PutTire(ctx context.Context, tire Tire) (Tire, error) {
	allowed := []any{
		boolToInt(tire.AllowedLF), boolToInt(tire.AllowedRF),
		boolToInt(tire.AllowedLR), boolToInt(tire.AllowedRR),
	}
	err := s.put(ctx, &tire.TireID,
		`UPDATE "tires" SET "name" = ?, "carId" = ?, "allowedLf" = ?, "allowedRf" = ?, "allowedLr" = ?, "allowedRr" = ? WHERE "tireId" = ?`,
		append([]any{tire.Name, tire.CarID}, allowed...),
		`INSERT INTO "tires" ("tireId", "name", "carId", "allowedLf", "allowedRf", "allowedLr", "allowedRr") VALUES (?, ?, ?, ?, ?, ?, ?)`,
		append([]any{tire.Name, tire.CarID}, allowed...),
	)
	if err != nil {
		return Tire{}, fmt.Errorf("put tire: %w", err)
	}
	return tire, nil
}

// PutStint stores stint; see PutCar for id handling.
func (s *Store) PutStint(ctx context.Context, stint Stint) (Stint, error) {
	vals := []any{
		stint.TrackID, stint.CarID, stint.Date, stint.Laps,
		stint.LeftFront, stint.RightFront, stint.LeftRear, stint.RightRear,
		nullString(stint.Note),
	}
	err := s.put(ctx, &stint.StintID,
		`UPDATE "stints" SET "trackId" = ?, "carId" = ?, "date" = ?, "laps" = ?, "leftFront" = ?, "rightFront" = ?, "leftRear" = ?, "rightRear" = ?, "note" = ? WHERE "stintId" = ?`,
		vals,
		`INSERT INTO "stints" ("stintId", "trackId", "carId", "date", "laps", "leftFront", "rightFront", "leftRear", "rightRear", "note") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vals,
	)
	if err != nil {
		return Stint{}, fmt.Errorf("put stint: %w", err)
	}
	return stint, nil
}

// put runs the shared insert-or-update flow. update takes vals followed by
// the id; insert takes the id followed by vals. A generated id is written
// back through id.
func (s *Store) put(ctx context.Context, id *string, update string, updateVals []any, insert string, insertVals []any) error {
	return s.WithTx(ctx, func(q Querier) error {
		if *id != "" {
			res, err := q.ExecContext(ctx, s.rebind(update), append(slices.Clip(updateVals), *id)...)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n > 0 {
				return nil
			}
		} else {
			*id = s.ids.Generate()
		}
		_, err := q.ExecContext(ctx, s.rebind(insert), append([]any{*id}, insertVals...)...)
		return err
	})
}

// DeleteCar removes a car; its tires and stints cascade.
func (s *Store) DeleteCar(ctx context.Context, carID string) error {
	return s.deleteByID(ctx, "delete car", "cars", "carId", carID)
}

// DeleteTrack removes a track; its stints cascade.
func (s *Store) DeleteTrack(ctx context.Context, trackID string) error {
	return s.deleteByID(ctx, "delete track", "tracks", "trackId", trackID)
}

// DeleteTire removes a tire; stints using it cascade.
func (s *Store) DeleteTire(ctx context.Context, tireID string) error {
	return s.deleteByID(ctx, "delete tire", "tires", "tireId", tireID)
}

// DeleteStint removes a stint.
func (s *Store) DeleteStint(ctx context.Context, stintID string) error {
	return s.deleteByID(ctx, "delete stint", "stints", "stintId", stintID)
}

// ErrNotFound is returned when a delete or get matches no row.
var ErrNotFound = sql.ErrNoRows

func (s *Store) deleteByID(ctx context.Context, op, table, column, id string) error {
	query, args, err := sqlbuild.New(s.dialect).DeleteWhere(table, record.New(record.F(column, record.String(id))))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// rebind rewrites ? placeholders for dialects that number them.
func (s *Store) rebind(query string) string {
	if s.dialect.Placeholder(1) == "?" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(s.dialect.Placeholder(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
