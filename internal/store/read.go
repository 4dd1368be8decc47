package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Imported rows may carry NULLs in any non-key column, so every scan goes
// through nullable holders.

// ListCars returns all cars ordered by name.
func (s *Store) ListCars(ctx context.Context) ([]Car, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE("carId", ''), "name" FROM "cars" ORDER BY "name", "carId"`)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	var cars []Car
	for rows.Next() {
		var c Car
		var name sql.NullString
		if err := rows.Scan(&c.CarID, &name); err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		c.Name = name.String
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	return cars, nil
}

// ListTracks returns all tracks ordered by name.
func (s *Store) ListTracks(ctx context.Context) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE("trackId", ''), "name", "length" FROM "tracks" ORDER BY "name", "trackId"`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		var name sql.NullString
		var length sql.NullInt64
		if err := rows.Scan(&t.TrackID, &name, &length); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		t.Name = name.String
		t.Length = length.Int64
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return tracks, nil
}

// ListTires returns the tires of carID, or every tire when carID is empty.
func (s *Store) ListTires(ctx context.Context, carID string) ([]Tire, error) {
	query := `SELECT COALESCE("tireId", ''), "name", "carId", "allowedLf", "allowedRf", "allowedLr", "allowedRr" FROM "tires"`
	var args []any
	if carID != "" {
		query += ` WHERE "carId" = ?`
		args = append(args, carID)
	}
	query += ` ORDER BY "name", "tireId"`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list tires: %w", err)
	}
	defer rows.Close()

	var tires []Tire
	for rows.Next() {
		var t Tire
		var name sql.NullString
		var lf, rf, lr, rr sql.NullInt64
		if err := rows.Scan(&t.TireID, &name, &t.CarID, &lf, &rf, &lr, &rr); err != nil {
			return nil, fmt.Errorf("scan tire: %w", err)
		}
		t.Name = name.String
		t.AllowedLF = lf.Int64 != 0
		t.AllowedRF = rf.Int64 != 0
		t.AllowedLR = lr.Int64 != 0
		t.AllowedRR = rr.Int64 != 0
		tires = append(tires, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tires: %w", err)
	}
	return tires, nil
}

// ListStints returns the stints of carID (all when empty), newest first.
func (s *Store) ListStints(ctx context.Context, carID string) ([]Stint, error) {
	query := `SELECT COALESCE("stintId", ''), "trackId", "carId", "date", "laps", "leftFront", "rightFront", "leftRear", "rightRear", "note" FROM "stints"`
	var args []any
	if carID != "" {
		query += ` WHERE "carId" = ?`
		args = append(args, carID)
	}
	query += ` ORDER BY "date" DESC, "stintId"`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list stints: %w", err)
	}
	defer rows.Close()

	var stints []Stint
	for rows.Next() {
		var st Stint
		var date, note sql.NullString
		var laps sql.NullInt64
		if err := rows.Scan(&st.StintID, &st.TrackID, &st.CarID, &date, &laps,
			&st.LeftFront, &st.RightFront, &st.LeftRear, &st.RightRear, &note); err != nil {
			return nil, fmt.Errorf("scan stint: %w", err)
		}
		st.Date = date.String
		st.Laps = laps.Int64
		st.Note = note.String
		stints = append(stints, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stints: %w", err)
	}
	return stints, nil
}
