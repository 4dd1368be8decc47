// Package stats derives per-tire usage figures from logged stints.
package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// Usage is the accumulated wear of one tire.
type Usage struct {
	TireID string `json:"tireId"`
	Name   string `json:"name"`
	Stints int64  `json:"stints"`
	Laps   int64  `json:"laps"`
	// Distance is laps times track length, in metres.
	Distance int64 `json:"distance"`
	// LastUsed is the date of the most recent stint, "" if never used.
	LastUsed string `json:"lastUsed,omitempty"`
}

// TireUsage sums every stint that mounted a tire of carID, in any wheel
// position. A stint counts once per tire even when the tire sits on more
// than one wheel. Tracks without a length contribute no distance.
func TireUsage(ctx context.Context, q store.Querier, d store.Dialect, carID string) ([]Usage, error) {
	query := fmt.Sprintf(`SELECT t."tireId", COALESCE(t."name", ''),
			COUNT(s."stintId"),
			COALESCE(SUM(s."laps"), 0),
			COALESCE(SUM(s."laps" * COALESCE(k."length", 0)), 0),
			MAX(s."date")
		FROM "tires" t
		LEFT JOIN "stints" s ON t."tireId" IN (s."leftFront", s."rightFront", s."leftRear", s."rightRear")
		LEFT JOIN "tracks" k ON k."trackId" = s."trackId"
		WHERE t."carId" = %s
		GROUP BY t."tireId", t."name"
		ORDER BY t."name", t."tireId"`, d.Placeholder(1))

	rows, err := q.QueryContext(ctx, query, carID)
	if err != nil {
		return nil, fmt.Errorf("tire usage: %w", err)
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		var last sql.NullString
		if err := rows.Scan(&u.TireID, &u.Name, &u.Stints, &u.Laps, &u.Distance, &last); err != nil {
			return nil, fmt.Errorf("scan tire usage: %w", err)
		}
		u.LastUsed = last.String
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tire usage: %w", err)
	}
	return out, nil
}

// FormatDistance renders metres as "230 m" below a kilometre and as
// kilometres with one decimal from there on. Halves round up.
func FormatDistance(metres int64) string {
	if metres >= 1000 {
		tenths := (metres + 50) / 100
		return fmt.Sprintf("%d.%d km", tenths/10, tenths%10)
	}
	return fmt.Sprintf("%d m", metres)
}
