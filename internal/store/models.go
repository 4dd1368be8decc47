package store

import "time"

// Table names of the tire-logger schema, parents before children.
const (
	TableCars   = "cars"
	TableTracks = "tracks"
	TableTires  = "tires"
	TableStints = "stints"
)

// DateLayout is the stint date format: ISO-8601 UTC with milliseconds,
// as written by the desktop application.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatDate renders t in DateLayout (UTC).
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Car is a vehicle that owns tires and stints.
type Car struct {
	CarID string `json:"carId"`
	Name  string `json:"name"`
}

// Track is a circuit; Length is in metres.
type Track struct {
	TrackID string `json:"trackId"`
	Name    string `json:"name"`
	Length  int64  `json:"length"`
}

// Tire belongs to one car and may be mounted on the allowed positions.
type Tire struct {
	TireID    string `json:"tireId"`
	Name      string `json:"name"`
	CarID     string `json:"carId"`
	AllowedLF bool   `json:"allowedLf"`
	AllowedRF bool   `json:"allowedRf"`
	AllowedLR bool   `json:"allowedLr"`
	AllowedRR bool   `json:"allowedRr"`
}

// Stint is one driving session with the four mounted tires.
type Stint struct {
	StintID    string `json:"stintId"`
	TrackID    string `json:"trackId"`
	CarID      string `json:"carId"`
	Date       string `json:"date"`
	Laps       int64  `json:"laps"`
	LeftFront  string `json:"leftFront"`
	RightFront string `json:"rightFront"`
	LeftRear   string `json:"leftRear"`
	RightRear  string `json:"rightRear"`
	Note       string `json:"note"`
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
