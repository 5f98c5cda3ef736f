package types

import (
	"time"
)

// DatedReading is a cumulative meter standing on a calendar date,
// as written by the user or snapshotted from the meter.
type DatedReading struct {
	Date  time.Time `json:"date"`
	Usage float64   `json:"usage"` // m³ or kWh, whatever the meter shows
}

// UsageReading is a cumulative meter standing on a continuous day index.
// Day 0 is the start of the first reading's year and days keep counting
// across year boundaries.
type UsageReading struct {
	Day   int     `json:"day"`
	Usage float64 `json:"usage"`
}
