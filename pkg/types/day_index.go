package types

import (
	"sort"
	"time"
)

// ToUsageReadings converts dated readings to day indexed ones for a model
// year of daysPerYear days. Readings are sorted by date, the first reading's
// year becomes year 0 and every later year adds daysPerYear. Leap days are
// folded onto the day before them. When two readings land on the same day
// index the later one wins.
func ToUsageReadings(dated []DatedReading, daysPerYear int) []UsageReading {
	if len(dated) == 0 {
		return nil
	}
	sorted := append([]DatedReading(nil), dated...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	firstYear := sorted[0].Date.Year()
	readings := make([]UsageReading, 0, len(sorted))
	for _, r := range sorted {
		day := (r.Date.Year()-firstYear)*daysPerYear + DayOfModelYear(r.Date, daysPerYear)
		if n := len(readings); n > 0 && readings[n-1].Day == day {
			readings[n-1].Usage = r.Usage
			continue
		}
		readings = append(readings, UsageReading{Day: day, Usage: r.Usage})
	}
	return readings
}

// DayOfModelYear returns the 1-based day of year with Feb 29 and every
// day after it in a leap year shifted back by one, capped at daysPerYear.
func DayOfModelYear(date time.Time, daysPerYear int) int {
	day := date.YearDay()
	if isLeap(date.Year()) && day > 59 {
		day--
	}
	if day > daysPerYear {
		day = daysPerYear
	}
	return day
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
