package seasonal

import "fmt"

// MonthsPerYear is fixed; alternate calendars only change month lengths.
const MonthsPerYear = 12

// Calendar describes how many days each month of a modelled year has.
// The zero value is not usable, use NonLeapYear or NewCalendar.
type Calendar struct {
	days [MonthsPerYear]int
}

// NonLeapYear is the calendar every fit and integral uses by default.
// Leap days are not modelled.
var NonLeapYear = Calendar{days: [MonthsPerYear]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}}

// NewCalendar builds a calendar from per-month day counts.
func NewCalendar(days [MonthsPerYear]int) (Calendar, error) {
	for month, n := range days {
		if n <= 0 {
			return Calendar{}, fmt.Errorf("%w: month %d has %d days", ErrInvalidCalendar, month+1, n)
		}
	}
	return Calendar{days: days}, nil
}

func (c Calendar) Months() int {
	return MonthsPerYear
}

func (c Calendar) DaysInMonth(month int) int {
	return c.days[month]
}

// DaysPerYear is the period of every model bound to this calendar.
func (c Calendar) DaysPerYear() int {
	return c.daysBefore(MonthsPerYear)
}

// FirstDay returns the 1-based day of year the month starts on.
func (c Calendar) FirstDay(month int) int {
	return c.daysBefore(month) + 1
}

// daysBefore sums the lengths of all months preceding month.
func (c Calendar) daysBefore(month int) int {
	total := 0
	for _, n := range c.days[:month] {
		total += n
	}
	return total
}

func (c Calendar) valid() bool {
	return c.days[0] > 0
}

func checkMonth(month int) error {
	if month < 0 || month >= MonthsPerYear {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return nil
}
