package seasonal

import (
	"gonum.org/v1/gonum/integrate"
)

// IntegralOverMonth integrates f over one month with the trapezoidal rule,
// sampling every integer day from the month's first day up to the first day
// of the following month.
func IntegralOverMonth(f DayFunc, month int, cal Calendar) (float64, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	if !cal.valid() {
		return 0, ErrInvalidCalendar
	}
	firstDay := cal.FirstDay(month)
	lastDay := cal.daysBefore(month+1) + 1
	return trapezoid(f, firstDay, lastDay), nil
}

// CumulativeIntegralUpToMonth integrates f from day 1 through the end of
// month. For the last month this is the integral over a full period.
func CumulativeIntegralUpToMonth(f DayFunc, month int, cal Calendar) (float64, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	if !cal.valid() {
		return 0, ErrInvalidCalendar
	}
	lastDay := cal.daysBefore(month+1) + 1
	return trapezoid(f, 1, lastDay), nil
}

// IntegralBetweenDays integrates f over [startDay, endDay]. Days are counted
// continuously from the start of the first year, so a span may cover any
// number of periods: whole periods are added as full-year integrals and only
// the remainder is sampled.
func IntegralBetweenDays(f DayFunc, startDay, endDay int, cal Calendar) (float64, error) {
	if endDay < startDay {
		return 0, &InvalidRangeError{StartDay: startDay, EndDay: endDay}
	}
	if !cal.valid() {
		return 0, ErrInvalidCalendar
	}
	period := cal.DaysPerYear()

	// Shift both bounds by whole periods so startDay lies in the first year.
	shift := floorDiv(startDay, period) * period
	startDay -= shift
	endDay -= shift

	integral := 0.0
	if endDay-startDay > period {
		fullYear, err := CumulativeIntegralUpToMonth(f, MonthsPerYear-1, cal)
		if err != nil {
			return 0, err
		}
		for endDay-startDay > period {
			endDay -= period
			integral += fullYear
		}
	}
	if endDay == startDay {
		return integral, nil
	}
	return integral + trapezoid(f, startDay, endDay), nil
}

// trapezoid samples f at unit spacing over [from, to], to > from.
func trapezoid(f DayFunc, from, to int) float64 {
	n := to - from + 1
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(from + i)
		y[i] = f(x[i])
	}
	return integrate.Trapezoidal(x, y)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
