// Package scaler turns a fitted seasonal model and cumulative meter readings
// into estimates of the yearly usage, one per reading interval.
package scaler

import (
	"errors"
	"fmt"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/seasonal"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/types"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTooFewReadings     = errors.New("at least two readings are required")
	ErrDegenerateInterval = errors.New("degenerate reading interval")
	ErrUnsortedReadings   = errors.New("readings are not sorted by day")
)

// DegenerateIntervalError means two consecutive readings share a day, so
// the model predicts no usage between them.
type DegenerateIntervalError struct {
	Day int
}

func (e *DegenerateIntervalError) Error() string {
	return fmt.Sprintf("integral is zero for the interval ending on day %d: input should not contain more than one reading per day", e.Day)
}

func (e *DegenerateIntervalError) Is(target error) bool {
	return target == ErrDegenerateInterval
}

type UnsortedReadingsError struct {
	PreviousDay int
	Day         int
}

func (e *UnsortedReadingsError) Error() string {
	return fmt.Sprintf("reading on day %d follows a reading on day %d", e.Day, e.PreviousDay)
}

func (e *UnsortedReadingsError) Is(target error) bool {
	return target == ErrUnsortedReadings
}

// Interval is the scaling computed for one pair of consecutive readings.
type Interval struct {
	StartDay   int     `json:"start_day"`
	EndDay     int     `json:"end_day"`
	UsageDelta float64 `json:"usage_delta"`
	Integral   float64 `json:"integral"`
	Factor     float64 `json:"factor"`
}

// Result holds one yearly usage estimate per interval and their statistics.
// StdDev is the population standard deviation of Factors.
type Result struct {
	Intervals      []Interval `json:"intervals"`
	Factors        []float64  `json:"factors"`
	Mean           float64    `json:"mean"`
	StdDev         float64    `json:"std_dev"`
	YearlyIntegral float64    `json:"yearly_integral"`
}

// Scale compares each usage delta between consecutive readings with the
// share of the year the model predicts for that interval.
func Scale(model seasonal.Model, readings []types.UsageReading) (*Result, error) {
	if len(readings) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewReadings, len(readings))
	}

	f := model.Func()
	yearly, err := seasonal.IntegralBetweenDays(f, 0, model.Calendar.DaysPerYear(), model.Calendar)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Intervals:      make([]Interval, 0, len(readings)-1),
		Factors:        make([]float64, 0, len(readings)-1),
		YearlyIntegral: yearly,
	}
	for i := 1; i < len(readings); i++ {
		start, end := readings[i-1], readings[i]
		if end.Day < start.Day {
			return nil, &UnsortedReadingsError{PreviousDay: start.Day, Day: end.Day}
		}
		if end.Day == start.Day {
			return nil, &DegenerateIntervalError{Day: end.Day}
		}

		integral, err := seasonal.IntegralBetweenDays(f, start.Day, end.Day, model.Calendar)
		if err != nil {
			return nil, err
		}
		if integral == 0 {
			return nil, &DegenerateIntervalError{Day: end.Day}
		}

		delta := end.Usage - start.Usage
		factor := delta / (integral / yearly)
		result.Intervals = append(result.Intervals, Interval{
			StartDay:   start.Day,
			EndDay:     end.Day,
			UsageDelta: delta,
			Integral:   integral,
			Factor:     factor,
		})
		result.Factors = append(result.Factors, factor)
	}

	result.Mean, result.StdDev = stat.PopMeanStdDev(result.Factors, nil)
	return result, nil
}
