package seasonal

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange    = errors.New("invalid day range")
	ErrInvalidMonth    = errors.New("month index out of range")
	ErrInvalidCalendar = errors.New("invalid calendar")
	ErrInvalidShares   = errors.New("invalid monthly shares")
)

// InvalidRangeError is returned when an integral is requested over a span
// that ends before it starts.
type InvalidRangeError struct {
	StartDay int
	EndDay   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid day range: end day %d is before start day %d", e.EndDay, e.StartDay)
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}
