package report

import (
	"time"

	"github.com/boutique/backoffice/internal/domain/shared"
)

// ErrInvalidDateRange is returned when the window is empty or reversed
var ErrInvalidDateRange = shared.NewValidationError("INVALID_DATE_RANGE", "date_from must not be after date_to")

// DateRange is an inclusive window of whole days.
type DateRange struct {
	From time.Time `json:"date_from"`
	To   time.Time `json:"date_to"`
}

// NewDateRange builds an inclusive window covering every instant of the
// calendar days from..to in their own location.
func NewDateRange(from, to time.Time) (DateRange, error) {
	if from.IsZero() || to.IsZero() {
		return DateRange{}, shared.NewValidationError("INVALID_DATE_RANGE", "date_from and date_to are required")
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
	if start.After(end) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{From: start, To: end}, nil
}

// Contains reports whether t lies within the window
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}
