package daterange

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRange is returned when check-out is not strictly after check-in
	ErrInvalidRange = errors.New("daterange: check-out must be after check-in")
)

// DateRange is a half-open interval of calendar dates [CheckIn, CheckOut).
// Both endpoints are normalized to UTC midnight, so a range always covers a
// whole number of nights.
type DateRange struct {
	CheckIn  time.Time `json:"check_in" bson:"check_in"`
	CheckOut time.Time `json:"check_out" bson:"check_out"`
}

// New builds a validated DateRange. A zero-night range (check-in equal to
// check-out) is rejected.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{
		CheckIn:  Day(checkIn),
		CheckOut: Day(checkOut),
	}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day truncates a timestamp to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether two half-open ranges share at least one night.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// ContainsDate reports whether the given date falls inside the range.
// The check-out date itself is excluded.
func (dr DateRange) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.CheckIn) && d.Before(dr.CheckOut)
}

// Nights returns the length of the stay in nights. Always >= 1 for a range
// built through New.
func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

func (dr DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", dr.CheckIn.Format(time.DateOnly), dr.CheckOut.Format(time.DateOnly))
}
