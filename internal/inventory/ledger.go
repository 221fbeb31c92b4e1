package inventory

import (
	"iter"
	"sort"
	"time"

	"hostly/pkg/daterange"
	"hostly/pkg/model"
)

// Ledger is the source of truth for one unit's committed bookings: a slice
// of intervals kept sorted by check-in date, with no two intervals
// overlapping. Ledgers are not safe for concurrent mutation; the
// reservation service serializes writers per room type.
type Ledger struct {
	intervals []model.BookedInterval
}

// NewLedger builds a ledger from a unit's stored intervals. Input order is
// not trusted; the slice is copied and sorted.
func NewLedger(intervals []model.BookedInterval) *Ledger {
	sorted := make([]model.BookedInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Range.CheckIn.Before(sorted[j].Range.CheckIn)
	})
	return &Ledger{intervals: sorted}
}

// IsFree reports whether no committed interval overlaps the given range.
func (l *Ledger) IsFree(r daterange.DateRange) bool {
	// First interval whose check-out is past the range start; earlier
	// intervals end on or before it and cannot overlap.
	i := sort.Search(len(l.intervals), func(i int) bool {
		return l.intervals[i].Range.CheckOut.After(r.CheckIn)
	})
	for ; i < len(l.intervals); i++ {
		if !l.intervals[i].Range.CheckIn.Before(r.CheckOut) {
			break
		}
		if l.intervals[i].Range.Overlaps(r) {
			return false
		}
	}
	return true
}

// Book inserts an interval for the reservation, preserving sort order.
// Returns ErrConflict if the range overlaps a committed interval.
func (l *Ledger) Book(r daterange.DateRange, reservationID string) error {
	if !l.IsFree(r) {
		return ErrConflict
	}

	i := sort.Search(len(l.intervals), func(i int) bool {
		return l.intervals[i].Range.CheckIn.After(r.CheckIn)
	})
	l.intervals = append(l.intervals, model.BookedInterval{})
	copy(l.intervals[i+1:], l.intervals[i:])
	l.intervals[i] = model.BookedInterval{Range: r, ReservationID: reservationID}
	return nil
}

// Release removes the interval(s) tagged with the reservation ID. Removing
// an absent reservation is a no-op. Returns the number of intervals removed.
func (l *Ledger) Release(reservationID string) int {
	kept := l.intervals[:0]
	removed := 0
	for _, iv := range l.intervals {
		if iv.ReservationID == reservationID {
			removed++
			continue
		}
		kept = append(kept, iv)
	}
	l.intervals = kept
	return removed
}

// Intervals returns a copy of the committed intervals in check-in order.
func (l *Ledger) Intervals() []model.BookedInterval {
	out := make([]model.BookedInterval, len(l.intervals))
	copy(out, l.intervals)
	return out
}

// FreeRangesWithin yields the gaps between committed intervals, clipped to
// the horizon, in chronological order. The sequence is lazy and finite.
func (l *Ledger) FreeRangesWithin(horizon daterange.DateRange) iter.Seq[daterange.DateRange] {
	return func(yield func(daterange.DateRange) bool) {
		cursor := horizon.CheckIn
		for _, iv := range l.intervals {
			if !iv.Range.CheckOut.After(cursor) {
				continue
			}
			if !iv.Range.CheckIn.Before(horizon.CheckOut) {
				break
			}
			if iv.Range.CheckIn.After(cursor) {
				gap := daterange.DateRange{CheckIn: cursor, CheckOut: minDate(iv.Range.CheckIn, horizon.CheckOut)}
				if gap.Validate() == nil && !yield(gap) {
					return
				}
			}
			if iv.Range.CheckOut.After(cursor) {
				cursor = iv.Range.CheckOut
			}
		}
		if cursor.Before(horizon.CheckOut) {
			gap := daterange.DateRange{CheckIn: cursor, CheckOut: horizon.CheckOut}
			if gap.Validate() == nil {
				yield(gap)
			}
		}
	}
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
