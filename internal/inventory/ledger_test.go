package inventory

import (
	"testing"
	"time"

	"hostly/pkg/daterange"
	"hostly/pkg/model"
)

func date(day int) time.Time {
	return time.Date(2026, time.January, day, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, fromDay, toDay int) daterange.DateRange {
	t.Helper()
	r, err := daterange.New(date(fromDay), date(toDay))
	if err != nil {
		t.Fatalf("failed to build range [%d, %d): %v", fromDay, toDay, err)
	}
	return r
}

func interval(t *testing.T, fromDay, toDay int, reservationID string) model.BookedInterval {
	t.Helper()
	return model.BookedInterval{
		Range:         mustRange(t, fromDay, toDay),
		ReservationID: reservationID,
	}
}

// assertLedgerInvariant checks that intervals are sorted by check-in and
// pairwise non-overlapping.
func assertLedgerInvariant(t *testing.T, l *Ledger) {
	t.Helper()
	intervals := l.Intervals()
	for i := 1; i < len(intervals); i++ {
		prev, cur := intervals[i-1], intervals[i]
		if cur.Range.CheckIn.Before(prev.Range.CheckIn) {
			t.Errorf("intervals out of order at %d: %s before %s", i, cur.Range, prev.Range)
		}
		if prev.Range.Overlaps(cur.Range) {
			t.Errorf("overlapping intervals: %s and %s", prev.Range, cur.Range)
		}
	}
}

func TestLedgerIsFree(t *testing.T) {
	ledger := NewLedger([]model.BookedInterval{
		interval(t, 10, 12, "res-1"),
		interval(t, 20, 25, "res-2"),
	})

	tests := []struct {
		name     string
		from     int
		to       int
		expected bool
	}{
		{"before all bookings", 1, 5, true},
		{"exact match of booking", 10, 12, false},
		{"overlapping tail of booking", 11, 14, false},
		{"overlapping head of booking", 8, 11, false},
		{"spanning a booking", 9, 13, false},
		{"gap between bookings", 12, 20, true},
		{"back-to-back before booking", 5, 10, true},
		{"back-to-back after booking", 25, 30, true},
		{"inside long booking", 21, 23, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.IsFree(mustRange(t, tt.from, tt.to))
			if got != tt.expected {
				t.Errorf("IsFree([%d, %d)) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestLedgerBook(t *testing.T) {
	t.Run("inserts preserving sort order", func(t *testing.T) {
		ledger := NewLedger(nil)

		for _, iv := range []struct {
			from, to int
			resID    string
		}{
			{20, 22, "res-b"},
			{5, 8, "res-a"},
			{12, 15, "res-c"},
		} {
			if err := ledger.Book(mustRange(t, iv.from, iv.to), iv.resID); err != nil {
				t.Fatalf("Book([%d, %d)) failed: %v", iv.from, iv.to, err)
			}
			assertLedgerInvariant(t, ledger)
		}

		intervals := ledger.Intervals()
		if len(intervals) != 3 {
			t.Fatalf("expected 3 intervals, got %d", len(intervals))
		}
		if intervals[0].ReservationID != "res-a" || intervals[2].ReservationID != "res-b" {
			t.Errorf("unexpected order: %v", intervals)
		}
	})

	t.Run("rejects overlapping booking", func(t *testing.T) {
		ledger := NewLedger([]model.BookedInterval{interval(t, 10, 12, "res-1")})

		err := ledger.Book(mustRange(t, 11, 14), "res-2")
		if err != ErrConflict {
			t.Errorf("expected ErrConflict, got %v", err)
		}
		if len(ledger.Intervals()) != 1 {
			t.Errorf("failed booking must not mutate the ledger")
		}
	})

	t.Run("allows back-to-back bookings", func(t *testing.T) {
		ledger := NewLedger([]model.BookedInterval{interval(t, 10, 12, "res-1")})

		if err := ledger.Book(mustRange(t, 12, 14), "res-2"); err != nil {
			t.Errorf("back-to-back booking should succeed, got %v", err)
		}
		assertLedgerInvariant(t, ledger)
	})
}

func TestLedgerRelease(t *testing.T) {
	ledger := NewLedger([]model.BookedInterval{
		interval(t, 5, 8, "res-1"),
		interval(t, 10, 12, "res-2"),
	})

	if removed := ledger.Release("res-1"); removed != 1 {
		t.Errorf("expected 1 removed interval, got %d", removed)
	}
	if !ledger.IsFree(mustRange(t, 5, 8)) {
		t.Error("released range should be free again")
	}
	assertLedgerInvariant(t, ledger)

	// Releasing an unknown reservation is a no-op
	if removed := ledger.Release("res-1"); removed != 0 {
		t.Errorf("repeated release should remove nothing, got %d", removed)
	}
	if len(ledger.Intervals()) != 1 {
		t.Errorf("expected 1 remaining interval, got %d", len(ledger.Intervals()))
	}
}

func TestLedgerFreeRangesWithin(t *testing.T) {
	collect := func(l *Ledger, horizon daterange.DateRange) []daterange.DateRange {
		var out []daterange.DateRange
		for r := range l.FreeRangesWithin(horizon) {
			out = append(out, r)
		}
		return out
	}

	t.Run("empty ledger yields whole horizon", func(t *testing.T) {
		ledger := NewLedger(nil)
		horizon := mustRange(t, 1, 31)

		gaps := collect(ledger, horizon)
		if len(gaps) != 1 || gaps[0] != horizon {
			t.Errorf("expected [%s], got %v", horizon, gaps)
		}
	})

	t.Run("gaps between bookings", func(t *testing.T) {
		ledger := NewLedger([]model.BookedInterval{
			interval(t, 5, 8, "res-1"),
			interval(t, 12, 15, "res-2"),
		})
		horizon := mustRange(t, 1, 31)

		gaps := collect(ledger, horizon)
		expected := []daterange.DateRange{
			mustRange(t, 1, 5),
			mustRange(t, 8, 12),
			mustRange(t, 15, 31),
		}
		if len(gaps) != len(expected) {
			t.Fatalf("expected %d gaps, got %d: %v", len(expected), len(gaps), gaps)
		}
		for i := range expected {
			if gaps[i] != expected[i] {
				t.Errorf("gap %d: got %s, want %s", i, gaps[i], expected[i])
			}
		}
	})

	t.Run("booking overlapping horizon edges is clipped", func(t *testing.T) {
		ledger := NewLedger([]model.BookedInterval{
			interval(t, 1, 10, "res-1"),
			interval(t, 25, 31, "res-2"),
		})
		horizon := mustRange(t, 5, 28)

		gaps := collect(ledger, horizon)
		expected := mustRange(t, 10, 25)
		if len(gaps) != 1 || gaps[0] != expected {
			t.Errorf("expected [%s], got %v", expected, gaps)
		}
	})

	t.Run("fully booked horizon yields nothing", func(t *testing.T) {
		ledger := NewLedger([]model.BookedInterval{interval(t, 1, 31, "res-1")})

		gaps := collect(ledger, mustRange(t, 5, 20))
		if len(gaps) != 0 {
			t.Errorf("expected no gaps, got %v", gaps)
		}
	})

	t.Run("lazy sequence stops on early break", func(t *testing.T) {
		ledger := NewLedger([]model.BookedInterval{
			interval(t, 5, 8, "res-1"),
			interval(t, 12, 15, "res-2"),
		})

		count := 0
		for range ledger.FreeRangesWithin(mustRange(t, 1, 31)) {
			count++
			break
		}
		if count != 1 {
			t.Errorf("expected iteration to stop after first gap, got %d", count)
		}
	})
}
