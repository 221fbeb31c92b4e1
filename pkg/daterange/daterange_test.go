package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) DateRange {
	t.Helper()
	dr, err := New(checkIn, checkOut)
	if err != nil {
		t.Fatalf("New(%v, %v): unexpected error: %v", checkIn, checkOut, err)
	}
	return dr
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		checkIn   time.Time
		checkOut  time.Time
		wantError bool
	}{
		{
			name:     "one night",
			checkIn:  date(2026, time.January, 10),
			checkOut: date(2026, time.January, 11),
		},
		{
			name:     "two nights",
			checkIn:  date(2026, time.January, 10),
			checkOut: date(2026, time.January, 12),
		},
		{
			name:      "zero-night range rejected",
			checkIn:   date(2026, time.January, 5),
			checkOut:  date(2026, time.January, 5),
			wantError: true,
		},
		{
			name:      "inverted range rejected",
			checkIn:   date(2026, time.January, 12),
			checkOut:  date(2026, time.January, 10),
			wantError: true,
		},
		{
			name:      "zero times rejected",
			wantError: true,
		},
		{
			name:     "timestamps truncated to same day collapse",
			checkIn:  time.Date(2026, time.January, 10, 23, 59, 0, 0, time.UTC),
			checkOut: time.Date(2026, time.January, 11, 0, 1, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr, err := New(tt.checkIn, tt.checkOut)
			if tt.wantError {
				if !errors.Is(err, ErrInvalidRange) {
					t.Errorf("expected ErrInvalidRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dr.CheckIn.Hour() != 0 || dr.CheckOut.Hour() != 0 {
				t.Errorf("endpoints not normalized to midnight: %v", dr)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := mustRange(t, date(2026, time.January, 10), date(2026, time.January, 12))

	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{
			name:  "identical ranges overlap",
			other: base,
			want:  true,
		},
		{
			name:  "partial overlap at tail",
			other: mustRange(t, date(2026, time.January, 11), date(2026, time.January, 14)),
			want:  true,
		},
		{
			name:  "contained range overlaps",
			other: mustRange(t, date(2026, time.January, 10), date(2026, time.January, 11)),
			want:  true,
		},
		{
			name:  "back-to-back stays do not overlap",
			other: mustRange(t, date(2026, time.January, 12), date(2026, time.January, 14)),
			want:  false,
		},
		{
			name:  "earlier adjacent range does not overlap",
			other: mustRange(t, date(2026, time.January, 8), date(2026, time.January, 10)),
			want:  false,
		},
		{
			name:  "disjoint range does not overlap",
			other: mustRange(t, date(2026, time.February, 1), date(2026, time.February, 3)),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps(%v) = %v, want %v", tt.other, got, tt.want)
			}
			// Overlap is symmetric
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %v", tt.other)
			}
		})
	}
}

func TestContainsDate(t *testing.T) {
	dr := mustRange(t, date(2026, time.January, 10), date(2026, time.January, 12))

	if !dr.ContainsDate(date(2026, time.January, 10)) {
		t.Error("check-in date should be contained")
	}
	if !dr.ContainsDate(date(2026, time.January, 11)) {
		t.Error("middle night should be contained")
	}
	if dr.ContainsDate(date(2026, time.January, 12)) {
		t.Error("check-out date should be excluded (half-open)")
	}
	if dr.ContainsDate(date(2026, time.January, 9)) {
		t.Error("date before check-in should not be contained")
	}
}

func TestNights(t *testing.T) {
	one := mustRange(t, date(2026, time.January, 10), date(2026, time.January, 11))
	if one.Nights() != 1 {
		t.Errorf("expected 1 night, got %d", one.Nights())
	}

	week := mustRange(t, date(2026, time.January, 10), date(2026, time.January, 17))
	if week.Nights() != 7 {
		t.Errorf("expected 7 nights, got %d", week.Nights())
	}
}
