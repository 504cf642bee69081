package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func bookingAt(t *testing.T, id string, start time.Time, durationMinutes, bufferMinutes int) Booking {
	t.Helper()
	return Booking{
		ID:            uuid.MustParse(id),
		StartTime:     start,
		EndTime:       start.Add(time.Duration(durationMinutes) * time.Minute),
		BufferMinutes: bufferMinutes,
	}
}

func TestFindConflict_BufferedWindows(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
	}
	// 30-minute cut with a 10-minute buffer occupies 10:00-10:40.
	existing := []Booking{
		bookingAt(t, "00000000-0000-0000-0000-000000000001", at(10, 0), 30, 10),
	}

	cases := []struct {
		name         string
		start        time.Time
		wantConflict bool
	}{
		{"inside occupied window", at(10, 35), true},
		{"one minute before window frees", at(10, 39), true},
		{"exactly at window boundary", at(10, 40), false},
		{"candidate buffer reaches existing start", at(9, 25), true},
		{"candidate ends with buffer at existing start", at(9, 20), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end := tc.start.Add(30 * time.Minute)
			got := FindConflict(tc.start, end, 10, existing, uuid.Nil)
			if (got != nil) != tc.wantConflict {
				t.Fatalf("FindConflict = %v, wantConflict %v", got, tc.wantConflict)
			}
			if got != nil && got.ID != existing[0].ID {
				t.Fatalf("conflicting id = %s, want %s", got.ID, existing[0].ID)
			}
		})
	}
}

func TestFindConflict_ZeroBufferDegeneratesToPlainOverlap(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
	}
	existing := []Booking{
		bookingAt(t, "00000000-0000-0000-0000-000000000001", at(10, 0), 30, 0),
	}

	if got := FindConflict(at(10, 30), at(11, 0), 0, existing, uuid.Nil); got != nil {
		t.Fatalf("adjacent booking reported as conflict: %v", got)
	}
	if got := FindConflict(at(10, 29), at(10, 59), 0, existing, uuid.Nil); got == nil {
		t.Fatalf("overlapping booking not reported")
	}
}

func TestFindConflict_ReturnsEarliestStartingConflict(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
	}
	// Deliberately unordered input; both overlap a 10:00-12:00 candidate.
	existing := []Booking{
		bookingAt(t, "00000000-0000-0000-0000-000000000002", at(11, 0), 30, 0),
		bookingAt(t, "00000000-0000-0000-0000-000000000001", at(10, 15), 30, 0),
	}

	got := FindConflict(at(10, 0), at(12, 0), 0, existing, uuid.Nil)
	if got == nil {
		t.Fatalf("expected a conflict")
	}
	if got.ID != existing[1].ID {
		t.Fatalf("conflicting id = %s, want earliest-starting %s", got.ID, existing[1].ID)
	}
}

func TestFindConflict_ExcludesBookingBeingUpdated(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
	}
	self := bookingAt(t, "00000000-0000-0000-0000-000000000001", at(10, 0), 30, 10)
	other := bookingAt(t, "00000000-0000-0000-0000-000000000002", at(14, 0), 30, 10)
	existing := []Booking{self, other}

	// Rescheduling within its own old window must not self-conflict.
	if got := FindConflict(at(10, 10), at(10, 40), 10, existing, self.ID); got != nil {
		t.Fatalf("booking conflicts with itself: %v", got)
	}
	// It still conflicts with others.
	if got := FindConflict(at(14, 10), at(14, 40), 10, existing, self.ID); got == nil || got.ID != other.ID {
		t.Fatalf("FindConflict = %v, want conflict with %s", got, other.ID)
	}
}

func TestFindConflict_NoConflictPairSatisfiesOverlapInvariant(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
	}
	a := bookingAt(t, "00000000-0000-0000-0000-000000000001", at(10, 0), 30, 10)
	b := bookingAt(t, "00000000-0000-0000-0000-000000000002", at(10, 40), 30, 10)

	if got := FindConflict(b.StartTime, b.EndTime, b.BufferMinutes, []Booking{a}, uuid.Nil); got != nil {
		t.Fatalf("detector reports conflict for boundary pair: %v", got)
	}
	// Stored-pair invariant: occupied windows must not intersect either way.
	if IntervalsOverlap(a.StartTime, a.OccupiedUntil(), b.StartTime, b.OccupiedUntil()) {
		t.Fatalf("occupied windows overlap for accepted pair")
	}
	if IntervalsOverlap(b.StartTime, b.OccupiedUntil(), a.StartTime, a.OccupiedUntil()) {
		t.Fatalf("occupied windows overlap for accepted pair (mirrored)")
	}
}
