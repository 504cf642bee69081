package domain

import (
	"time"

	"github.com/google/uuid"
)

// FindConflict scans existing bookings for one whose occupied window
// intersects the candidate's. The candidate window is
// [start, end + bufferMinutes); each existing booking contributes
// [StartTime, OccupiedUntil()). Both sides carry their own buffer, so
// mutual spacing is enforced without double-counting.
//
// exclude skips the booking being updated; pass uuid.Nil for creates.
//
// The earliest-starting conflicting booking is returned so error messages
// are reproducible regardless of input order. A nil result means no
// conflict exists.
func FindConflict(start, end time.Time, bufferMinutes int, existing []Booking, exclude uuid.UUID) *Booking {
	candidateUntil := end.Add(time.Duration(bufferMinutes) * time.Minute)

	var found *Booking
	for i := range existing {
		b := existing[i]
		if exclude != uuid.Nil && b.ID == exclude {
			continue
		}
		if !IntervalsOverlap(start, candidateUntil, b.StartTime, b.OccupiedUntil()) {
			continue
		}
		if found == nil || b.StartTime.Before(found.StartTime) {
			found = &existing[i]
		}
	}
	return found
}
