package domain

import (
	"errors"
	"time"
)

var ErrInvalidDuration = errors.New("duration must be at least 1 minute")

// ComputeEndTime adds a service duration to a start time, preserving the
// start time's location.
func ComputeEndTime(start time.Time, durationMinutes int) (time.Time, error) {
	if durationMinutes < 1 {
		return time.Time{}, ErrInvalidDuration
	}
	return start.Add(time.Duration(durationMinutes) * time.Minute), nil
}

// IntervalsOverlap reports whether the half-open intervals [aStart, aEnd)
// and [bStart, bEnd) intersect. An interval ending exactly when the other
// starts does not overlap.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
