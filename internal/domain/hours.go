package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// BusinessHours is the shop's daily operating window, expressed as minutes
// from local midnight. Loaded once from config and read-only afterwards.
type BusinessHours struct {
	OpenMinute  int
	CloseMinute int
}

func (h BusinessHours) Validate() error {
	if h.OpenMinute < 0 || h.CloseMinute > 24*60 {
		return fmt.Errorf("business hours out of range: open=%d close=%d", h.OpenMinute, h.CloseMinute)
	}
	if h.OpenMinute >= h.CloseMinute {
		return fmt.Errorf("business hours open must be before close: open=%d close=%d", h.OpenMinute, h.CloseMinute)
	}
	return nil
}

// Contains reports whether [start, end) falls entirely inside the operating
// window of start's day, evaluated in loc. An interval crossing local
// midnight never fits.
func (h BusinessHours) Contains(start, end time.Time, loc *time.Location) bool {
	localStart := start.In(loc)
	localEnd := end.In(loc)

	if localEnd.Year() != localStart.Year() || localEnd.YearDay() != localStart.YearDay() {
		return false
	}

	startMinute := localStart.Hour()*60 + localStart.Minute()
	endMinute := localEnd.Hour()*60 + localEnd.Minute()
	if localEnd.Second() > 0 || localEnd.Nanosecond() > 0 {
		endMinute++
	}

	return h.OpenMinute <= startMinute && endMinute <= h.CloseMinute
}

// ParseClock parses an "HH:MM" wall-clock string into minutes from midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return hour*60 + minute, nil
}
