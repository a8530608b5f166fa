// Package workinghours evaluates whether an instant falls inside an agent's
// configured local-time activity window.
package workinghours

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentpress/control-plane/models"
)

// ErrInvalidTimezone is returned when the configured timezone name cannot be
// resolved. The caller must treat this as a configuration error and fail
// closed.
var ErrInvalidTimezone = errors.New("invalid timezone in working hours configuration")

// ErrInvalidClock is returned when start or end is not a valid HH:MM string.
var ErrInvalidClock = errors.New("invalid HH:MM value in working hours configuration")

// IsWithinWindow reports whether nowUTC falls inside the configured window.
//
// A nil or disabled configuration imposes no restriction. Otherwise nowUTC is
// converted to local time in the configured timezone and admitted only when
// the local weekday is one of the working days and the local time-of-day lies
// in [start, end). Windows with end < start span midnight into the next
// calendar day; such an instant before end belongs to the window that started
// on the previous day, so the previous day's weekday is the one checked.
// start == end is an empty window and never admits.
func IsWithinWindow(wh *models.WorkingHours, nowUTC time.Time) (bool, error) {
	if wh == nil || !wh.Enabled {
		return true, nil
	}

	loc, err := time.LoadLocation(wh.Timezone)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidTimezone, wh.Timezone)
	}

	start, err := parseClock(wh.Start)
	if err != nil {
		return false, err
	}
	end, err := parseClock(wh.End)
	if err != nil {
		return false, err
	}

	local := nowUTC.In(loc)
	minute := local.Hour()*60 + local.Minute()

	switch {
	case start == end:
		return false, nil
	case start < end:
		return minute >= start && minute < end && dayAllowed(wh.WorkingDays, isoWeekday(local)), nil
	default:
		// Crosses midnight.
		if minute >= start {
			return dayAllowed(wh.WorkingDays, isoWeekday(local)), nil
		}
		if minute < end {
			return dayAllowed(wh.WorkingDays, isoWeekday(local.AddDate(0, 0, -1))), nil
		}
		return false, nil
	}
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return hour*60 + min, nil
}

// isoWeekday returns the weekday as 1=Monday through 7=Sunday, matching the
// working_days configuration.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// dayAllowed reports whether the ISO weekday is in the working-day set. An
// empty set means every day is allowed.
func dayAllowed(days []int, day int) bool {
	if len(days) == 0 {
		return true
	}
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
