package workinghours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentpress/control-plane/models"
)

// 2026-03-02 is a Monday; 2026-03-06 a Friday; 2026-03-07 a Saturday.
func utc(day, hour, min int) time.Time {
	return time.Date(2026, time.March, day, hour, min, 0, 0, time.UTC)
}

func TestIsWithinWindow_NoRestriction(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		ok, err := IsWithinWindow(nil, utc(2, 3, 0))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("disabled config", func(t *testing.T) {
		wh := &models.WorkingHours{Enabled: false, Start: "09:00", End: "17:00", Timezone: "UTC"}
		ok, err := IsWithinWindow(wh, utc(2, 3, 0))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestIsWithinWindow_SimpleWindow(t *testing.T) {
	wh := &models.WorkingHours{
		Enabled:     true,
		Start:       "09:00",
		End:         "17:00",
		Timezone:    "UTC",
		WorkingDays: []int{1, 2, 3, 4, 5},
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"inside the window on a working day", utc(2, 10, 0), true},
		{"before start", utc(2, 8, 59), false},
		{"start is inclusive", utc(2, 9, 0), true},
		{"end is exclusive", utc(2, 17, 0), false},
		{"last admitted minute", utc(2, 16, 59), true},
		{"saturday rejected even inside the window", utc(7, 10, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := IsWithinWindow(wh, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestIsWithinWindow_MidnightCrossing(t *testing.T) {
	wh := &models.WorkingHours{
		Enabled:  true,
		Start:    "22:00",
		End:      "06:00",
		Timezone: "UTC",
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before midnight", utc(6, 23, 30), true},
		{"after midnight", utc(7, 2, 0), true},
		{"midday is outside", utc(6, 12, 0), false},
		{"start is inclusive", utc(6, 22, 0), true},
		{"end is exclusive", utc(7, 6, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := IsWithinWindow(wh, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

// A window crossing midnight belongs to the day it started on: Saturday 02:00
// falls in Friday's 22:00-06:00 shift, so a Friday-only schedule admits it and
// a Saturday-only schedule does not.
func TestIsWithinWindow_MidnightCrossingWeekday(t *testing.T) {
	fridayOnly := &models.WorkingHours{
		Enabled:     true,
		Start:       "22:00",
		End:         "06:00",
		Timezone:    "UTC",
		WorkingDays: []int{5},
	}

	ok, err := IsWithinWindow(fridayOnly, utc(7, 2, 0))
	require.NoError(t, err)
	assert.True(t, ok, "saturday 02:00 belongs to friday's shift")

	ok, err = IsWithinWindow(fridayOnly, utc(7, 23, 0))
	require.NoError(t, err)
	assert.False(t, ok, "saturday 23:00 starts saturday's shift, which is not scheduled")

	saturdayOnly := &models.WorkingHours{
		Enabled:     true,
		Start:       "22:00",
		End:         "06:00",
		Timezone:    "UTC",
		WorkingDays: []int{6},
	}

	ok, err = IsWithinWindow(saturdayOnly, utc(7, 2, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsWithinWindow_TimezoneConversion(t *testing.T) {
	wh := &models.WorkingHours{
		Enabled:  true,
		Start:    "09:00",
		End:      "17:00",
		Timezone: "America/New_York",
	}

	// 15:00 UTC on 2026-03-02 is 10:00 EST.
	ok, err := IsWithinWindow(wh, utc(2, 15, 0))
	require.NoError(t, err)
	assert.True(t, ok)

	// 13:00 UTC is 08:00 EST, before the window opens.
	ok, err = IsWithinWindow(wh, utc(2, 13, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsWithinWindow_EmptyWindow(t *testing.T) {
	wh := &models.WorkingHours{
		Enabled:  true,
		Start:    "09:00",
		End:      "09:00",
		Timezone: "UTC",
	}

	ok, err := IsWithinWindow(wh, utc(2, 9, 0))
	require.NoError(t, err)
	assert.False(t, ok, "start == end never admits")
}

func TestIsWithinWindow_InvalidTimezone(t *testing.T) {
	wh := &models.WorkingHours{
		Enabled:  true,
		Start:    "09:00",
		End:      "17:00",
		Timezone: "Mars/Olympus_Mons",
	}

	ok, err := IsWithinWindow(wh, utc(2, 10, 0))
	assert.ErrorIs(t, err, ErrInvalidTimezone)
	assert.False(t, ok, "an unresolvable timezone fails closed")
}

func TestIsWithinWindow_InvalidClock(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"hour out of range", "25:00", "17:00"},
		{"minute out of range", "09:00", "17:60"},
		{"not a clock at all", "nine", "17:00"},
		{"missing separator", "0900", "17:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wh := &models.WorkingHours{
				Enabled:  true,
				Start:    tt.start,
				End:      tt.end,
				Timezone: "UTC",
			}
			ok, err := IsWithinWindow(wh, utc(2, 10, 0))
			assert.ErrorIs(t, err, ErrInvalidClock)
			assert.False(t, ok)
		})
	}
}

func TestIsoWeekday(t *testing.T) {
	assert.Equal(t, 1, isoWeekday(utc(2, 0, 0)), "monday")
	assert.Equal(t, 6, isoWeekday(utc(7, 0, 0)), "saturday")
	assert.Equal(t, 7, isoWeekday(utc(8, 0, 0)), "sunday maps to 7")
}
