// Package clock maps instants onto diary days.
//
// A diary day does not start at midnight: with a boundary hour of 2, the
// day runs from 02:00 local time to 02:00 the next calendar day, so a
// snack logged at 01:30 still counts towards the previous day's totals.
package clock

import (
	"time"
)

// DefaultBoundaryHour is the start-of-day hour seeded into a fresh
// installation.
const DefaultBoundaryHour = 2

// DiaryDay returns the diary day ("YYYY-MM-DD") a UTC instant belongs to,
// given the local start-of-day hour and the viewer's location.
//
// The instant is shifted back by boundaryHour hours and the resulting
// local calendar date is the diary day. An instant at exactly
// boundaryHour:00:00.000 local time belongs to the new day.
//
// Daylight-saving transitions are not corrected for: on a transition day
// the shift is pure wall-clock arithmetic, so entries logged within
// boundaryHour hours of the clock change can land on the neighbouring
// day.
func DiaryDay(utcMillis int64, boundaryHour int, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	shifted := time.UnixMilli(utcMillis - int64(boundaryHour)*int64(time.Hour/time.Millisecond))
	return shifted.In(loc).Format("2006-01-02")
}

// Today returns the diary day the current instant belongs to.
func Today(boundaryHour int, loc *time.Location) string {
	return DiaryDay(time.Now().UnixMilli(), boundaryHour, loc)
}
