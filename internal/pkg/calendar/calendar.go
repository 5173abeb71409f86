// Package calendar holds the school-day arithmetic. Attendance and leave
// records are keyed by calendar day in the school's local timezone, so all
// "today" and "in the past" comparisons go through here.
package calendar

import (
	"time"

	"github.com/Azure/go-autorest/autorest/date"
)

// DayOf returns the calendar day a timestamp falls on in the given location.
func DayOf(t time.Time, loc *time.Location) date.Date {
	local := t.In(loc)
	return date.Date{Time: time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in the given location.
func Today(loc *time.Location) date.Date {
	return DayOf(time.Now(), loc)
}

// BeforeToday reports whether d is strictly before today's calendar day in
// the given location.
func BeforeToday(d date.Date, loc *time.Location) bool {
	return d.Time.Before(Today(loc).Time)
}

// SameDay reports whether two dates name the same calendar day.
func SameDay(a, b date.Date) bool {
	return a.Time.Equal(b.Time)
}
