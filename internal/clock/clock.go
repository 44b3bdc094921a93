package clock

import (
	"time"

	dom "Planner/internal/domain"
)

// Canonical stored layouts. Display layouts are presentation-only and never
// persisted or compared.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	displayDateLayout = "Mon, Jan 2, 2006"
	displayTimeLayout = "3:04 PM"
)

// Now is an injectable current-time source. Production wiring passes
// time.Now; tests pass a fixed instant.
type Now func() time.Time

// DateKey encodes t as the canonical "YYYY-MM-DD" key.
func DateKey(t time.Time) string { return t.Format(DateLayout) }

// TimeKey encodes t as the canonical "HH:MM" key.
func TimeKey(t time.Time) string { return t.Format(TimeLayout) }

// DueInstant combines a task's date and time into one point in local time.
// Parsing is strict; malformed input returns ok=false and callers treat the
// task as never due.
func DueInstant(date, timeOfDay string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout+"T"+TimeLayout, date+"T"+timeOfDay, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsOverdue reports whether the task's due instant has passed and the task
// is not completed. A task with an unparsable date or time is never overdue.
func IsOverdue(t dom.Task, now time.Time) bool {
	if t.Completed {
		return false
	}
	due, ok := DueInstant(t.Date, t.Time)
	if !ok {
		return false
	}
	return !due.After(now)
}

// IsToday reports whether date falls on the same calendar day as now in
// local time. Time of day and completion state are ignored.
func IsToday(date string, now time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return false
	}
	y1, m1, d1 := d.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// FormatDisplayDate renders a stored date for display, e.g. "Mon, Mar 10, 2025".
// Malformed input is returned unchanged rather than erroring.
func FormatDisplayDate(date string) string {
	d, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return date
	}
	return d.Format(displayDateLayout)
}

// FormatDisplayTime renders a stored time for display, e.g. "6:30 PM".
func FormatDisplayTime(timeOfDay string) string {
	t, err := time.Parse(TimeLayout, timeOfDay)
	if err != nil {
		return timeOfDay
	}
	return t.Format(displayTimeLayout)
}
