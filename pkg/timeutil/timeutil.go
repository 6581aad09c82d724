// Package timeutil provides day-bucket helpers for streak and activity
// tracking. Attempts are grouped by calendar day in UTC; all streak and
// weekly-activity math goes through these helpers so every caller agrees
// on where a day starts.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatHumanDate is a human-readable format.
	FormatHumanDate = "2 January 2006"
	// FormatShortDate is a short format (Jan 2).
	FormatShortDate = "Jan 2"
)

// DayKey returns the canonical day bucket for a time (YYYY-MM-DD, UTC).
// Two attempts with the same key count as one practiced day.
func DayKey(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// StartOfDay returns the start of the day (00:00:00) in UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in UTC.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in UTC.
func StartOfWeek(t time.Time) time.Time {
	u := t.UTC()
	weekday := int(u.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(u.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in UTC.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// SameDay checks if two times fall in the same UTC day bucket.
func SameDay(t1, t2 time.Time) bool {
	u1, u2 := t1.UTC(), t2.UTC()
	return u1.Year() == u2.Year() && u1.YearDay() == u2.YearDay()
}

// ConsecutiveDay checks if t2 is the day after t1.
func ConsecutiveDay(t1, t2 time.Time) bool {
	return SameDay(t1.UTC().AddDate(0, 0, 1), t2)
}

// DaysBetween calculates the number of whole days between two times.
func DaysBetween(t1, t2 time.Time) int {
	a1 := StartOfDay(t1)
	a2 := StartOfDay(t2)
	days := int(a2.Sub(a1).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// IsToday checks if the given time is today (UTC).
func IsToday(t time.Time) bool {
	return SameDay(t, time.Now())
}

// IsYesterday checks if the given time is yesterday (UTC).
func IsYesterday(t time.Time) bool {
	return SameDay(t, time.Now().UTC().AddDate(0, 0, -1))
}

// LastNDays returns the day buckets for the n days ending today,
// oldest first.
func LastNDays(now time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, 0, n)
	start := StartOfDay(now).AddDate(0, 0, -(n - 1))
	for i := 0; i < n; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// ParseDate parses a date string (YYYY-MM-DD) as a UTC day.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, time.UTC)
}

// FormatRelative returns a human-readable relative time string.
func FormatRelative(t time.Time) string {
	duration := time.Since(t)
	if duration < 0 {
		return formatFutureDuration(-duration)
	}
	return formatPastDuration(duration)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%dd ago", days)
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	default:
		months := int(d.Hours() / 24 / 30)
		if months < 12 {
			return fmt.Sprintf("%dmo ago", months)
		}
		return fmt.Sprintf("%dy ago", months/12)
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "tomorrow"
		}
		return fmt.Sprintf("in %dd", days)
	}
}

// Notification timing helpers.

// IsQuietHours checks if notifications should be held back (22:00-09:00
// in the given location).
func IsQuietHours(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	hour := t.In(loc).Hour()
	return hour >= 22 || hour < 9
}

// NextDeliveryWindow returns the next time when notifications are
// appropriate in the given location.
func NextDeliveryWindow(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	hour := local.Hour()

	if hour < 9 {
		return time.Date(local.Year(), local.Month(), local.Day(), 9, 0, 0, 0, loc)
	}
	if hour >= 22 {
		tomorrow := local.AddDate(0, 0, 1)
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 9, 0, 0, 0, loc)
	}
	return local
}
