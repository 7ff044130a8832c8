package utils

import (
	"time"
)

// FirstOfNextMonth returns the first day of the month after t, at midnight
// UTC. Using explicit year/month arithmetic instead of AddDate avoids
// day-of-month drift for dates late in a month.
func FirstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// AddCalendarMonths returns the first day of the month n months after t.
// Both schedule generation and the payment window rely on landing exactly on
// day 1 with no skipped months.
func AddCalendarMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// PaymentWindowLimit returns the latest due date that is still payable today:
// three calendar months ahead, pinned to day 1.
func PaymentWindowLimit(today time.Time) time.Time {
	return AddCalendarMonths(today, 3)
}

// DaysBetween returns the number of whole days from a to b. Negative when b
// is before a. Both dates are truncated to midnight UTC first.
func DaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
