package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFirstOfNextMonth(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"mid month", date(2024, 6, 15), date(2024, 7, 1)},
		{"first of month", date(2024, 6, 1), date(2024, 7, 1)},
		{"end of january does not drift", date(2024, 1, 31), date(2024, 2, 1)},
		{"december wraps the year", date(2024, 12, 20), date(2025, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstOfNextMonth(tt.in))
		})
	}
}

func TestAddCalendarMonths(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"zero months pins day one", date(2024, 6, 15), 0, date(2024, 6, 1)},
		{"one month", date(2024, 6, 15), 1, date(2024, 7, 1)},
		{"crosses year boundary", date(2024, 11, 20), 3, date(2025, 2, 1)},
		{"end of month never skips", date(2024, 1, 31), 1, date(2024, 2, 1)},
		{"many months", date(2024, 1, 10), 24, date(2026, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddCalendarMonths(tt.in, tt.n))
		})
	}
}

func TestPaymentWindowLimit(t *testing.T) {
	assert.Equal(t, date(2024, 9, 1), PaymentWindowLimit(date(2024, 6, 15)))
	assert.Equal(t, date(2025, 2, 1), PaymentWindowLimit(date(2024, 11, 30)))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", date(2024, 6, 15), date(2024, 6, 15), 0},
		{"forward", date(2024, 6, 15), date(2024, 6, 25), 10},
		{"backward is negative", date(2024, 6, 25), date(2024, 6, 15), -10},
		{"time of day ignored", time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC), time.Date(2024, 6, 16, 0, 1, 0, 0, time.UTC), 1},
		{"across months", date(2024, 6, 1), date(2024, 7, 1), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 6, 15, 13, 45, 30, 999, time.UTC)
	assert.Equal(t, date(2024, 6, 15), DateOnly(in))
}
