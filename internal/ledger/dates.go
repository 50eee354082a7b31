package ledger

import (
	"fmt"
	"math"
	"time"
)

const DateFormat = "2006-01-02"

// ParseDate parses a YYYY-MM-DD boundary date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, s)
	}
	return t, nil
}

// CountWeekday counts occurrences of a weekday in a calendar month.
// This is the expected-lesson denominator: lessons are assumed weekly
// on a fixed weekday, independent of how many dates exist in storage.
func CountWeekday(year int, month time.Month, weekday time.Weekday) int {
	count := 0
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == weekday {
			count++
		}
	}
	return count
}

// monthBounds returns [first day of month, first day of next month) as
// ISO date strings.
func monthBounds(year, month int) (string, string) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return from.Format(DateFormat), to.Format(DateFormat)
}

// round2 rounds percentages to two decimal places for the boundary.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
