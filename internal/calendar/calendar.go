// Package calendar holds the date arithmetic shared by the logbook and
// maintenance aggregators. All functions are pure; the current time is always
// passed in.
package calendar

import (
	"math"
	"time"

	"pilot-logbook-backend/internal/model"
)

const hoursPerDay = 24

// Month is one calendar month bucket.
type Month struct {
	Key   string // "YYYY-MM"
	Label string // "Mon YY"
}

// Today returns the calendar date of now as observed in loc.
func Today(now time.Time, loc *time.Location) model.Date {
	if loc == nil {
		loc = time.UTC
	}
	return model.DateOf(now.In(loc))
}

// DaysUntil returns the number of whole calendar days from today to target.
// The result is negative when target lies in the past.
func DaysUntil(target model.Date, now time.Time, loc *time.Location) int {
	today := Today(now, loc)
	return int(math.Round(target.Sub(today.Time).Hours() / hoursPerDay))
}

// WithinLastDays reports whether d is strictly after today minus n days.
func WithinLastDays(d model.Date, now time.Time, n int, loc *time.Location) bool {
	cutoff := Today(now, loc).AddDate(0, 0, -n)
	return d.After(cutoff)
}

// TrailingMonths returns the n months ending with the current one, oldest first.
func TrailingMonths(now time.Time, n int, loc *time.Location) []Month {
	today := Today(now, loc)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	months := make([]Month, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		months = append(months, Month{
			Key:   m.Format("2006-01"),
			Label: m.Format("Jan 06"),
		})
	}
	return months
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
