package utils

import (
	"time"
)

// StartOfWeek returns the Monday of the week containing t, truncated to a
// date in t's location. Receipts are bucketed by this value for the weekly
// expense views.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
