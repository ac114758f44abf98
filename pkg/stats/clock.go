package stats

import "time"

// RetentionDays is how many most-recent days (including today) are kept at
// full detail granularity before the rollup summarizes them.
const RetentionDays = 2

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthOf truncates a timestamp to the first day of its UTC calendar month.
func MonthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Yesterday returns the most recent fully elapsed day relative to today.
func Yesterday(today time.Time) time.Time {
	return DayOf(today).AddDate(0, 0, -1)
}

// RollupCutoff returns the exclusive upper bound for rollup-eligible days:
// detail rows with day < cutoff are summarized and deleted, rows for today
// and yesterday stay at full granularity.
func RollupCutoff(today time.Time) time.Time {
	return DayOf(today).AddDate(0, 0, -(RetentionDays - 1))
}
