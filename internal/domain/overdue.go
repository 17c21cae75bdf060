package domain

import "math"

// IsOverdue reports whether a pending entry is past due. Only the calendar
// day matters.
func IsOverdue(e Entry, today Date) bool {
	return e.Status == StatusPending && e.OccurredOn.Before(today)
}

// DaysOverdue is the whole number of days since the due date, never negative.
func DaysOverdue(dueOn, today Date) int {
	days := math.Floor(today.Sub(dueOn.Time).Hours() / 24)
	return int(math.Max(0, days))
}
