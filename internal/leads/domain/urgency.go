package domain

import "time"

// UrgencyTier buckets a follow-up date for visual triage. Row tinting and
// the due-date badge both consume this one function so they cannot diverge.
//
//	due today or overdue  -> error
//	due tomorrow          -> warning
//	due in two days       -> success
//	further out or unset  -> light
func UrgencyTier(followUpDate *time.Time, today time.Time) ColorTag {
	if followUpDate == nil {
		return ColorLight
	}

	switch days := calendarDaysBetween(today, *followUpDate); {
	case days <= 0:
		return ColorError
	case days == 1:
		return ColorWarning
	case days == 2:
		return ColorSuccess
	default:
		return ColorLight
	}
}

// calendarDaysBetween counts whole calendar days from one value's date to
// the other's. The inputs may carry different locations (dates scanned
// from the database are midnight UTC, "today" is server-local), so each
// side's printed date is re-anchored in UTC before diffing.
func calendarDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}
