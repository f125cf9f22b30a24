// Package status derives a chore's freshness from its last completion date
package status

import (
	"time"

	"github.com/thenoetrevino/chores/internal/models"
)

// Compute returns the status of chore as seen at now.
// Days are counted between calendar dates in now's location, so the result
// does not depend on the time of day.
func Compute(chore models.Chore, now time.Time) models.ChoreStatus {
	st := models.ChoreStatus{
		ID:           chore.ID(),
		Title:        chore.Title,
		Description:  chore.Description,
		SoftDeadline: chore.SoftDeadlineDays,
		HardDeadline: chore.HardDeadlineDays,
		DaysSince:    models.NeverDoneDays,
		ComputedAt:   now,
	}

	if last, ok := chore.LastDone(now.Location()); ok {
		st.LastDone = last.Format(models.DateLayout)
		st.DaysSince = DaysBetween(last, now)
	}

	st.Classification = Classify(st.DaysSince, chore.SoftDeadlineDays, chore.HardDeadlineDays)
	return st
}

// Classify buckets daysSince against the deadlines. Comparisons are strict:
// a chore is not due on the day it reaches a threshold, only after it.
func Classify(daysSince int, soft, hard *int) models.Classification {
	if soft == nil && hard == nil {
		return models.StatusUnknown
	}
	if hard != nil && daysSince > *hard {
		return models.StatusOverdue
	}
	if soft != nil && daysSince > *soft {
		return models.StatusDueSoon
	}
	return models.StatusOK
}

// DaysBetween counts whole calendar days from from to to, using to's location
func DaysBetween(from, to time.Time) int {
	loc := to.Location()
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.Date()
	// noon UTC avoids DST gaps shortening or stretching a day
	a := time.Date(fy, fm, fd, 12, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 12, 0, 0, 0, time.UTC)
	// Sub saturates past ~292 years
	return int((b.Unix() - a.Unix()) / 86400)
}
