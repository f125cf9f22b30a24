package models

import (
	"strings"
	"time"
)

// Chore is a single row of the chore file.
// DateLastDone keeps the raw field text so hand-edited values survive a rewrite.
type Chore struct {
	Title            string
	DateLastDone     string
	SoftDeadlineDays *int
	HardDeadlineDays *int
	Description      string
}

// ChoreID derives the lookup identifier for a title:
// lower-cased with spaces replaced by underscores.
func ChoreID(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

// ID returns the identifier derived from the chore's title
func (c Chore) ID() string {
	return ChoreID(c.Title)
}

// LastDone parses DateLastDone. The second return value is false when the
// chore has never been done or the stored date is unparsable.
func (c Chore) LastDone(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(c.DateLastDone)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DeadlinesInverted reports whether both deadlines are set and the hard
// deadline comes before the soft one.
func (c Chore) DeadlinesInverted() bool {
	return c.SoftDeadlineDays != nil && c.HardDeadlineDays != nil &&
		*c.HardDeadlineDays < *c.SoftDeadlineDays
}

// Days returns a pointer to n, for building chores with deadlines
func Days(n int) *int {
	return &n
}

// ChoreStatus is the derived freshness of a chore at a point in time.
// This is the value published to observers after every refresh.
type ChoreStatus struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	LastDone       string         `json:"last_done,omitempty"`
	SoftDeadline   *int           `json:"soft_deadline,omitempty"`
	HardDeadline   *int           `json:"hard_deadline,omitempty"`
	DaysSince      int            `json:"days_since"`
	Classification Classification `json:"status"`
	ComputedAt     time.Time      `json:"computed_at"`
}

// NeverDone reports whether DaysSince holds the never-done sentinel
func (s ChoreStatus) NeverDone() bool {
	return s.DaysSince == NeverDoneDays && s.LastDone == ""
}

// Completion is one entry in the completion history
type Completion struct {
	ID      int64     `json:"id"`
	ChoreID string    `json:"chore_id"`
	Title   string    `json:"title"`
	DoneAt  time.Time `json:"done_at"`
}
