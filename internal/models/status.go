package models

// DateLayout is the on-disk format of DateLastDone
const DateLayout = "2006-01-02"

// NeverDoneDays is reported as DaysSince for chores with no usable completion date
const NeverDoneDays = 999

// Classification is the urgency bucket of a chore
type Classification string

const (
	StatusOK      Classification = "ok"
	StatusDueSoon Classification = "due_soon"
	StatusOverdue Classification = "overdue"
	StatusUnknown Classification = "unknown"
)

// AllClassifications lists classifications from least to most urgent,
// in Severity order
var AllClassifications = []Classification{StatusUnknown, StatusOK, StatusDueSoon, StatusOverdue}

// ParseClassification maps user input to a Classification
func ParseClassification(s string) (Classification, bool) {
	for _, c := range AllClassifications {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Severity orders classifications for sorting; higher is more urgent.
// Unknown sorts below ok because nothing can be said about it.
func (c Classification) Severity() int {
	switch c {
	case StatusOverdue:
		return 3
	case StatusDueSoon:
		return 2
	case StatusOK:
		return 1
	default:
		return 0
	}
}
