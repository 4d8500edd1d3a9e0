package models

import "time"

// RecurrenceType selects the unit a recurring task advances by.
type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
	RecurYearly  RecurrenceType = "yearly"
)

// EndCondition optionally bounds a recurrence. Only "on_date" is enforced;
// "after_n_occurrences" would need an occurrence counter the task does not
// carry, so it is accepted and ignored.
type EndCondition struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Recurrence describes how a completed task spawns its next occurrence.
type Recurrence struct {
	Type         RecurrenceType `json:"type"`
	Interval     int            `json:"interval"`
	EndCondition *EndCondition  `json:"end_condition,omitempty"`
}

// Months and years advance by fixed day counts (30/365) rather than
// calendar arithmetic.
const (
	daysPerMonth = 30
	daysPerYear  = 365
)

// NextDueDate computes the due date of the next occurrence given the
// current one. Returns false when the recurrence type is unknown or an
// on_date end condition puts the next occurrence past the end.
func (r *Recurrence) NextDueDate(current time.Time) (time.Time, bool) {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	var next time.Time
	switch r.Type {
	case RecurDaily:
		next = current.AddDate(0, 0, interval)
	case RecurWeekly:
		next = current.AddDate(0, 0, 7*interval)
	case RecurMonthly:
		next = current.AddDate(0, 0, daysPerMonth*interval)
	case RecurYearly:
		next = current.AddDate(0, 0, daysPerYear*interval)
	default:
		return time.Time{}, false
	}

	if ec := r.EndCondition; ec != nil && ec.Type == "on_date" && ec.Value != "" {
		end, err := time.Parse(time.RFC3339, ec.Value)
		if err == nil && next.After(end) {
			return time.Time{}, false
		}
	}
	return next, true
}
