package issue

import "fmt"

// ScheduledIssue is a future edition placed on the calendar. ID is nil until
// the edition has been persisted.
type ScheduledIssue struct {
	ID              *int   `json:"id,omitempty" yaml:"id,omitempty"`
	CutoffDate      Date   `json:"cutoff_date" yaml:"cutoff_date"`
	PublicationDate Date   `json:"publication_date" yaml:"publication_date"`
	Title           string `json:"title,omitempty" yaml:"title,omitempty"`
	Notes           string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Validate returns human-readable problems with the schedule entry.
func (s ScheduledIssue) Validate() []string {
	var msgs []string
	if !s.CutoffDate.IsSet() {
		msgs = append(msgs, "cutoff date is required")
	}
	if !s.PublicationDate.IsSet() {
		msgs = append(msgs, "publication date is required")
	}
	if s.CutoffDate.IsSet() && s.PublicationDate.IsSet() && !s.CutoffDate.Before(s.PublicationDate) {
		msgs = append(msgs, fmt.Sprintf("cutoff date %s must be before publication date %s", s.CutoffDate, s.PublicationDate))
	}
	return msgs
}

// IDValue returns the persisted id or 0.
func (s ScheduledIssue) IDValue() int {
	if s.ID == nil {
		return 0
	}
	return *s.ID
}

// InMonth reports whether either date of the entry falls in the month of m.
func (s ScheduledIssue) InMonth(m Date) bool {
	return s.CutoffDate.SameMonth(m) || s.PublicationDate.SameMonth(m)
}
