package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/bulletin/pkg/issue"
)

var (
	// ErrDateOrder rejects a publication date that is not after the cutoff.
	ErrDateOrder = errors.New("schedule: publication date must be after the cutoff date")
	// ErrNoDraft is returned for draft operations while no draft exists.
	ErrNoDraft = errors.New("schedule: no issue is being scheduled")
	// ErrDraftIncomplete is returned when both dates are needed but missing.
	ErrDraftIncomplete = errors.New("schedule: select cutoff and publication dates first")
	// ErrSaveInFlight rejects a save while the previous one is outstanding.
	ErrSaveInFlight = errors.New("schedule: a save is already in progress")
	// ErrUnknownField rejects edits to fields the draft does not have.
	ErrUnknownField = errors.New("schedule: unknown field")
)

// Phase is the progress of a draft through date selection.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseCutoffSet
	PhaseBothDatesSet
)

func (p Phase) String() string {
	switch p {
	case PhaseCutoffSet:
		return "cutoff-set"
	case PhaseBothDatesSet:
		return "both-dates-set"
	default:
		return "empty"
	}
}

// Field names accepted by Draft.Edit.
const (
	FieldTitle = "title"
	FieldNotes = "notes"
)

// Draft is a scheduled issue under construction. The zero value is the empty
// draft.
type Draft struct {
	Active          bool
	CutoffDate      issue.Date
	PublicationDate issue.Date
	Title           string
	Notes           string
}

// Phase derives the draft's phase from the dates set so far.
func (d Draft) Phase() Phase {
	switch {
	case !d.Active:
		return PhaseEmpty
	case d.PublicationDate.IsSet():
		return PhaseBothDatesSet
	default:
		return PhaseCutoffSet
	}
}

// Select applies a calendar click: the first date becomes the cutoff, the
// second the publication date. Once both dates are set further clicks are
// ignored. A rejected click leaves the draft unchanged.
func (d Draft) Select(day issue.Date) (Draft, error) {
	switch {
	case !d.Active:
		return Draft{Active: true, CutoffDate: day}, nil
	case !d.CutoffDate.IsSet():
		d.CutoffDate = day
		return d, nil
	case !d.PublicationDate.IsSet():
		if !day.After(d.CutoffDate) {
			return d, ErrDateOrder
		}
		d.PublicationDate = day
		return d, nil
	default:
		return d, nil
	}
}

// Edit sets an auxiliary field. Both dates must be chosen first.
func (d Draft) Edit(field, value string) (Draft, error) {
	if d.Phase() != PhaseBothDatesSet {
		if !d.Active {
			return d, ErrNoDraft
		}
		return d, ErrDraftIncomplete
	}
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldTitle:
		d.Title = value
	case FieldNotes:
		d.Notes = value
	default:
		return d, fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	return d, nil
}

// MinDate is the earliest date the calendar should accept.
func (d Draft) MinDate() (issue.Date, bool) {
	if d.Active && d.CutoffDate.IsSet() {
		return d.CutoffDate, true
	}
	return issue.Date{}, false
}

// MaxDate is the latest date the calendar should accept: the chosen
// publication date, or horizonYears from now.
func (d Draft) MaxDate(now time.Time, horizonYears int) issue.Date {
	if d.Active && d.PublicationDate.IsSet() {
		return d.PublicationDate
	}
	if horizonYears <= 0 {
		horizonYears = 1
	}
	return issue.NewDate(now.AddDate(horizonYears, 0, 0))
}

// ScheduledIssue converts the draft into a record ready to persist.
func (d Draft) ScheduledIssue() issue.ScheduledIssue {
	return issue.ScheduledIssue{
		CutoffDate:      d.CutoffDate,
		PublicationDate: d.PublicationDate,
		Title:           strings.TrimSpace(d.Title),
		Notes:           strings.TrimSpace(d.Notes),
	}
}
