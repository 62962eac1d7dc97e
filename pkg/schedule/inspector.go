package schedule

import (
	"fmt"

	"tableflip.dev/bulletin/pkg/issue"
)

// FeedbackKind classifies what hovering a day means for the user.
type FeedbackKind int

const (
	// FeedbackNone is returned when nothing useful can be said, e.g. a day
	// before the cutoff while the publication date is being picked.
	FeedbackNone FeedbackKind = iota
	FeedbackFree
	FeedbackOccupied
	FeedbackSetCutoff
	FeedbackSetPublication
	FeedbackFillDetails
)

func (k FeedbackKind) String() string {
	switch k {
	case FeedbackFree:
		return "free"
	case FeedbackOccupied:
		return "occupied"
	case FeedbackSetCutoff:
		return "set-cutoff"
	case FeedbackSetPublication:
		return "set-publication"
	case FeedbackFillDetails:
		return "fill-details"
	default:
		return "none"
	}
}

// Feedback is the result of inspecting a day.
type Feedback struct {
	Kind FeedbackKind
	Date issue.Date
	// Scheduled is set for FeedbackOccupied.
	Scheduled *issue.ScheduledIssue
}

// Message renders the feedback for display.
func (f Feedback) Message() string {
	switch f.Kind {
	case FeedbackFree:
		return fmt.Sprintf("%s is free", f.Date)
	case FeedbackOccupied:
		s := f.Scheduled
		label := "issue"
		if s.ID != nil {
			label = fmt.Sprintf("issue #%d", *s.ID)
		}
		if s.Title != "" {
			label += " " + s.Title
		}
		return fmt.Sprintf("%s: cutoff %s, published %s", label, s.CutoffDate, s.PublicationDate)
	case FeedbackSetCutoff:
		return "click to set cutoff date"
	case FeedbackSetPublication:
		return "click to set publication date"
	case FeedbackFillDetails:
		return "fill in details and save"
	default:
		return ""
	}
}

// Inspect decides the feedback for day. Without a draft it reports whether
// the day is taken, checking publication dates first. With a draft it
// prompts for the next step.
func Inspect(day issue.Date, cache MonthCache, draft Draft) Feedback {
	f := Feedback{Date: day}
	switch draft.Phase() {
	case PhaseEmpty:
		if s, ok := cache.FindByDate(day); ok {
			f.Kind = FeedbackOccupied
			f.Scheduled = &s
		} else {
			f.Kind = FeedbackFree
		}
	case PhaseCutoffSet:
		if !draft.CutoffDate.IsSet() {
			f.Kind = FeedbackSetCutoff
		} else if day.After(draft.CutoffDate) {
			f.Kind = FeedbackSetPublication
		}
	case PhaseBothDatesSet:
		f.Kind = FeedbackFillDetails
	}
	return f
}

// Inspect returns the feedback for the hovered day, or a prompt to hover one.
func (s State) Inspect() (Feedback, bool) {
	if s.Hovered == nil {
		return Feedback{}, false
	}
	return Inspect(*s.Hovered, s.Cache, s.Draft), true
}

// IsPublicationDate reports whether an existing issue is published on day.
func (s State) IsPublicationDate(day issue.Date) bool {
	_, ok := s.Cache.FindByPublicationDate(day)
	return ok
}

// IsCutoffDate reports whether an existing issue has its cutoff on day.
func (s State) IsCutoffDate(day issue.Date) bool {
	_, ok := s.Cache.FindByCutoffDate(day)
	return ok
}

// IsNewPublicationDate reports whether day is the draft's publication date.
func (s State) IsNewPublicationDate(day issue.Date) bool {
	return s.Draft.Active && s.Draft.PublicationDate.IsSet() && s.Draft.PublicationDate.SameDay(day)
}

// IsNewCutoffDate reports whether day is the draft's cutoff date.
func (s State) IsNewCutoffDate(day issue.Date) bool {
	return s.Draft.Active && s.Draft.CutoffDate.IsSet() && s.Draft.CutoffDate.SameDay(day)
}
