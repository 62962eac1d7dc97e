// Package schedule implements the calendar scheduling of new bulletin
// issues: the month schedule cache, the two-click draft, and the feedback
// shown for a hovered day.
//
// All state transitions go through Update, a pure function from a State and
// an Event to the next State and the Commands an outer driver must run.
// Command results come back as further Events.
package schedule

import (
	"fmt"
	"time"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/notify"
	"tableflip.dev/bulletin/pkg/store"
)

// DefaultReadyDelay is how long the schedule stays "not ready" after a fetch
// completes, letting the rest of the view settle.
const DefaultReadyDelay = time.Second

// State is the scheduler's complete state.
type State struct {
	Cache   MonthCache
	Draft   Draft
	Saving  bool
	Hovered *issue.Date
	// Selected is the last date picked on the calendar.
	Selected issue.Date
	// DraftGen identifies the current draft. It advances whenever a draft
	// is discarded, so a save result only clears the draft it was made from.
	DraftGen uint64

	ReadyDelay time.Duration

	savingGen uint64
}

// NewState returns the initial state for the month containing today, along
// with the fetch that loads it.
func NewState(today issue.Date, readyDelay time.Duration) (State, []Command) {
	s := State{Selected: today, ReadyDelay: readyDelay}
	token := s.Cache.SetMonth(today)
	return s, []Command{FetchSchedule{Month: s.Cache.Month(), Token: token}}
}

// Event is an input to Update.
type Event interface{ isEvent() }

// MonthSelected switches the calendar to the month containing Month.
type MonthSelected struct{ Month issue.Date }

// RefreshRequested refetches the current month.
type RefreshRequested struct{}

// DateSelected is a calendar click.
type DateSelected struct{ Date issue.Date }

// FieldEdited changes an auxiliary draft field.
type FieldEdited struct {
	Name  string
	Value string
}

// SaveRequested asks to persist the draft.
type SaveRequested struct{}

// CancelRequested discards the draft.
type CancelRequested struct{}

// DayHovered updates the hovered day; nil means the pointer left the grid.
type DayHovered struct{ Date *issue.Date }

// ScheduleFetched carries the result of a FetchSchedule command.
type ScheduleFetched struct {
	Token   Token
	Entries store.Index[int, issue.ScheduledIssue]
	Err     error
}

// ReadyElapsed fires when the settling delay of a fetch has passed.
type ReadyElapsed struct{ Token Token }

// SaveCompleted carries the result of a PersistSchedule command. Gen must
// be copied from the command.
type SaveCompleted struct {
	Gen   uint64
	Saved issue.ScheduledIssue
	Err   error
}

func (MonthSelected) isEvent()    {}
func (RefreshRequested) isEvent() {}
func (DateSelected) isEvent()     {}
func (FieldEdited) isEvent()      {}
func (SaveRequested) isEvent()    {}
func (CancelRequested) isEvent()  {}
func (DayHovered) isEvent()       {}
func (ScheduleFetched) isEvent()  {}
func (ReadyElapsed) isEvent()     {}
func (SaveCompleted) isEvent()    {}

// Command is an effect requested by Update.
type Command interface{ isCommand() }

// FetchSchedule loads the schedule of Month; the result must be fed back as
// ScheduleFetched with the same Token.
type FetchSchedule struct {
	Month issue.Date
	Token Token
}

// StartReadyTimer asks for ReadyElapsed{Token} after the delay.
type StartReadyTimer struct {
	Token Token
	After time.Duration
}

// PersistSchedule saves a new scheduled issue; the result must be fed back
// as SaveCompleted carrying the same Gen.
type PersistSchedule struct {
	Gen   uint64
	Issue issue.ScheduledIssue
}

// Notify publishes a fire-and-forget notification.
type Notify struct{ Notification notify.Notification }

// Warn shows a message to the user.
type Warn struct{ Message string }

func (FetchSchedule) isCommand()   {}
func (StartReadyTimer) isCommand() {}
func (PersistSchedule) isCommand() {}
func (Notify) isCommand()          {}
func (Warn) isCommand()            {}

// Update applies ev to s. It never mutates shared data: the returned State
// is independent of the input.
func Update(s State, ev Event) (State, []Command) {
	switch ev := ev.(type) {
	case MonthSelected:
		return s.selectMonth(ev.Month)

	case RefreshRequested:
		token := s.Cache.Refetch()
		return s, []Command{FetchSchedule{Month: s.Cache.Month(), Token: token}}

	case DateSelected:
		var cmds []Command
		draft, err := s.Draft.Select(ev.Date)
		if s.draftLocked() {
			err = ErrSaveInFlight
		}
		if err != nil {
			cmds = append(cmds, Warn{Message: err.Error()})
		} else {
			s.Draft = draft
		}
		s.Selected = ev.Date
		if !ev.Date.SameMonth(s.Cache.Month()) {
			var fetch []Command
			s, fetch = s.selectMonth(ev.Date)
			cmds = append(cmds, fetch...)
		}
		return s, cmds

	case FieldEdited:
		draft, err := s.Draft.Edit(ev.Name, ev.Value)
		if s.draftLocked() {
			err = ErrSaveInFlight
		}
		if err != nil {
			return s, []Command{Warn{Message: err.Error()}}
		}
		s.Draft = draft
		return s, nil

	case SaveRequested:
		return s.save()

	case CancelRequested:
		s.discardDraft()
		return s, nil

	case DayHovered:
		if ev.Date == nil {
			s.Hovered = nil
		} else {
			d := *ev.Date
			s.Hovered = &d
		}
		return s, nil

	case ScheduleFetched:
		if ev.Err != nil {
			if !s.Cache.Fail(ev.Token, ev.Err) {
				return s, nil
			}
			cmds := warnAll(ev.Err)
			return s, append(cmds, StartReadyTimer{Token: ev.Token, After: s.readyDelay()})
		}
		if !s.Cache.Apply(ev.Token, ev.Entries) {
			return s, nil
		}
		return s, []Command{StartReadyTimer{Token: ev.Token, After: s.readyDelay()}}

	case ReadyElapsed:
		s.Cache.MarkReady(ev.Token)
		return s, nil

	case SaveCompleted:
		if !s.Saving || ev.Gen != s.savingGen {
			return s, nil
		}
		s.Saving = false
		current := ev.Gen == s.DraftGen
		if ev.Err != nil {
			if !current {
				// The draft was cancelled while saving; nothing is left to correct.
				return s, nil
			}
			return s, warnAll(ev.Err)
		}
		if current {
			s.discardDraft()
		}
		token := s.Cache.Refetch()
		return s, []Command{
			Notify{Notification: notify.Notification{Kind: notify.NewIssueScheduled}},
			FetchSchedule{Month: s.Cache.Month(), Token: token},
		}
	}
	return s, nil
}

func (s State) selectMonth(month issue.Date) (State, []Command) {
	token := s.Cache.SetMonth(month)
	return s, []Command{FetchSchedule{Month: s.Cache.Month(), Token: token}}
}

func (s State) save() (State, []Command) {
	if s.Saving {
		return s, []Command{Warn{Message: ErrSaveInFlight.Error()}}
	}
	switch s.Draft.Phase() {
	case PhaseEmpty:
		return s, []Command{Warn{Message: ErrNoDraft.Error()}}
	case PhaseCutoffSet:
		return s, []Command{Warn{Message: ErrDraftIncomplete.Error()}}
	}
	if !s.Draft.CutoffDate.Before(s.Draft.PublicationDate) {
		// Select refuses out-of-order dates, so this is a bug in the caller
		// or in Select itself.
		panic(fmt.Sprintf("schedule: draft reached save with cutoff %s not before publication %s",
			s.Draft.CutoffDate, s.Draft.PublicationDate))
	}
	s.Saving = true
	s.savingGen = s.DraftGen
	return s, []Command{PersistSchedule{Gen: s.DraftGen, Issue: s.Draft.ScheduledIssue()}}
}

// draftLocked reports whether the draft is the one being persisted.
func (s State) draftLocked() bool {
	return s.Saving && s.savingGen == s.DraftGen
}

func (s *State) discardDraft() {
	s.Draft = Draft{}
	s.DraftGen++
}

func (s State) readyDelay() time.Duration {
	if s.ReadyDelay < 0 {
		return 0
	}
	return s.ReadyDelay
}

func warnAll(err error) []Command {
	msgs := store.MessagesOf(err)
	cmds := make([]Command, 0, len(msgs))
	for _, msg := range msgs {
		cmds = append(cmds, Warn{Message: msg})
	}
	return cmds
}
