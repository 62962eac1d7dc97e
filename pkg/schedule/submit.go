package schedule

import (
	"context"
	"time"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/store"
)

// Submit schedules s by walking a fresh Driver through the steps a user
// takes on the calendar: pick the cutoff, pick the publication date, fill in
// the details and save. Any warnings raised on the way are returned as a
// store.ValidationError when nothing was saved.
func Submit(ctx context.Context, src SchedulePersisterSource, s issue.ScheduledIssue, opts ...DriverOption) (issue.ScheduledIssue, error) {
	if !s.CutoffDate.IsSet() || !s.PublicationDate.IsSet() {
		return issue.ScheduledIssue{}, &store.ValidationError{MessageList: s.Validate()}
	}
	var warnings []string
	opts = append(opts,
		WithWarner(func(msg string) { warnings = append(warnings, msg) }),
		WithAfterFunc(func(time.Duration, func()) func() bool { return func() bool { return true } }),
	)
	d := NewDriver(src, s.CutoffDate, 0, opts...)
	defer d.Close()

	events := []Event{
		RefreshRequested{},
		DateSelected{Date: s.CutoffDate},
		DateSelected{Date: s.PublicationDate},
	}
	if s.Title != "" {
		events = append(events, FieldEdited{Name: FieldTitle, Value: s.Title})
	}
	if s.Notes != "" {
		events = append(events, FieldEdited{Name: FieldNotes, Value: s.Notes})
	}
	events = append(events, SaveRequested{})

	for _, ev := range events {
		if err := d.Dispatch(ctx, ev); err != nil {
			return issue.ScheduledIssue{}, err
		}
	}
	if saved, ok := d.LastSaved(); ok {
		return saved, nil
	}
	return issue.ScheduledIssue{}, &store.ValidationError{MessageList: warnings}
}
