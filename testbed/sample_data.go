package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/store"
)

// memorySource is an in-memory schedule for previews. Saves never touch disk.
type memorySource struct {
	mu      sync.Mutex
	nextID  int
	entries store.Index[int, issue.ScheduledIssue]
	latency time.Duration
}

func newSampleSource(now time.Time, latency time.Duration) *memorySource {
	month := issue.NewDate(now).MonthStart()
	src := &memorySource{
		nextID:  40,
		entries: store.Index[int, issue.ScheduledIssue]{},
		latency: latency,
	}
	for _, s := range []issue.ScheduledIssue{
		{CutoffDate: month.AddDays(2), PublicationDate: month.AddDays(6), Title: "Early edition"},
		{CutoffDate: month.AddDays(13), PublicationDate: month.AddDays(17), Title: "Mid month", Notes: "Budget tables go in the annex."},
		{CutoffDate: month.NextMonth().AddDays(-6), PublicationDate: month.NextMonth().AddDays(1), Title: "Month end"},
	} {
		_, _ = src.AddSchedule(context.Background(), s)
	}
	return src
}

func (s *memorySource) Schedule(ctx context.Context, month issue.Date) (store.Index[int, issue.ScheduledIssue], error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := store.Index[int, issue.ScheduledIssue]{}
	for id, e := range s.entries {
		if e.InMonth(month) {
			out[id] = e
		}
	}
	return out, nil
}

func (s *memorySource) AddSchedule(ctx context.Context, e issue.ScheduledIssue) (issue.ScheduledIssue, error) {
	if err := s.wait(ctx); err != nil {
		return issue.ScheduledIssue{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if msgs := e.Validate(); len(msgs) > 0 {
		return issue.ScheduledIssue{}, &store.ValidationError{MessageList: msgs}
	}
	for id, other := range s.entries {
		if other.PublicationDate.SameDay(e.PublicationDate) || other.CutoffDate.SameDay(e.CutoffDate) {
			return issue.ScheduledIssue{}, &store.ValidationError{MessageList: []string{
				fmt.Sprintf("date conflict with issue %d", id),
			}}
		}
	}
	id := s.nextID
	s.nextID++
	e.ID = &id
	s.entries[id] = e
	return e, nil
}

func (s *memorySource) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.latency):
		return nil
	}
}

func (s *memorySource) all() []issue.ScheduledIssue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.NewQuerySet(s.entries).OrderBy(store.IntKeyAscending[issue.ScheduledIssue]).All()
}
