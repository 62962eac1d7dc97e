package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/notify"
	"tableflip.dev/bulletin/pkg/store"
)

type fakeSource struct {
	mu       sync.Mutex
	entries  store.Index[int, issue.ScheduledIssue]
	fetchErr error
	saveErr  error
	fetched  []issue.Date
	saved    []issue.ScheduledIssue
}

func (f *fakeSource) Schedule(_ context.Context, month issue.Date) (store.Index[int, issue.ScheduledIssue], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, month)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make(store.Index[int, issue.ScheduledIssue])
	for id, s := range f.entries {
		if s.InMonth(month) {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeSource) AddSchedule(_ context.Context, s issue.ScheduledIssue) (issue.ScheduledIssue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return issue.ScheduledIssue{}, f.saveErr
	}
	id := len(f.entries) + 1
	s.ID = &id
	if f.entries == nil {
		f.entries = make(store.Index[int, issue.ScheduledIssue])
	}
	f.entries[id] = s
	f.saved = append(f.saved, s)
	return s, nil
}

type manualTimers struct {
	pending []func()
	delays  []time.Duration
}

func (m *manualTimers) after(d time.Duration, f func()) func() bool {
	m.pending = append(m.pending, f)
	m.delays = append(m.delays, d)
	return func() bool { return true }
}

func (m *manualTimers) fire() {
	pending := m.pending
	m.pending = nil
	for _, f := range pending {
		f()
	}
}

func newTestDriver(t *testing.T, src *fakeSource, opts ...DriverOption) (*Driver, *manualTimers, *[]string) {
	t.Helper()
	timers := &manualTimers{}
	var warned []string
	opts = append([]DriverOption{
		WithAfterFunc(timers.after),
		WithWarner(func(msg string) { warned = append(warned, msg) }),
	}, opts...)
	d := NewDriver(src, issue.Day(2024, time.March, 5), 250*time.Millisecond, opts...)
	t.Cleanup(d.Close)
	return d, timers, &warned
}

func TestDriverStartBecomesReady(t *testing.T) {
	src := &fakeSource{entries: store.Index[int, issue.ScheduledIssue]{
		1: {ID: ptr(1), CutoffDate: issue.Day(2024, time.March, 1), PublicationDate: issue.Day(2024, time.March, 6)},
	}}
	d, timers, _ := newTestDriver(t, src)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if got := len(d.State().Cache.Entries()); got != 1 {
		t.Fatalf("entries = %d", got)
	}
	if d.State().Cache.Ready() {
		t.Fatalf("ready before the delay")
	}
	if len(timers.delays) != 1 || timers.delays[0] != 250*time.Millisecond {
		t.Fatalf("delays = %v", timers.delays)
	}
	timers.fire()
	if !d.State().Cache.Ready() {
		t.Fatalf("not ready after the delay")
	}
}

func TestDriverSchedulesIssue(t *testing.T) {
	src := &fakeSource{}
	bus := notify.NewBus()
	sub, cancel := bus.Subscribe(4)
	defer cancel()
	d, timers, warned := newTestDriver(t, src, WithPublisher(bus))
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatal(err)
	}
	timers.fire()

	for _, ev := range []Event{
		DateSelected{Date: issue.Day(2024, time.March, 10)},
		DateSelected{Date: issue.Day(2024, time.March, 14)},
		FieldEdited{Name: FieldTitle, Value: "Spring"},
		SaveRequested{},
	} {
		if err := d.Dispatch(ctx, ev); err != nil {
			t.Fatalf("Dispatch(%T) = %v", ev, err)
		}
	}
	if len(*warned) != 0 {
		t.Fatalf("warnings = %v", *warned)
	}
	saved, ok := d.LastSaved()
	if !ok || saved.ID == nil || *saved.ID != 1 || saved.Title != "Spring" {
		t.Fatalf("LastSaved() = %+v, %t", saved, ok)
	}
	if d.State().Draft.Phase() != PhaseEmpty {
		t.Fatalf("draft not cleared")
	}
	// Start plus exactly one refetch after the save.
	if len(src.fetched) != 2 {
		t.Fatalf("fetched = %v", src.fetched)
	}
	if got := len(d.State().Cache.Entries()); got != 1 {
		t.Fatalf("entries after refetch = %d", got)
	}
	select {
	case n := <-sub:
		if n.Kind != notify.NewIssueScheduled {
			t.Fatalf("notification = %s", n.Describe())
		}
	default:
		t.Fatalf("no notification published")
	}
}

func TestDriverSaveConflict(t *testing.T) {
	src := &fakeSource{saveErr: &store.ValidationError{MessageList: []string{"date conflict"}}}
	d, _, warned := newTestDriver(t, src)
	ctx := context.Background()
	for _, ev := range []Event{
		RefreshRequested{},
		DateSelected{Date: issue.Day(2024, time.March, 10)},
		DateSelected{Date: issue.Day(2024, time.March, 14)},
		SaveRequested{},
	} {
		if err := d.Dispatch(ctx, ev); err != nil {
			t.Fatalf("Dispatch(%T) = %v", ev, err)
		}
	}
	if len(*warned) != 1 || (*warned)[0] != "date conflict" {
		t.Fatalf("warnings = %v", *warned)
	}
	if d.State().Draft.Phase() != PhaseBothDatesSet {
		t.Fatalf("draft lost: %+v", d.State().Draft)
	}
	if _, ok := d.LastSaved(); ok {
		t.Fatalf("nothing should be saved")
	}
}

func TestDriverFetchErrorReturned(t *testing.T) {
	boom := errors.New("disk unplugged")
	src := &fakeSource{fetchErr: &store.FetchError{Month: "March 2024", Err: boom}}
	d, timers, warned := newTestDriver(t, src)

	err := d.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Start() = %v, want %v", err, boom)
	}
	if len(*warned) != 1 || (*warned)[0] != boom.Error() {
		t.Fatalf("warnings = %v", *warned)
	}
	if len(src.fetched) != 1 {
		t.Fatalf("fetch retried: %v", src.fetched)
	}
	timers.fire()
	if !d.State().Cache.Ready() {
		t.Fatalf("failed fetch should still settle")
	}
}

func TestDriverClosed(t *testing.T) {
	d, _, _ := newTestDriver(t, &fakeSource{})
	d.Close()
	if err := d.Dispatch(context.Background(), RefreshRequested{}); err == nil {
		t.Fatalf("Dispatch after Close should fail")
	}
}

func TestSubmit(t *testing.T) {
	src := &fakeSource{}
	saved, err := Submit(context.Background(), src, issue.ScheduledIssue{
		CutoffDate:      issue.Day(2024, time.March, 28),
		PublicationDate: issue.Day(2024, time.April, 3),
		Title:           " Easter ",
		Notes:           "print early",
	})
	if err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	if saved.ID == nil || saved.Title != "Easter" || saved.Notes != "print early" {
		t.Fatalf("saved = %+v", saved)
	}
	if !saved.PublicationDate.SameDay(issue.Day(2024, time.April, 3)) {
		t.Fatalf("publication = %s", saved.PublicationDate)
	}
}

func TestSubmitRejected(t *testing.T) {
	src := &fakeSource{saveErr: &store.ValidationError{MessageList: []string{"date conflict"}}}
	_, err := Submit(context.Background(), src, issue.ScheduledIssue{
		CutoffDate:      issue.Day(2024, time.March, 1),
		PublicationDate: issue.Day(2024, time.March, 4),
	})
	if msgs := store.MessagesOf(err); len(msgs) != 1 || msgs[0] != "date conflict" {
		t.Fatalf("Submit() = %v", err)
	}

	_, err = Submit(context.Background(), &fakeSource{}, issue.ScheduledIssue{
		CutoffDate:      issue.Day(2024, time.March, 4),
		PublicationDate: issue.Day(2024, time.March, 1),
	})
	msgs := store.MessagesOf(err)
	if len(msgs) != 2 || msgs[0] != ErrDateOrder.Error() || msgs[1] != ErrDraftIncomplete.Error() {
		t.Fatalf("out of order dates: %v", msgs)
	}
}
