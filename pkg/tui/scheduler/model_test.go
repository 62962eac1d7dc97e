package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/notify"
	"tableflip.dev/bulletin/pkg/schedule"
	"tableflip.dev/bulletin/pkg/store"
)

type fakeSource struct {
	mu      sync.Mutex
	entries store.Index[int, issue.ScheduledIssue]
	saveErr error
	saved   []issue.ScheduledIssue
	fetches int
}

func (f *fakeSource) Schedule(_ context.Context, month issue.Date) (store.Index[int, issue.ScheduledIssue], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
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
	id := 100 + len(f.saved)
	s.ID = &id
	f.saved = append(f.saved, s)
	f.entries[id] = s
	return s, nil
}

func fixedNow() time.Time { return time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC) }

// drain runs cmd and every command that results from feeding its messages
// back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatalf("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case eventMsg:
			next, nextCmd := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nextCmd)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyPressMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(k)
		m = drain(t, next.(Model), cmd)
	}
	return m
}

var (
	keyEnter = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyRight = tea.KeyPressMsg{Code: tea.KeyRight}
	keyLeft  = tea.KeyPressMsg{Code: tea.KeyLeft}
	keyDown  = tea.KeyPressMsg{Code: tea.KeyDown}
)

func char(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

func newModel(t *testing.T, src *fakeSource) Model {
	t.Helper()
	m := New(context.Background(), src, Options{Now: fixedNow, Logger: zerolog.Nop()})
	m = drain(t, m, m.Init())
	if !m.State().Cache.Ready() {
		t.Fatalf("schedule not ready after init")
	}
	return m
}

func TestScheduleIssueFromKeyboard(t *testing.T) {
	src := &fakeSource{entries: store.Index[int, issue.ScheduledIssue]{}}
	m := newModel(t, src)

	m = press(t, m, keyEnter)
	if got := m.State().Draft.CutoffDate; !got.SameDay(issue.Day(2024, time.March, 5)) {
		t.Fatalf("cutoff = %s", got)
	}
	m = press(t, m, keyRight, keyRight, keyRight, keyEnter)
	if got := m.State().Draft.PublicationDate; !got.SameDay(issue.Day(2024, time.March, 8)) {
		t.Fatalf("publication = %s", got)
	}

	m = press(t, m, char('t'))
	if m.editing != schedule.FieldTitle {
		t.Fatalf("not editing title")
	}
	m.input.SetValue("Spring")
	m = press(t, m, keyEnter)
	if m.State().Draft.Title != "Spring" {
		t.Fatalf("title = %q", m.State().Draft.Title)
	}

	fetches := src.fetches
	m = press(t, m, char('s'))
	if len(src.saved) != 1 || src.saved[0].Title != "Spring" {
		t.Fatalf("saved = %+v", src.saved)
	}
	if src.fetches != fetches+1 {
		t.Fatalf("fetches after save = %d, want %d", src.fetches, fetches+1)
	}
	if m.State().Draft.Active {
		t.Fatalf("draft not cleared")
	}
	if !m.State().IsPublicationDate(issue.Day(2024, time.March, 8)) {
		t.Fatalf("saved issue not in refreshed schedule")
	}
	if !strings.Contains(m.View(), "Issue scheduled") {
		t.Fatalf("status missing from view")
	}
}

func TestSaveConflictShowsWarning(t *testing.T) {
	src := &fakeSource{
		entries: store.Index[int, issue.ScheduledIssue]{},
		saveErr: &store.ValidationError{MessageList: []string{"date conflict"}},
	}
	m := newModel(t, src)
	m = press(t, m, keyEnter, keyRight, keyEnter, char('s'))
	if got := m.Warnings(); len(got) != 1 || got[0] != "date conflict" {
		t.Fatalf("warnings = %v", got)
	}
	if m.State().Draft.Phase() != schedule.PhaseBothDatesSet {
		t.Fatalf("draft lost")
	}
	if !strings.Contains(m.View(), "date conflict") {
		t.Fatalf("warning not rendered")
	}
}

func TestSaveFailureShowsEveryMessage(t *testing.T) {
	msgs := []string{"m1", "m2", "m3", "m4", "m5"}
	src := &fakeSource{
		entries: store.Index[int, issue.ScheduledIssue]{},
		saveErr: &store.ValidationError{MessageList: msgs},
	}
	m := newModel(t, src)
	m = press(t, m, keyEnter, keyLeft, keyEnter)
	if len(m.Warnings()) != 1 {
		t.Fatalf("bounds warning missing: %v", m.Warnings())
	}
	m = press(t, m, keyRight, keyRight, keyEnter, char('s'))

	got := m.Warnings()
	if strings.Join(got, ",") != strings.Join(msgs, ",") {
		t.Fatalf("warnings = %v, want %v", got, msgs)
	}
	view := m.View()
	for _, msg := range msgs {
		if !strings.Contains(view, msg) {
			t.Fatalf("warning %q not rendered", msg)
		}
	}
}

func TestPublicationBeforeCutoffBlocked(t *testing.T) {
	m := newModel(t, &fakeSource{entries: store.Index[int, issue.ScheduledIssue]{}})
	m = press(t, m, keyEnter, keyLeft, keyEnter)
	if m.State().Draft.PublicationDate.IsSet() {
		t.Fatalf("publication set before cutoff")
	}
	if len(m.Warnings()) != 1 {
		t.Fatalf("warnings = %v", m.Warnings())
	}
}

func TestCursorCrossesMonth(t *testing.T) {
	m := newModel(t, &fakeSource{entries: store.Index[int, issue.ScheduledIssue]{}})
	for i := 0; i < 4; i++ {
		m = press(t, m, keyDown)
	}
	if !m.State().Cache.Month().SameDay(issue.Day(2024, time.April, 1)) {
		t.Fatalf("month = %s", m.State().Cache.Month())
	}
	if !strings.Contains(m.View(), "April 2024") {
		t.Fatalf("view does not show April")
	}
	m = press(t, m, char('['))
	if !m.State().Cache.Month().SameDay(issue.Day(2024, time.March, 1)) {
		t.Fatalf("month = %s", m.State().Cache.Month())
	}
}

func TestHorizonBlocksFarDates(t *testing.T) {
	m := newModel(t, &fakeSource{entries: store.Index[int, issue.ScheduledIssue]{}})
	m.cursor = issue.Day(2025, time.April, 1)
	m = press(t, m, keyEnter)
	if m.State().Draft.Active {
		t.Fatalf("date past the horizon was accepted")
	}
}

func TestInspectorInView(t *testing.T) {
	src := &fakeSource{entries: store.Index[int, issue.ScheduledIssue]{}}
	id := 7
	src.entries[id] = issue.ScheduledIssue{ID: &id, CutoffDate: issue.Day(2024, time.March, 1), PublicationDate: issue.Day(2024, time.March, 6), Title: "Early"}
	m := newModel(t, src)
	m = press(t, m, keyRight)
	if !strings.Contains(m.View(), "#7 Early") {
		t.Fatalf("inspector text missing:\n%s", m.View())
	}
	m = press(t, m, keyEnter)
	if !strings.Contains(m.View(), "pick a day after the cutoff") {
		t.Fatalf("cutoff hint missing:\n%s", m.View())
	}
	m = press(t, m, keyRight)
	if !strings.Contains(m.View(), "click to set publication date") {
		t.Fatalf("draft prompt missing:\n%s", m.View())
	}
}

func TestNotificationsRefetchAndFlagChanges(t *testing.T) {
	src := &fakeSource{entries: store.Index[int, issue.ScheduledIssue]{}}
	m := newModel(t, src)
	ch := make(chan notify.Notification)
	close(ch)
	m.opts.Notifications = ch

	before := src.fetches
	next, cmd := m.Update(notificationMsg{n: notify.Notification{Kind: notify.CurrentIssueChanged}, ok: true})
	m = drain(t, next.(Model), cmd)
	if src.fetches != before+1 {
		t.Fatalf("fetches = %d, want %d", src.fetches, before+1)
	}

	next, cmd = m.Update(notificationMsg{n: notify.Notification{Kind: notify.RemoteStorageStatus, HasLocalChanges: true}, ok: true})
	m = drain(t, next.(Model), cmd)
	if !strings.Contains(m.View(), "local changes") {
		t.Fatalf("local change marker missing:\n%s", m.View())
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newModel(t, &fakeSource{entries: store.Index[int, issue.ScheduledIssue]{}})
	m = press(t, m, char('?'))
	if !strings.Contains(m.View(), "Scheduling issues") {
		t.Fatalf("help not shown:\n%s", m.View())
	}
	// Keys go to the overlay while it is open.
	cursor := m.Cursor()
	m = press(t, m, keyRight)
	if !m.Cursor().SameDay(cursor) {
		t.Fatalf("cursor moved behind the help overlay")
	}
	m = press(t, m, char('?'))
	if strings.Contains(m.View(), "Scheduling issues") {
		t.Fatalf("help still shown")
	}
}
