// Package scheduler is the terminal calendar for scheduling new issues.
//
// The model owns a schedule.State and feeds every key press and every
// command result through schedule.Update; the commands it gets back are
// turned into tea.Cmds.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/notify"
	"tableflip.dev/bulletin/pkg/schedule"
	"tableflip.dev/bulletin/pkg/tui/components/calendar"
	"tableflip.dev/bulletin/pkg/tui/components/help"
	"tableflip.dev/bulletin/pkg/tui/components/panel"
	"tableflip.dev/bulletin/pkg/tui/theme"
)

// Options configures a Model.
type Options struct {
	ReadyDelay   time.Duration
	HorizonYears int
	Publisher    notify.Publisher
	Logger       zerolog.Logger
	// Notifications, when set, is watched for changes made elsewhere.
	Notifications <-chan notify.Notification
	// Now defaults to time.Now.
	Now func() time.Time
}

// eventMsg carries a schedule event back into Update.
type eventMsg struct{ ev schedule.Event }

type notificationMsg struct {
	n  notify.Notification
	ok bool
}

// Model is the bubbletea model for the scheduler.
type Model struct {
	ctx  context.Context
	src  schedule.SchedulePersisterSource
	pub  notify.Publisher
	log  zerolog.Logger
	now  func() time.Time
	opts Options

	state   schedule.State
	initial []schedule.Command
	cursor  issue.Date

	editing  string
	input    textinput.Model
	overlay  *help.Model
	warnings []string
	status   string
	unsynced bool

	width  int
	height int
	theme  theme.Theme
	cal    calendar.Options
}

// New returns a scheduler showing the current month.
func New(ctx context.Context, src schedule.SchedulePersisterSource, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Publisher == nil {
		opts.Publisher = notify.Discard
	}
	if opts.HorizonYears <= 0 {
		opts.HorizonYears = 1
	}
	today := issue.NewDate(opts.Now())
	state, initial := schedule.NewState(today, opts.ReadyDelay)

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Prompt = ""

	return Model{
		ctx:     ctx,
		src:     src,
		pub:     opts.Publisher,
		log:     opts.Logger,
		now:     opts.Now,
		opts:    opts,
		state:   state,
		initial: initial,
		cursor:  today,
		input:   ti,
		theme:   theme.Default(),
		cal:     calendar.DefaultOptions(),
	}
}

// State returns the scheduler state.
func (m Model) State() schedule.State { return m.state }

// Cursor returns the day under the cursor.
func (m Model) Cursor() issue.Date { return m.cursor }

// Warnings returns the warnings of the latest batch, in the order they were
// raised.
func (m Model) Warnings() []string { return append([]string(nil), m.warnings...) }

// Init loads the current month and hovers today.
func (m Model) Init() tea.Cmd {
	hover := m.cursor
	return tea.Batch(m.run(m.initial), dispatch(schedule.DayHovered{Date: &hover}), m.listen())
}

func (m Model) listen() tea.Cmd {
	ch := m.opts.Notifications
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		return notificationMsg{n: n, ok: ok}
	}
}

func dispatch(ev schedule.Event) tea.Cmd {
	return func() tea.Msg { return eventMsg{ev: ev} }
}

// Update handles messages and keybindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.overlay != nil {
			m.overlay.SetSize(m.width, m.height-1)
		}
		return m, nil
	case eventMsg:
		return m.apply(msg.ev)
	case notificationMsg:
		if !msg.ok {
			return m, nil
		}
		return m.notified(msg.n)
	case tea.KeyPressMsg:
		if m.overlay != nil {
			return m.updateHelp(msg)
		}
		if m.editing != "" {
			return m.updateEditing(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) apply(ev schedule.Event) (Model, tea.Cmd) {
	var cmds []schedule.Command
	m.state, cmds = schedule.Update(m.state, ev)
	cmd := m.run(cmds)
	return m, cmd
}

// notified reacts to changes published by the workspace. Issues scheduled by
// this model already trigger their own refetch.
func (m Model) notified(n notify.Notification) (tea.Model, tea.Cmd) {
	m.log.Debug().Str("notification", n.Describe()).Msg("received")
	var cmd tea.Cmd
	switch n.Kind {
	case notify.CurrentIssueChanged:
		m, cmd = m.apply(schedule.RefreshRequested{})
	case notify.RemoteStorageStatus:
		m.unsynced = n.HasLocalChanges
	}
	return m, tea.Batch(cmd, m.listen())
}

func (m Model) updateHelp(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q":
		m.overlay = nil
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.overlay, cmd = m.overlay.Update(msg)
	return m, cmd
}

func (m Model) updateEditing(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		field, value := m.editing, m.input.Value()
		m.editing = ""
		m.input.Reset()
		m.input.Blur()
		return m.apply(schedule.FieldEdited{Name: field, Value: value})
	case "esc":
		m.editing = ""
		m.input.Reset()
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateNormal(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		w, h := m.width, m.height-1
		if w == 0 {
			w, h = 80, 24
		}
		m.overlay = help.New(w, h)
		return m, nil
	case "left", "h":
		return m.moveCursor(m.cursor.AddDays(-1))
	case "right", "l":
		return m.moveCursor(m.cursor.AddDays(1))
	case "up", "k":
		return m.moveCursor(m.cursor.AddDays(-7))
	case "down", "j":
		return m.moveCursor(m.cursor.AddDays(7))
	case "[":
		return m.moveCursor(m.cursor.PrevMonth())
	case "]":
		return m.moveCursor(m.cursor.NextMonth())
	case "enter", "space", " ":
		return m.selectCursor()
	case "t":
		return m.beginEdit(schedule.FieldTitle, m.state.Draft.Title)
	case "n":
		return m.beginEdit(schedule.FieldNotes, m.state.Draft.Notes)
	case "s":
		m.status = "Saving…"
		return m.apply(schedule.SaveRequested{})
	case "esc":
		m.status = "Draft discarded"
		return m.apply(schedule.CancelRequested{})
	case "r":
		return m.apply(schedule.RefreshRequested{})
	}
	return m, nil
}

func (m Model) moveCursor(to issue.Date) (tea.Model, tea.Cmd) {
	m.cursor = to
	hover := to
	var batch []tea.Cmd
	var cmd tea.Cmd
	m, cmd = m.apply(schedule.DayHovered{Date: &hover})
	batch = append(batch, cmd)
	if !to.SameMonth(m.state.Cache.Month()) {
		m, cmd = m.apply(schedule.MonthSelected{Month: to})
		batch = append(batch, cmd)
	}
	return m, tea.Batch(batch...)
}

func (m Model) selectCursor() (tea.Model, tea.Cmd) {
	if min, ok := m.state.Draft.MinDate(); ok && m.state.Draft.Phase() == schedule.PhaseCutoffSet && !m.cursor.After(min) {
		m.warn(fmt.Sprintf("pick a publication date after %s", min))
		return m, nil
	}
	if max := m.state.Draft.MaxDate(m.now(), m.opts.HorizonYears); m.cursor.After(max) {
		m.warn(fmt.Sprintf("dates after %s cannot be scheduled", max))
		return m, nil
	}
	m.status = ""
	return m.apply(schedule.DateSelected{Date: m.cursor})
}

func (m Model) beginEdit(field, value string) (tea.Model, tea.Cmd) {
	if m.state.Draft.Phase() != schedule.PhaseBothDatesSet {
		// Let the state machine produce the warning.
		return m.apply(schedule.FieldEdited{Name: field, Value: value})
	}
	m.editing = field
	m.input.SetValue(value)
	m.input.Placeholder = field
	cmd := m.input.Focus()
	return m, cmd
}

func (m *Model) warn(msg string) {
	m.showWarnings([]string{msg})
}

// showWarnings replaces the footer warnings with one batch. A save failure
// arrives as one batch, so all of its messages stay visible together.
func (m *Model) showWarnings(batch []string) {
	for _, msg := range batch {
		m.log.Warn().Msg(msg)
	}
	m.warnings = batch
}

// run turns schedule commands into tea commands. Warnings are applied to the
// model immediately; everything else runs asynchronously.
func (m *Model) run(cmds []schedule.Command) tea.Cmd {
	var (
		out   []tea.Cmd
		warns []string
	)
	for _, c := range cmds {
		switch c := c.(type) {
		case schedule.FetchSchedule:
			out = append(out, m.fetch(c))
		case schedule.PersistSchedule:
			out = append(out, m.persist(c))
		case schedule.StartReadyTimer:
			token := c.Token
			out = append(out, tea.Tick(c.After, func(time.Time) tea.Msg {
				return eventMsg{ev: schedule.ReadyElapsed{Token: token}}
			}))
		case schedule.Notify:
			n := c.Notification
			if n.Kind == notify.NewIssueScheduled {
				m.status = "Issue scheduled"
			}
			pub := m.pub
			out = append(out, func() tea.Msg {
				pub.Publish(n)
				return nil
			})
		case schedule.Warn:
			warns = append(warns, c.Message)
		}
	}
	if len(warns) > 0 {
		m.showWarnings(warns)
	}
	return tea.Batch(out...)
}

func (m *Model) fetch(c schedule.FetchSchedule) tea.Cmd {
	ctx, src, log := m.ctx, m.src, m.log
	return func() tea.Msg {
		entries, err := src.Schedule(ctx, c.Month)
		if err != nil {
			log.Error().Err(err).Str("month", c.Month.Format("2006-01")).Msg("fetch schedule")
		}
		return eventMsg{ev: schedule.ScheduleFetched{Token: c.Token, Entries: entries, Err: err}}
	}
}

func (m *Model) persist(c schedule.PersistSchedule) tea.Cmd {
	ctx, src := m.ctx, m.src
	return func() tea.Msg {
		saved, err := src.AddSchedule(ctx, c.Issue)
		return eventMsg{ev: schedule.SaveCompleted{Gen: c.Gen, Saved: saved, Err: err}}
	}
}

// View renders the calendar, the day feedback, the draft and the footer.
func (m Model) View() string {
	if m.overlay != nil {
		return m.overlay.View() + "\n" + m.theme.Footer.Help.Render(m.helpLine())
	}
	month := m.state.Cache.Month()
	title := m.theme.Panel.Title.Render(month.Format("January 2006"))
	if !m.state.Cache.Ready() {
		title += " " + m.theme.Panel.Muted.Render("loading…")
	}

	grid := calendar.Render(month.Time, m.days(), m.cal)
	left := m.theme.Panel.Frame.Render(title + "\n\n" + grid)
	right := m.sidebar()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	var footer []string
	for _, w := range m.warnings {
		footer = append(footer, m.theme.Footer.Warning.Render("! "+w))
	}
	status := m.status
	if m.unsynced {
		status = strings.TrimSpace(status + "  ● local changes")
	}
	if status != "" {
		footer = append(footer, m.theme.Footer.Status.Render(status))
	}
	footer = append(footer, m.theme.Footer.Help.Render(m.helpLine()))
	return body + "\n" + strings.Join(footer, "\n")
}

func (m Model) days() []calendar.Day {
	month := m.state.Cache.Month()
	today := issue.NewDate(m.now())
	min, hasMin := m.state.Draft.MinDate()
	max := m.state.Draft.MaxDate(m.now(), m.opts.HorizonYears)

	n := calendar.DaysIn(month.Time)
	days := make([]calendar.Day, 0, n)
	for d := 1; d <= n; d++ {
		date := month.AddDays(d - 1)
		days = append(days, calendar.Day{
			Day:            d,
			Cutoff:         m.state.IsCutoffDate(date),
			Publication:    m.state.IsPublicationDate(date),
			NewCutoff:      m.state.IsNewCutoffDate(date),
			NewPublication: m.state.IsNewPublicationDate(date),
			Disabled:       (hasMin && m.state.Draft.Phase() == schedule.PhaseCutoffSet && !date.After(min)) || date.After(max),
			IsToday:        date.SameDay(today),
			IsSelected:     date.SameDay(m.cursor),
		})
	}
	return days
}

func (m Model) sidebar() string {
	width := 36

	day := panel.New(m.theme.Panel)
	day.SetWidth(width)
	if f, ok := m.state.Inspect(); ok {
		msg := f.Message()
		if msg == "" {
			msg = "pick a day after the cutoff"
		}
		day.SetContent(f.Date.Format("Mon Jan 2"), strings.Split(wordwrap.String(msg, width), "\n"))
	} else {
		day.SetContent("", []string{m.theme.Panel.Muted.Render("hover over a day")})
	}

	d := m.state.Draft
	var lines []string
	if !d.Active {
		lines = append(lines, m.theme.Panel.Muted.Render("press enter to start"))
	} else {
		lines = append(lines, fmt.Sprintf("cutoff:      %s", dateOrDash(d.CutoffDate)))
		lines = append(lines, fmt.Sprintf("publication: %s", dateOrDash(d.PublicationDate)))
		if m.editing == schedule.FieldTitle {
			lines = append(lines, "title:       "+m.input.View())
		} else {
			lines = append(lines, "title:       "+d.Title)
		}
		if m.editing == schedule.FieldNotes {
			lines = append(lines, "notes:       "+m.input.View())
		} else if d.Notes != "" {
			lines = append(lines, "notes:")
			lines = append(lines, strings.Split(wordwrap.String(d.Notes, width), "\n")...)
		}
	}
	if m.state.Saving {
		lines = append(lines, "", m.theme.Panel.Muted.Render("saving…"))
	}
	draft := panel.New(m.theme.Panel)
	draft.SetWidth(width)
	draft.SetContent("New issue", lines)

	top, _ := day.View()
	bottom, _ := draft.View()
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func dateOrDash(d issue.Date) string {
	if !d.IsSet() {
		return "-"
	}
	return d.String()
}

func (m Model) helpLine() string {
	switch {
	case m.overlay != nil:
		return "↑/↓ scroll · ? close"
	case m.editing != "":
		return "enter apply · esc cancel"
	}
	return "←↓↑→ move · enter select · t title · n notes · s save · esc discard · [/] month · ? help · q quit"
}

// Run starts the scheduler UI and blocks until it exits.
func Run(ctx context.Context, src schedule.SchedulePersisterSource, opts Options) error {
	p := tea.NewProgram(New(ctx, src, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
