package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/tui/components/calendar"
)

func newCalendarCmd(opts *options) *cobra.Command {
	var (
		monthFlag string
		selected  int
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Preview the calendar component",
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := time.Parse("January 2006", monthFlag)
			if err != nil {
				return fmt.Errorf("invalid month %q: %w", monthFlag, err)
			}
			return runCalendar(*opts, issue.NewDate(month), selected)
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", time.Now().Format("January 2006"), "month to render (e.g. \"March 2026\")")
	cmd.Flags().IntVar(&selected, "day", 1, "highlighted day number")
	return cmd
}

func runCalendar(opts options, month issue.Date, selectedDay int) error {
	model := &calendarModel{
		testbedModel: newTestbedModel(opts),
		month:        month,
		cursor:       month.AddDays(selectedDay - 1),
		src:          newSampleSource(month.Time, 0),
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type calendarModel struct {
	testbedModel
	month  issue.Date
	cursor issue.Date
	src    *memorySource
}

func (m *calendarModel) Init() tea.Cmd { return nil }

func (m *calendarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := m.testbedModel.Update(msg)
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "left", "h":
			m.cursor = m.cursor.AddDays(-1)
		case "right", "l":
			m.cursor = m.cursor.AddDays(1)
		case "up", "k":
			m.cursor = m.cursor.AddDays(-7)
		case "down", "j":
			m.cursor = m.cursor.AddDays(7)
		}
		m.month = m.cursor.MonthStart()
	}
	return m, cmd
}

func (m *calendarModel) View() string {
	entries := m.src.all()
	n := calendar.DaysIn(m.month.Time)
	days := make([]calendar.Day, 0, n)
	for d := 1; d <= n; d++ {
		date := m.month.AddDays(d - 1)
		day := calendar.Day{
			Day:        d,
			IsToday:    date.SameDay(issue.NewDate(time.Now())),
			IsSelected: date.SameDay(m.cursor),
		}
		for _, e := range entries {
			day.Cutoff = day.Cutoff || e.CutoffDate.SameDay(date)
			day.Publication = day.Publication || e.PublicationDate.SameDay(date)
		}
		days = append(days, day)
	}
	content := m.month.Format("January 2006") + "\n\n" + calendar.Render(m.month.Time, days, calendar.DefaultOptions())
	return m.composeView(content)
}
