// Package calendar renders a month grid with scheduling marks.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
)

// Day describes a single day rendered in the calendar.
type Day struct {
	Day            int
	Cutoff         bool
	Publication    bool
	NewCutoff      bool
	NewPublication bool
	Disabled       bool
	IsToday        bool
	IsSelected     bool
}

// Options controls calendar styling.
type Options struct {
	HeaderStyle         lipgloss.Style
	EmptyStyle          lipgloss.Style
	DisabledStyle       lipgloss.Style
	CutoffStyle         lipgloss.Style
	PublicationStyle    lipgloss.Style
	NewCutoffStyle      lipgloss.Style
	NewPublicationStyle lipgloss.Style
	TodayStyle          lipgloss.Style
	SelectedStyle       lipgloss.Style
	ShowHeader          bool
}

// Render produces a multi-line calendar string for the given month.
func Render(month time.Time, days []Day, opts Options) string {
	if month.IsZero() {
		return ""
	}

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	daysInMonth := DaysIn(month)

	byDay := make(map[int]Day, len(days))
	for _, d := range days {
		if d.Day >= 1 && d.Day <= daysInMonth {
			byDay[d.Day] = d
		}
	}

	var lines []string
	if opts.ShowHeader {
		lines = append(lines, opts.HeaderStyle.Render("Su Mo Tu We Th Fr Sa"))
	}

	startOffset := int(first.Weekday())
	totalCells := startOffset + daysInMonth
	rows := (totalCells + 6) / 7

	for row := 0; row < rows; row++ {
		var cells []string
		for col := 0; col < 7; col++ {
			cellIdx := row*7 + col
			day := cellIdx - startOffset + 1
			if day < 1 || day > daysInMonth {
				cells = append(cells, opts.EmptyStyle.Render("  "))
				continue
			}
			cells = append(cells, renderDay(byDay[day], day, opts))
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	return strings.Join(lines, "\n")
}

// Marks on the draft win over marks from the stored schedule, and
// publication dates win over cutoffs.
func renderDay(info Day, day int, opts Options) string {
	text := fmt.Sprintf("%2d", day)

	style := opts.EmptyStyle
	switch {
	case info.NewPublication:
		style = opts.NewPublicationStyle
	case info.NewCutoff:
		style = opts.NewCutoffStyle
	case info.Publication:
		style = opts.PublicationStyle
	case info.Cutoff:
		style = opts.CutoffStyle
	case info.Disabled:
		style = opts.DisabledStyle
	}
	if info.IsToday {
		style = style.Inherit(opts.TodayStyle)
	}
	if info.IsSelected {
		style = opts.SelectedStyle.Inherit(style)
	}
	return style.Render(text)
}

// DaysIn returns the number of days in a month.
func DaysIn(month time.Time) int {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	return first.AddDate(0, 1, -1).Day()
}

// DefaultOptions returns the styling used for calendar rendering.
func DefaultOptions() Options {
	header := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	empty := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	disabled := lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	cutoff := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	publication := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	newCutoff := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Bold(true)
	newPublication := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")).Bold(true)
	today := lipgloss.NewStyle().Underline(true)
	selected := lipgloss.NewStyle().Reverse(true)
	return Options{
		HeaderStyle:         header,
		EmptyStyle:          empty,
		DisabledStyle:       disabled,
		CutoffStyle:         cutoff,
		PublicationStyle:    publication,
		NewCutoffStyle:      newCutoff,
		NewPublicationStyle: newPublication,
		TodayStyle:          today,
		SelectedStyle:       selected,
		ShowHeader:          true,
	}
}
