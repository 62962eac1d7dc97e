package printers

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/language"

	"tableflip.dev/bulletin/pkg/issue"
)

// PrettyPrint renders schedules and annexes for a terminal.
type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
	// Lang picks the localized publication title.
	Lang language.Tag
}

const notesWidth = 60

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)
	_, _ = c.Fprintf(pp.out(), " %s\n", plural(noun, count))
}

func plural(noun string, count int) string {
	switch {
	case count == 1:
		return noun
	case strings.HasSuffix(noun, "x"), strings.HasSuffix(noun, "s"):
		return noun + "es"
	default:
		return noun + "s"
	}
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Warning prints a user-facing warning.
func (pp *PrettyPrint) Warning(msg string) {
	w := color.New(color.FgHiYellow)
	_, _ = w.Fprintf(pp.out(), "! %s\n", msg)
}

// Schedule lists scheduled issues, one row each.
func (pp *PrettyPrint) Schedule(entries ...issue.ScheduledIssue) {
	if len(entries) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	cut := color.New(color.FgYellow)
	pub := color.New(color.FgGreen)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = notesWidth
	header := []any{bold.Sprint("Cutoff"), bold.Sprint("Publication"), bold.Sprint("Title")}
	if pp.ShowID {
		header = append([]any{bold.Sprint("ID")}, header...)
	}
	tbl.AddRow(header...)
	for _, s := range entries {
		row := []any{cut.Sprint(s.CutoffDate), pub.Sprint(s.PublicationDate), s.Title}
		if pp.ShowID {
			id := "-"
			if s.ID != nil {
				id = strconv.Itoa(*s.ID)
			}
			row = append([]any{y.Sprint(id)}, row...)
		}
		tbl.AddRow(row...)
	}
	if pp.ShowID {
		tbl.RightAlign(0)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// ScheduledIssue prints one entry with its notes.
func (pp *PrettyPrint) ScheduledIssue(s issue.ScheduledIssue) {
	label := "New issue"
	if s.ID != nil {
		label = fmt.Sprintf("Issue #%d", *s.ID)
	}
	if s.Title != "" {
		label += ": " + s.Title
	}
	pp.Title(label)
	f := color.New(color.Faint)
	_, _ = f.Fprintf(pp.out(), "cutoff %s, published %s\n", s.CutoffDate, s.PublicationDate)
	if notes := strings.TrimSpace(s.Notes); notes != "" {
		_, _ = fmt.Fprintln(pp.out(), wordwrap.String(notes, notesWidth))
	}
	pp.NewLine()
}

// RunningAnnexes prints the annexes running into issue target.
func (pp *PrettyPrint) RunningAnnexes(target int, annexes ...issue.RunningAnnex) {
	pp.TitleWithCount(fmt.Sprintf("Running annexes for #%d", target), len(annexes), "annex")
	if len(annexes) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	header := []any{bold.Sprint("Publication"), bold.Sprint("Since"), bold.Sprint("Position")}
	if pp.ShowID {
		header = append([]any{bold.Sprint("ID")}, header...)
	}
	tbl.AddRow(header...)
	for _, ra := range annexes {
		position := "-"
		if ra.PositionOn != nil {
			position = ra.PositionOn.String()
		}
		row := []any{ra.Publication.DisplayTitle(pp.Lang), fmt.Sprintf("#%d", ra.AnnexedTo.ID), position}
		if pp.ShowID {
			row = append([]any{y.Sprint(ra.Publication.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// ExtraLinks prints publications linked by hand on top of the running
// annexes, in the order given.
func (pp *PrettyPrint) ExtraLinks(pubs ...issue.Publication) {
	if len(pubs) == 0 {
		return
	}
	pp.Title("Also linked")
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	for i, p := range pubs {
		line := fmt.Sprintf("%d. %s", i+1, p.DisplayTitle(pp.Lang))
		if pp.ShowID && p.Title != nil {
			line += " " + y.Sprintf("(%s)", p.ID)
		}
		_, _ = fmt.Fprintln(pp.out(), line)
	}
	pp.NewLine()
}
