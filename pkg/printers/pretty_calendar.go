package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/bulletin/pkg/issue"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Calendar prints the month of then with cutoff days in yellow and
// publication days in green. A day that is both uses the publication color.
func (pp *PrettyPrint) Calendar(then issue.Date, entries ...issue.ScheduledIssue) {
	days := DaysIn(then)
	marks := make([]*color.Color, days)

	cut := color.New(color.Bold, color.FgYellow)
	pub := color.New(color.Bold, color.FgGreen)
	for _, s := range entries {
		if s.CutoffDate.SameMonth(then) {
			marks[s.CutoffDate.Day()-1] = cut
		}
	}
	for _, s := range entries {
		if s.PublicationDate.SameMonth(then) {
			marks[s.PublicationDate.Day()-1] = pub
		}
	}
	pp.printMonth(then, marks)
}

func (pp *PrettyPrint) printMonth(then issue.Date, marks []*color.Color) {
	out := pp.out()
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)
	m := then.Format("January 2006")
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(out, "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	// Pad out the start of the month.
	for i := time.Sunday; i < d; i++ {
		_, _ = fmt.Fprint(out, "   ")
	}

	plain := color.New(color.Faint, color.FgWhite)
	for i := range marks {
		c := marks[i]
		if c == nil {
			c = plain
		}
		_, _ = c.Fprintf(out, "%2d ", i+1)

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(out, "\n")
		}
	}
	_, _ = fmt.Fprint(out, "\n\n")
}

// DaysIn returns the number of days in the month of then.
func DaysIn(then issue.Date) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartDay returns the weekday of the first of the month of then.
func StartDay(then issue.Date) time.Weekday {
	return then.MonthStart().Weekday()
}
