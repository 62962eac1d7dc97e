package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"

	"tableflip.dev/bulletin/pkg/issue"
)

func init() {
	color.NoColor = true
}

func TestSchedule(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{ShowID: true, Out: &buf}
	id := 12
	pp.Schedule(
		issue.ScheduledIssue{ID: &id, CutoffDate: issue.MustDate("2024-03-04"), PublicationDate: issue.MustDate("2024-03-08"), Title: "Spring"},
		issue.ScheduledIssue{CutoffDate: issue.MustDate("2024-03-18"), PublicationDate: issue.MustDate("2024-03-22")},
	)
	out := buf.String()
	for _, want := range []string{"Cutoff", "12", "2024-03-04", "2024-03-08", "Spring", "2024-03-22"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestScheduleEmpty(t *testing.T) {
	var buf bytes.Buffer
	(&PrettyPrint{Out: &buf}).Schedule()
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestRunningAnnexes(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, Lang: language.German}
	pos := issue.MustDate("2024-02-01")
	pp.RunningAnnexes(12, issue.RunningAnnex{
		Publication: issue.Publication{ID: "PUB-A", Title: issue.LocalizedText{"en": "Notice", "de": "Bekanntmachung"}},
		AnnexedTo:   issue.Issue{ID: 5},
		PositionOn:  &pos,
	})
	out := buf.String()
	for _, want := range []string{"#12", "1 annex", "Bekanntmachung", "#5", "2024-02-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCalendar(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Calendar(issue.Day(2024, time.February, 1))
	out := buf.String()
	if !strings.Contains(out, "February 2024") || !strings.Contains(out, "29") {
		t.Fatalf("calendar:\n%s", out)
	}
	if DaysIn(issue.Day(2023, time.February, 10)) != 28 {
		t.Fatalf("DaysIn(2023-02)")
	}
	if StartDay(issue.Day(2024, time.March, 20)) != time.Friday {
		t.Fatalf("StartDay(2024-03)")
	}
}

func TestExtraLinks(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, ShowID: true}
	pp.ExtraLinks(
		issue.Publication{ID: "PUB-C", Title: issue.LocalizedText{"en": "Tender"}},
		issue.Publication{ID: "PUB-X"},
	)
	out := buf.String()
	for _, want := range []string{"Also linked", "1. Tender (PUB-C)", "2. PUB-X"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	pp.ExtraLinks()
	if buf.Len() != 0 {
		t.Fatalf("empty list printed %q", buf.String())
	}
}
