package calendar

import (
	"strings"
	"testing"
	"time"
)

func TestRenderLayout(t *testing.T) {
	month := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	out := Render(month, []Day{{Day: 8, Publication: true}, {Day: 4, Cutoff: true, IsSelected: true}}, DefaultOptions())
	lines := strings.Split(out, "\n")
	// Header plus six weeks: March 2024 starts on a Friday.
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
	for _, want := range []string{"Su Mo Tu We Th Fr Sa", " 1", "31"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestRenderZeroMonth(t *testing.T) {
	if got := Render(time.Time{}, nil, DefaultOptions()); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
}

func TestDaysIn(t *testing.T) {
	if got := DaysIn(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)); got != 29 {
		t.Fatalf("DaysIn(2024-02) = %d", got)
	}
}
