package help

import (
	"strings"
	"testing"
)

func TestHelpRendersKeys(t *testing.T) {
	m := New(80, 40)
	got := m.Content()
	for _, want := range []string{"Scheduling issues", "cutoff date", "save the new issue"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("ANSI escapes left in content")
	}
}

func TestSetSizeClamps(t *testing.T) {
	m := New(1, 1)
	if m.width != 32 || m.height != 8 {
		t.Fatalf("size = %dx%d, want 32x8", m.width, m.height)
	}
}
