package options

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	now := time.Date(2024, time.December, 5, 10, 0, 0, 0, time.UTC)
	tests := map[string]struct {
		in      string
		want    string
		wantErr bool
	}{
		"empty":         {in: "", want: "0001-01-01"},
		"iso":           {in: "2024-3-8", want: "2024-03-08"},
		"padded":        {in: "2024-03-08", want: "2024-03-08"},
		"short ahead":   {in: "12/20", want: "2024-12-20"},
		"short today":   {in: "12/5", want: "2024-12-05"},
		"short wraps":   {in: "1/3", want: "2025-01-03"},
		"garbage":       {in: "soon", wantErr: true},
		"invalid month": {in: "2024-13-1", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseDay(tc.in, now)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseDay(%q) = %s, want error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDay(%q) = %v", tc.in, err)
			}
			if got.Format("2006-01-02") != tc.want {
				t.Fatalf("ParseDay(%q) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
			}
		})
	}
}

func TestGetMonth(t *testing.T) {
	now := time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC)
	for in, want := range map[string]string{
		"":          "2024-03-01",
		"2024-7":    "2024-07-01",
		"2025-01":   "2025-01-01",
		"2024-2-14": "2024-02-01",
	} {
		o := &MonthOptions{Month: in}
		got, err := o.GetMonth(now)
		if err != nil {
			t.Fatalf("GetMonth(%q) = %v", in, err)
		}
		if got.String() != want {
			t.Errorf("GetMonth(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := (&MonthOptions{Month: "march"}).GetMonth(now); err == nil {
		t.Fatalf("expected error")
	}
}
