package options

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/issue"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
	layoutMonth    = "2006-1"
)

// DateOptions holds the dates of a new scheduled issue.
type DateOptions struct {
	Cutoff      string
	Publication string
	// Now defaults to time.Now.
	Now func() time.Time
}

func AddDateArgs(cmd *cobra.Command, o *DateOptions) {
	cmd.Flags().StringVar(&o.Cutoff, "cutoff", "",
		`Cutoff date, example: --cutoff="2024-3-4" or --cutoff="3/4".`)
	cmd.Flags().StringVar(&o.Publication, "publication", "",
		`Publication date, example: --publication="2024-3-8" or --publication="3/8".`)
}

func (o *DateOptions) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// GetCutoff returns the cutoff date, or the zero Date when unset.
func (o *DateOptions) GetCutoff() (issue.Date, error) {
	return ParseDay(o.Cutoff, o.now())
}

// GetPublication returns the publication date, or the zero Date when unset.
func (o *DateOptions) GetPublication() (issue.Date, error) {
	return ParseDay(o.Publication, o.now())
}

// ParseDay accepts "2006-1-2" or the short "1/2". A short date lands on the
// next occurrence of that day, counting from now.
func ParseDay(v string, now time.Time) (issue.Date, error) {
	if v == "" {
		return issue.Date{}, nil
	}
	t, err := time.Parse(layoutISO, v)
	if err == nil {
		return issue.NewDate(t), nil
	}
	t, err = time.Parse(layoutISOShort, v)
	if err != nil {
		return issue.Date{}, fmt.Errorf("invalid date %q, want YYYY-M-D or M/D", v)
	}
	t = t.AddDate(now.Year(), 0, 0)
	// 1/3 given on 12/5 means next year, not eleven months ago.
	if issue.NewDate(t).Before(issue.NewDate(now)) {
		t = t.AddDate(1, 0, 0)
	}
	return issue.NewDate(t), nil
}

// MonthOptions selects a month to show.
type MonthOptions struct {
	Month string
}

func AddMonthArgs(cmd *cobra.Command, o *MonthOptions) {
	cmd.Flags().StringVarP(&o.Month, "month", "m", "",
		`Month to show, example: --month="2024-3". Defaults to the current month.`)
}

// GetMonth returns the first day of the selected month.
func (o *MonthOptions) GetMonth(now time.Time) (issue.Date, error) {
	if o.Month == "" {
		return issue.NewDate(now).MonthStart(), nil
	}
	t, err := time.Parse(layoutMonth, o.Month)
	if err != nil {
		d, derr := ParseDay(o.Month, now)
		if derr != nil {
			return issue.Date{}, fmt.Errorf("invalid month %q, want YYYY-M", o.Month)
		}
		return d.MonthStart(), nil
	}
	return issue.NewDate(t).MonthStart(), nil
}
