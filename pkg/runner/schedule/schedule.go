// Package schedule runs the schedule subcommands.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/notify"
	"tableflip.dev/bulletin/pkg/printers"
	sched "tableflip.dev/bulletin/pkg/schedule"
)

// List prints the issues scheduled in a month.
type List struct {
	Source   sched.ScheduleSource
	Month    issue.Date
	Calendar bool
	JSON     bool
	ShowID   bool
	Out      io.Writer
}

func (l *List) out() io.Writer {
	if l.Out == nil {
		return color.Output
	}
	return l.Out
}

func (l *List) Do(ctx context.Context) error {
	if l.Source == nil {
		return fmt.Errorf("failed to create persistence object")
	}
	month := l.Month.MonthStart()
	entries, err := l.Source.Schedule(ctx, month)
	if err != nil {
		return err
	}

	var cache sched.MonthCache
	cache.Apply(cache.SetMonth(month), entries)
	ordered := cache.Entries()

	if l.JSON {
		return json.NewEncoder(l.out()).Encode(ordered)
	}

	pp := &printers.PrettyPrint{ShowID: l.ShowID, Out: l.out()}
	pp.TitleWithCount(month.Format("January 2006"), len(ordered), "issue")
	if l.Calendar {
		pp.Calendar(month, ordered...)
	}
	pp.Schedule(ordered...)
	return nil
}

// Add schedules a new issue.
type Add struct {
	Source    sched.SchedulePersisterSource
	Publisher notify.Publisher
	Log       zerolog.Logger
	Issue     issue.ScheduledIssue
	JSON      bool
	Out       io.Writer
}

func (a *Add) out() io.Writer {
	if a.Out == nil {
		return color.Output
	}
	return a.Out
}

func (a *Add) Do(ctx context.Context) error {
	if a.Source == nil {
		return fmt.Errorf("failed to create persistence object")
	}
	opts := []sched.DriverOption{sched.WithLogger(a.Log)}
	if a.Publisher != nil {
		opts = append(opts, sched.WithPublisher(a.Publisher))
	}
	saved, err := sched.Submit(ctx, a.Source, a.Issue, opts...)
	if err != nil {
		return err
	}
	if a.JSON {
		return json.NewEncoder(a.out()).Encode(saved)
	}
	pp := &printers.PrettyPrint{Out: a.out()}
	pp.ScheduledIssue(saved)
	return nil
}
