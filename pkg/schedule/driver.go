package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/notify"
	"tableflip.dev/bulletin/pkg/store"
)

// ScheduleSource loads the scheduled issues touching a month.
type ScheduleSource interface {
	Schedule(ctx context.Context, month issue.Date) (store.Index[int, issue.ScheduledIssue], error)
}

// SchedulePersister saves a new scheduled issue and returns it with its id.
type SchedulePersister interface {
	AddSchedule(ctx context.Context, s issue.ScheduledIssue) (issue.ScheduledIssue, error)
}

// Warner shows a warning to the user.
type Warner func(msg string)

// AfterFunc schedules f to run after d. It must not call f synchronously.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithPublisher sets where Notify commands go. Defaults to notify.Discard.
func WithPublisher(p notify.Publisher) DriverOption {
	return func(d *Driver) { d.pub = p }
}

// WithWarner sets the warning sink. Warnings are always logged as well.
func WithWarner(w Warner) DriverOption {
	return func(d *Driver) { d.warn = w }
}

// WithLogger sets the driver's logger.
func WithLogger(log zerolog.Logger) DriverOption {
	return func(d *Driver) { d.log = log }
}

// WithAfterFunc replaces time.AfterFunc for the ready timer.
func WithAfterFunc(f AfterFunc) DriverOption {
	return func(d *Driver) { d.after = f }
}

// Driver runs the scheduler outside of a UI event loop: it serializes events
// through Update and executes the resulting commands. Fetch and persist calls
// are awaited in place; their results are dispatched before Dispatch returns.
type Driver struct {
	source    SchedulePersisterSource
	pub       notify.Publisher
	warn      Warner
	log       zerolog.Logger
	after     AfterFunc
	run       sync.Mutex // serializes Dispatch
	mu        sync.Mutex // guards the fields below
	state     State
	lastSaved *issue.ScheduledIssue
	timers    map[Token]func() bool
	closed    bool
}

// SchedulePersisterSource is both a ScheduleSource and a SchedulePersister,
// as store.Persistence is.
type SchedulePersisterSource interface {
	ScheduleSource
	SchedulePersister
}

// NewDriver returns a driver whose initial state shows the month containing
// today. Call Start to load it.
func NewDriver(src SchedulePersisterSource, today issue.Date, readyDelay time.Duration, opts ...DriverOption) *Driver {
	d := &Driver{
		source: src,
		pub:    notify.Discard,
		log:    zerolog.Nop(),
		after:  timeAfterFunc,
		timers: make(map[Token]func() bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.state = State{Selected: today, ReadyDelay: readyDelay}
	d.state.Cache.SetMonth(today)
	return d
}

// Start fetches the initial month.
func (d *Driver) Start(ctx context.Context) error {
	return d.Dispatch(ctx, RefreshRequested{})
}

// State returns a snapshot of the current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// LastSaved returns the most recently persisted issue, if any.
func (d *Driver) LastSaved() (issue.ScheduledIssue, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastSaved == nil {
		return issue.ScheduledIssue{}, false
	}
	return *d.lastSaved, true
}

// Dispatch applies ev and runs the commands it produces, including those
// produced by the results of fetches and saves. Fetch failures are returned
// after they have been surfaced as warnings; they are not retried.
func (d *Driver) Dispatch(ctx context.Context, ev Event) error {
	d.run.Lock()
	defer d.run.Unlock()

	var errs []error
	queue := []Event{ev}
	for len(queue) > 0 {
		ev, queue = queue[0], queue[1:]

		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return errors.New("schedule: driver closed")
		}
		var cmds []Command
		d.state, cmds = Update(d.state, ev)
		d.mu.Unlock()

		for _, cmd := range cmds {
			next, err := d.execute(ctx, cmd)
			if err != nil {
				errs = append(errs, err)
			}
			if next != nil {
				queue = append(queue, next)
			}
		}
	}
	return errors.Join(errs...)
}

func (d *Driver) execute(ctx context.Context, cmd Command) (Event, error) {
	switch cmd := cmd.(type) {
	case FetchSchedule:
		log := d.log.With().Str("month", cmd.Month.Format("2006-01")).Uint64("token", uint64(cmd.Token)).Logger()
		entries, err := d.source.Schedule(ctx, cmd.Month)
		if err != nil {
			log.Error().Err(err).Msg("fetch schedule")
			return ScheduleFetched{Token: cmd.Token, Err: err}, err
		}
		log.Debug().Int("entries", len(entries)).Msg("fetched schedule")
		return ScheduleFetched{Token: cmd.Token, Entries: entries}, nil

	case PersistSchedule:
		saved, err := d.source.AddSchedule(ctx, cmd.Issue)
		if err != nil {
			d.log.Warn().Err(err).Msg("persist schedule")
			return SaveCompleted{Gen: cmd.Gen, Err: err}, nil
		}
		d.mu.Lock()
		d.lastSaved = &saved
		d.mu.Unlock()
		return SaveCompleted{Gen: cmd.Gen, Saved: saved}, nil

	case StartReadyTimer:
		d.startTimer(cmd)

	case Notify:
		d.log.Debug().Str("notification", cmd.Notification.Describe()).Msg("notify")
		d.pub.Publish(cmd.Notification)

	case Warn:
		d.log.Warn().Msg(cmd.Message)
		if d.warn != nil {
			d.warn(cmd.Message)
		}
	}
	return nil, nil
}

func (d *Driver) startTimer(cmd StartReadyTimer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	// Only the latest fetch can become ready.
	for token, stop := range d.timers {
		stop()
		delete(d.timers, token)
	}
	token := cmd.Token
	d.timers[token] = d.after(cmd.After, func() {
		d.mu.Lock()
		delete(d.timers, token)
		d.mu.Unlock()
		if err := d.Dispatch(context.Background(), ReadyElapsed{Token: token}); err != nil {
			d.log.Debug().Err(err).Msg("ready timer")
		}
	})
}

// Close stops pending timers. Later dispatches fail.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for token, stop := range d.timers {
		stop()
		delete(d.timers, token)
	}
}
