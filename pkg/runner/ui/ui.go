// Package ui runs the interactive scheduler against the store.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/notify"
	"tableflip.dev/bulletin/pkg/store"
	"tableflip.dev/bulletin/pkg/tui/scheduler"
	"tableflip.dev/bulletin/pkg/workspace"
)

type UI struct {
	Persistence  store.Persistence
	Log          zerolog.Logger
	ReadyDelay   time.Duration
	HorizonYears int
	// Watch follows changes made to the store by other processes.
	Watch bool
}

func (u *UI) Do(ctx context.Context) error {
	if u.Persistence == nil {
		return fmt.Errorf("failed to create persistence object")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := notify.NewBus()
	ws := workspace.New(u.Persistence, u.Log)
	if err := ws.Refresh(ctx); err != nil {
		u.Log.Warn().Err(err).Msg("initial workspace refresh")
	}

	wsCh, unsubWS := bus.Subscribe(16)
	defer unsubWS()
	go func() {
		if err := ws.Listen(ctx, wsCh); err != nil && ctx.Err() == nil {
			u.Log.Error().Err(err).Msg("workspace listener stopped")
		}
	}()

	if u.Watch {
		events, err := u.Persistence.Watch(ctx)
		if err != nil {
			u.Log.Warn().Err(err).Msg("watching store disabled")
		} else {
			go ws.Bridge(ctx, events, bus)
		}
	}

	uiCh, unsubUI := bus.Subscribe(16)
	defer unsubUI()

	return scheduler.Run(ctx, u.Persistence, scheduler.Options{
		ReadyDelay:    u.ReadyDelay,
		HorizonYears:  u.HorizonYears,
		Publisher:     bus,
		Logger:        u.Log,
		Notifications: uiCh,
	})
}
