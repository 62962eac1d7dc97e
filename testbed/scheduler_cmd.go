package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/tui/scheduler"
)

func newSchedulerCmd(_ *options) *cobra.Command {
	var (
		latency time.Duration
		ready   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run the scheduler against sample data kept in memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := newSampleSource(time.Now(), latency)
			return scheduler.Run(context.Background(), src, scheduler.Options{
				ReadyDelay: ready,
				Logger:     zerolog.Nop(),
			})
		},
	}

	cmd.Flags().DurationVar(&latency, "latency", 300*time.Millisecond, "simulated store latency")
	cmd.Flags().DurationVar(&ready, "ready-delay", time.Second, "delay before a loaded month accepts input")
	return cmd
}
