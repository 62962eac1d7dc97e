package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/bulletin/pkg/commands/options"
	"tableflip.dev/bulletin/pkg/logger"
	"tableflip.dev/bulletin/pkg/store"
)

var (
	output   = &options.OutputOptions{}
	logLevel string
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "bulletin",
		Short: base.Wrap80("Schedule bulletin issues and track the publications annexed to them."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: trace, debug, info, warn or error. Overrides the config file.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addSchedule(topLevel)
	addAnnexes(topLevel)
	addImport(topLevel)
	addInfo(topLevel)
	addUI(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// env is what every command needs to reach the store.
type env struct {
	cfg store.Config
	log zerolog.Logger
	p   store.Persistence
}

func load() (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	level := logLevel
	if level == "" {
		level = cfg.LogLevel()
	}
	log := logger.New(level)
	p, err := store.Load(cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, p: p}, nil
}
