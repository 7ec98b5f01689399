package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tripgraph/config"
	"github.com/hupe1980/tripgraph/logging"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "tripgraph",
		Short:         "tripgraph plans trips with a self-reviewing research graph",
		Long:          `tripgraph validates a travel request, builds a traveler profile, researches an itinerary with web, places and photo search tools and reviews it before answering.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	cmd.AddCommand(newRunCmd(flags), newServeCmd(flags), newGraphCmd(flags))

	return cmd
}

// load reads the configuration and builds the stderr logger.
func (f *globalFlags) load() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}

	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    os.Stderr,
		Component: "tripgraph",
	})

	return cfg, logger, nil
}
