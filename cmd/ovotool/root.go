package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/ovokit/internal/config"
	"github.com/Faultbox/ovokit/internal/logger"
)

// app holds the state shared by all commands.
type app struct {
	configPath string
	overrides  config.Overrides
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "ovotool",
		Short:         "Inspect, validate and build OVO scene files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		Example: `  ovotool info scene.ovo
  ovotool tree scene.ovo
  ovotool validate models/*.ovo
  ovotool build scene.yaml -o scene.ovo
  ovotool dump scene.ovo > scene.yaml
  ovotool roundtrip in.ovo out.ovo`,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: ./ovotool.yaml or the user config dir)")
	pf.BoolVar(&a.overrides.Debug, "debug", false, "enable debug logging")
	pf.StringVar(&a.overrides.LogFile, "log-file", "", "also write JSON logs to this file")

	root.AddCommand(
		newInfoCmd(a),
		newTreeCmd(a),
		newValidateCmd(a),
		newBuildCmd(a),
		newDumpCmd(a),
		newRoundtripCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath, a.overrides)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
}
