package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gitlab.com/adam.stanek/huckleberry/pkg/app"
	"gitlab.com/adam.stanek/huckleberry/pkg/config"
	"gitlab.com/adam.stanek/huckleberry/pkg/utils"
)

var (
	// Flags
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "huckleberry",
	Short: "Huckleberry baby tracker bridge for Home Assistant",
	Long: `huckleberry keeps the sleep, feeding, diaper and growth records of your
Huckleberry account in sync with Home Assistant over MQTT discovery and lets
you start, pause and complete the timers from there.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.LoadDotEnvFile()
	},
	RunE: runBridge,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (env: HUCKLEBERRY_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error (env: HUCKLEBERRY_LOG_LEVEL)")
}

// loadConfig - reads the config file and environment, flags take precedence
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = utils.EnvVarStr(config.EnvPrefix+"CONFIG", "")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	setLogLevel(cfg.Log.Level)
	return cfg, nil
}

// newApp - application container built from the configuration
func newApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts, err := app.OptsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	instance, err := app.NewApp(opts)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize: %w", err)
	}

	log.Debug().Str("session_file", opts.SessionFile).Msg("Application initialized")
	return instance, nil
}
