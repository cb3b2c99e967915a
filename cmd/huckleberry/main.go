package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	initLogger()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Set logger for application bootstrap
func initLogger() {
	// Initial log level, overridden later by setLogLevel
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC822}
	log.Logger = log.Output(consoleWriter)
}

func setLogLevel(logLevelStr string) {
	logLevel, err := zerolog.ParseLevel(logLevelStr)
	if err != nil || logLevel == zerolog.NoLevel {
		log.Fatal().Str("value", logLevelStr).Msg("Unknown log level specified")
	}

	log.Debug().Msgf("Setting log level to %v", logLevel)
	zerolog.SetGlobalLevel(logLevel)
}
