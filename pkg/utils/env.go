package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadDotEnvFile - loads values from .env into the process environment
func LoadDotEnvFile() {
	absFilepath, filePathErr := filepath.Abs(".env")
	if filePathErr != nil {
		log.Fatal().Str("path", absFilepath).Err(filePathErr).Msg("Unable to retrieve absolute file path")
	}

	if err := godotenv.Load(absFilepath); err != nil {
		log.Info().Str("path", absFilepath).Msg("No .env file found. Using only environment variables")
	} else {
		log.Info().Str("path", absFilepath).Msg("Additional environment variables loaded from .env file")
	}
}

// EnvVarStr - returns value of the environment variable or the default
func EnvVarStr(varName string, defaultValue string) string {
	value := os.Getenv(varName)

	if value == "" {
		return defaultValue
	}

	return value
}

// EnvVarBool - returns boolean value of the environment variable
func EnvVarBool(varName string, defaultValue bool) bool {
	value := EnvVarStr(varName, "")
	if value == "true" {
		return true
	} else if value == "false" {
		return false
	} else if value == "" {
		return defaultValue
	}

	log.Fatal().Msgf("Unexpected value for boolean environment variable %v (allowed values true, false)", varName)
	return false
}

// EnvVarDuration - returns duration value of the environment variable (eg. "30s")
// Plain integers are treated as seconds.
func EnvVarDuration(varName string, defaultValue time.Duration) time.Duration {
	value := EnvVarStr(varName, "")
	if value == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatal().Str("value", value).Err(err).Msgf("Unexpected value for duration environment variable %v", varName)
	}

	return d
}
