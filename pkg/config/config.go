package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gitlab.com/adam.stanek/huckleberry/pkg/utils"
	"gopkg.in/yaml.v3"
)

// EnvPrefix - prefix of all environment variables
const EnvPrefix = "HUCKLEBERRY_"

// Config - application configuration
type Config struct {
	Account  AccountConfig `yaml:"account"`
	Session  SessionConfig `yaml:"session"`
	Poll     PollConfig    `yaml:"poll"`
	MQTT     MQTTConfig    `yaml:"mqtt"`
	TimeZone string        `yaml:"time_zone"`
	Log      LogConfig     `yaml:"log"`
}

// AccountConfig - Huckleberry account and Firebase project
type AccountConfig struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	APIKey    string `yaml:"api_key"`
	ProjectID string `yaml:"project_id"`
}

// SessionConfig - session file location
type SessionConfig struct {
	File string `yaml:"file"`
}

// PollConfig - refresh schedule
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// MQTTConfig - broker connection and topic layout
type MQTTConfig struct {
	Enabled         bool   `yaml:"enabled"`
	BrokerURL       string `yaml:"broker_url"`
	ClientID        string `yaml:"client_id"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	TopicPrefix     string `yaml:"topic_prefix"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	Buttons         bool   `yaml:"buttons"`
}

// LogConfig - logging options
type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults - configuration used when nothing else is provided
func Defaults() Config {
	return Config{
		Account: AccountConfig{
			ProjectID: "simpleintervals",
		},
		Session: SessionConfig{
			File: "session.json",
		},
		Poll: PollConfig{
			Interval: 30 * time.Second,
		},
		MQTT: MQTTConfig{
			Enabled:         true,
			BrokerURL:       "tcp://localhost:1883",
			ClientID:        "huckleberry",
			TopicPrefix:     "huckleberry",
			DiscoveryPrefix: "homeassistant",
			Buttons:         true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load - reads the YAML file (if any) and overlays environment variables
// Missing file is not an error, defaults are used instead.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func env(name string) string {
	return EnvPrefix + name
}

// applyEnv - environment variables take precedence over the file
func applyEnv(cfg *Config) {
	cfg.Account.Email = utils.EnvVarStr(env("EMAIL"), cfg.Account.Email)
	cfg.Account.Password = utils.EnvVarStr(env("PASSWORD"), cfg.Account.Password)
	cfg.Account.APIKey = utils.EnvVarStr(env("API_KEY"), cfg.Account.APIKey)
	cfg.Account.ProjectID = utils.EnvVarStr(env("PROJECT_ID"), cfg.Account.ProjectID)

	cfg.Session.File = utils.EnvVarStr(env("SESSION_FILE"), cfg.Session.File)
	cfg.Poll.Interval = utils.EnvVarDuration(env("POLL_INTERVAL"), cfg.Poll.Interval)

	cfg.MQTT.Enabled = utils.EnvVarBool(env("MQTT_ENABLED"), cfg.MQTT.Enabled)
	cfg.MQTT.BrokerURL = utils.EnvVarStr(env("MQTT_BROKER_URL"), cfg.MQTT.BrokerURL)
	cfg.MQTT.ClientID = utils.EnvVarStr(env("MQTT_CLIENT_ID"), cfg.MQTT.ClientID)
	cfg.MQTT.Username = utils.EnvVarStr(env("MQTT_USERNAME"), cfg.MQTT.Username)
	cfg.MQTT.Password = utils.EnvVarStr(env("MQTT_PASSWORD"), cfg.MQTT.Password)
	cfg.MQTT.TopicPrefix = utils.EnvVarStr(env("MQTT_PREFIX"), cfg.MQTT.TopicPrefix)
	cfg.MQTT.DiscoveryPrefix = utils.EnvVarStr(env("MQTT_DISCOVERY_PREFIX"), cfg.MQTT.DiscoveryPrefix)
	cfg.MQTT.Buttons = utils.EnvVarBool(env("MQTT_BUTTONS"), cfg.MQTT.Buttons)

	cfg.TimeZone = utils.EnvVarStr(env("TIME_ZONE"), cfg.TimeZone)
	cfg.Log.Level = utils.EnvVarStr(env("LOG_LEVEL"), cfg.Log.Level)
}

// Validate - checks the values needed to run the bridge
func (cfg Config) Validate() error {
	if cfg.Account.APIKey == "" {
		return fmt.Errorf("config: missing api key (%v)", env("API_KEY"))
	}

	if cfg.Poll.Interval <= 0 {
		return fmt.Errorf("config: poll interval must be positive, got %v", cfg.Poll.Interval)
	}

	if cfg.MQTT.Enabled && cfg.MQTT.BrokerURL == "" {
		return fmt.Errorf("config: missing MQTT broker url (%v)", env("MQTT_BROKER_URL"))
	}

	if _, err := cfg.Location(); err != nil {
		return err
	}

	return nil
}

// Location - time zone for displayed timestamps, local time zone when not set
func (cfg Config) Location() (*time.Location, error) {
	if cfg.TimeZone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid time zone %v: %w", cfg.TimeZone, err)
	}

	return loc, nil
}
