package app

import (
	"time"

	"gitlab.com/adam.stanek/huckleberry/pkg/client"
	"gitlab.com/adam.stanek/huckleberry/pkg/config"
	"gitlab.com/adam.stanek/huckleberry/pkg/mqtt"
)

// Opts - application run options
type Opts struct {
	Credentials  Credentials
	APIKey       string
	ProjectID    string
	SessionFile  string
	PollInterval time.Duration
	Location     *time.Location
	Buttons      bool
	MQTT         *mqtt.Opts

	// Endpoints - overrides the remote service URLs, production ones are used when nil
	Endpoints *client.Endpoints
}

// Credentials - user credentials for Huckleberry account
type Credentials struct {
	Email    string
	Password string
}

// OptsFromConfig - translates validated configuration into run options
func OptsFromConfig(cfg config.Config) (Opts, error) {
	if err := cfg.Validate(); err != nil {
		return Opts{}, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return Opts{}, err
	}

	opts := Opts{
		Credentials: Credentials{
			Email:    cfg.Account.Email,
			Password: cfg.Account.Password,
		},
		APIKey:       cfg.Account.APIKey,
		ProjectID:    cfg.Account.ProjectID,
		SessionFile:  cfg.Session.File,
		PollInterval: cfg.Poll.Interval,
		Location:     loc,
		Buttons:      cfg.MQTT.Buttons,
	}

	if cfg.MQTT.Enabled {
		opts.MQTT = &mqtt.Opts{
			BrokerURL:       cfg.MQTT.BrokerURL,
			ClientID:        cfg.MQTT.ClientID,
			Username:        cfg.MQTT.Username,
			Password:        cfg.MQTT.Password,
			TopicPrefix:     cfg.MQTT.TopicPrefix,
			DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
		}
	}

	return opts, nil
}
