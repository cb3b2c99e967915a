package mqtt

// Opts - holds configuration needed to establish connection to the broker
type Opts struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string

	// TopicPrefix - root of state and command topics
	TopicPrefix string

	// DiscoveryPrefix - Home Assistant discovery root (homeassistant)
	DiscoveryPrefix string
}

func (opts Opts) discoveryPrefix() string {
	if opts.DiscoveryPrefix == "" {
		return "homeassistant"
	}

	return opts.DiscoveryPrefix
}
