package mqtt

import (
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
	"github.com/tevino/abool"
	"gitlab.com/adam.stanek/huckleberry/pkg/entity"
	"gitlab.com/adam.stanek/huckleberry/pkg/utils"
)

// Source - entity source which notifies about updates
type Source interface {
	entity.Source
	Subscribe(callback func()) func()
}

// Connection - MQTT context
type Connection struct {
	Opts       Opts
	Entities   []entity.Entity
	Source     Source
	Dispatcher ServiceCaller

	connected *abool.AtomicBool
}

// NewConnection - constructor
func NewConnection(opts Opts, entities []entity.Entity, source Source, dispatcher ServiceCaller) *Connection {
	return &Connection{
		Opts:       opts,
		Entities:   entities,
		Source:     source,
		Dispatcher: dispatcher,
		connected:  abool.New(),
	}
}

// IsConnected - true while the connection to the broker is up
func (conn *Connection) IsConnected() bool {
	return conn.connected.IsSet()
}

// Run - connects to the broker and keeps reconnecting until the context is cancelled
func (conn *Connection) Run(ctx utils.GracefulContext) {
	utils.RunWithPerseverance(func(attempt utils.AttemptContext) {
		runMqtt(conn, attempt)
	}, ctx, utils.PerseverenceOpts{
		RunnerID:       "mqtt",
		ResetThreshold: 2 * time.Second,
		Cooldown: []time.Duration{
			2 * time.Second,
			10 * time.Second,
			1 * time.Minute,
		},
	})
}

func runMqtt(conn *Connection, attempt utils.AttemptContext) {
	lostC := make(chan error, 1)

	opts := MQTT.NewClientOptions()
	opts.AddBroker(conn.Opts.BrokerURL)
	opts.SetClientID(conn.Opts.ClientID)
	opts.SetUsername(conn.Opts.Username)
	opts.SetPassword(conn.Opts.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetOrderMatters(false)
	opts.SetWill(statusTopic(conn.Opts.TopicPrefix), PayloadOffline, 1, true)
	opts.SetConnectionLostHandler(func(_ MQTT.Client, err error) {
		select {
		case lostC <- err:
		default:
		}
	})

	client := MQTT.NewClient(opts)
	bridge := NewBridge(client, conn.Opts, conn.Entities, conn.Source, conn.Dispatcher)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Error().Str("broker_url", conn.Opts.BrokerURL).Err(token.Error()).Msg("Unable to connect to MQTT broker")
		attempt.Fail(token.Error())
		return
	}

	log.Info().Str("broker_url", conn.Opts.BrokerURL).Msg("Successfully connected to MQTT broker")
	conn.connected.Set()
	defer conn.connected.UnSet()

	if err := bridge.Start(); err != nil {
		log.Error().Err(err).Msg("Unable to initialize MQTT bridge")
		client.Disconnect(250)
		attempt.Fail(err)
		return
	}

	unsubscribe := conn.Source.Subscribe(bridge.PublishState)
	defer unsubscribe()

	select {
	case <-attempt.Done():
		log.Debug().Msg("Closing MQTT connection on interrupt")
		if err := bridge.publish(bridge.StatusTopic(), PayloadOffline, true); err != nil {
			log.Warn().Err(err).Msg("Unable to publish offline status")
		}
		client.Disconnect(250)

	case err := <-lostC:
		log.Warn().Err(err).Msg("MQTT connection lost")
		attempt.Fail(err)
	}
}
