package mqtt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"gitlab.com/adam.stanek/huckleberry/pkg/action"
	"gitlab.com/adam.stanek/huckleberry/pkg/entity"
)

// Availability payloads
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
	PayloadPress   = "PRESS"
)

const (
	publishTimeout = 5 * time.Second
	commandTimeout = 30 * time.Second
	accountNode    = "account"
)

// Publisher - subset of the MQTT client used by the bridge
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) MQTT.Token
	Subscribe(topic string, qos byte, callback MQTT.MessageHandler) MQTT.Token
}

// ServiceCaller - entry point of service calls received over MQTT
type ServiceCaller interface {
	CallService(ctx context.Context, service action.Service, data action.ServiceData) error
}

// Bridge - maps entities onto Home Assistant MQTT discovery, state and command topics
type Bridge struct {
	client     Publisher
	opts       Opts
	entities   []entity.Entity
	source     entity.Source
	dispatcher ServiceCaller

	commands map[string]entity.Entity

	publishMutex sync.Mutex
	published    map[string]string
}

// NewBridge - constructor
func NewBridge(client Publisher, opts Opts, entities []entity.Entity, source entity.Source, dispatcher ServiceCaller) *Bridge {
	b := &Bridge{
		client:     client,
		opts:       opts,
		entities:   entities,
		source:     source,
		dispatcher: dispatcher,
		commands:   make(map[string]entity.Entity),
		published:  make(map[string]string),
	}

	for _, e := range entities {
		if hasCommand(e) {
			b.commands[b.entityTopic(e, "set")] = e
		}
	}

	return b
}

// StatusTopic - bridge availability
func (b *Bridge) StatusTopic() string {
	return statusTopic(b.opts.TopicPrefix)
}

func statusTopic(prefix string) string {
	return fmt.Sprintf("%v/status", prefix)
}

func (b *Bridge) serviceTopic(service string) string {
	return fmt.Sprintf("%v/service/%v", b.opts.TopicPrefix, service)
}

func (b *Bridge) hubStatusTopic() string {
	return fmt.Sprintf("%v/status", b.opts.discoveryPrefix())
}

func (b *Bridge) entityTopic(e entity.Entity, suffix string) string {
	node := e.ChildUID()
	if node == "" {
		node = accountNode
	}

	return fmt.Sprintf("%v/%v/%v/%v", b.opts.TopicPrefix, node, e.ObjectID(), suffix)
}

// DiscoveryTopic - config topic of the entity
func (b *Bridge) DiscoveryTopic(e entity.Entity) string {
	return fmt.Sprintf("%v/%v/%v/config", b.opts.discoveryPrefix(), e.Platform(), e.UniqueID())
}

func hasCommand(e entity.Entity) bool {
	return e.Platform() == entity.PlatformSwitch || e.Platform() == entity.PlatformButton
}

// Start - announces the bridge, subscribes to commands and publishes discovery and state
func (b *Bridge) Start() error {
	if err := b.publish(b.StatusTopic(), PayloadOnline, true); err != nil {
		return err
	}

	subscriptions := map[string]MQTT.MessageHandler{
		fmt.Sprintf("%v/+/+/set", b.opts.TopicPrefix): b.handleCommand,
		b.serviceTopic("+"):                          b.handleService,
		b.hubStatusTopic():                           b.handleHubStatus,
	}

	for topic, handler := range subscriptions {
		token := b.client.Subscribe(topic, 1, handler)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("timeout while subscribing to %v", topic)
		} else if err := token.Error(); err != nil {
			return fmt.Errorf("unable to subscribe to %v: %w", topic, err)
		}
	}

	if err := b.PublishDiscovery(); err != nil {
		return err
	}

	b.PublishState()
	return nil
}

// DiscoveryPayload - Home Assistant discovery config of the entity
func (b *Bridge) DiscoveryPayload(e entity.Entity) map[string]interface{} {
	payload := map[string]interface{}{
		"unique_id": e.UniqueID(),
		"availability": []map[string]interface{}{
			{"topic": b.StatusTopic()},
			{"topic": b.entityTopic(e, "availability")},
		},
		"availability_mode": "all",
	}

	if e.Name() == "" {
		payload["name"] = nil
	} else {
		payload["name"] = e.Name()
	}

	if device := e.Device(); device != nil {
		payload["device"] = device
	}

	if e.Icon() != "" {
		payload["icon"] = e.Icon()
	}

	if e.DeviceClass() != "" {
		payload["device_class"] = e.DeviceClass()
	}

	if e.Unit() != "" {
		payload["unit_of_measurement"] = e.Unit()
	}

	switch e.Platform() {
	case entity.PlatformButton:
		payload["command_topic"] = b.entityTopic(e, "set")
		payload["payload_press"] = PayloadPress

	case entity.PlatformSwitch:
		payload["command_topic"] = b.entityTopic(e, "set")
		fallthrough

	case entity.PlatformBinarySensor:
		payload["payload_on"] = entity.StateOn
		payload["payload_off"] = entity.StateOff
		fallthrough

	default:
		payload["state_topic"] = b.entityTopic(e, "state")
		payload["json_attributes_topic"] = b.entityTopic(e, "attributes")
	}

	return payload
}

// PublishDiscovery - publishes retained discovery configs of all entities
func (b *Bridge) PublishDiscovery() error {
	log.Debug().Int("entities", len(b.entities)).Msg("Publishing discovery")

	for _, e := range b.entities {
		data, err := json.Marshal(b.DiscoveryPayload(e))
		if err != nil {
			return fmt.Errorf("unable to marshal discovery of %v: %w", e.UniqueID(), err)
		}

		if err := b.publish(b.DiscoveryTopic(e), string(data), true); err != nil {
			return err
		}
	}

	return nil
}

// PublishState - publishes state, attributes and availability of all entities
// Payloads which did not change since the last call are skipped.
func (b *Bridge) PublishState() {
	b.publishMutex.Lock()
	defer b.publishMutex.Unlock()

	for _, e := range b.entities {
		availability := PayloadOffline
		if e.Available(b.source) {
			availability = PayloadOnline
		}

		b.publishChanged(b.entityTopic(e, "availability"), availability)

		if e.Platform() == entity.PlatformButton {
			continue
		}

		b.publishChanged(b.entityTopic(e, "state"), e.State(b.source))

		attributes, err := json.Marshal(e.Attributes(b.source))
		if err != nil {
			log.Error().Err(err).Str("entity", e.UniqueID()).Msg("Unable to marshal attributes")
			continue
		}

		b.publishChanged(b.entityTopic(e, "attributes"), string(attributes))
	}
}

// ResetState - forgets published payloads so that the next PublishState sends everything
func (b *Bridge) ResetState() {
	b.publishMutex.Lock()
	b.published = make(map[string]string)
	b.publishMutex.Unlock()
}

func (b *Bridge) publishChanged(topic string, payload string) {
	if last, ok := b.published[topic]; ok && last == payload {
		return
	}

	if err := b.publish(topic, payload, true); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Unable to publish state")
		return
	}

	b.published[topic] = payload
}

func (b *Bridge) publish(topic string, payload string, retained bool) error {
	log.Trace().Str("topic", topic).Str("payload", payload).Msg("Publishing")

	token := b.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timeout while publishing to %v", topic)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("unable to publish to %v: %w", topic, err)
	}

	return nil
}

func (b *Bridge) handleCommand(_ MQTT.Client, msg MQTT.Message) {
	b.HandleCommand(msg.Topic(), msg.Payload())
}

// HandleCommand - executes switch or button command received on the topic
func (b *Bridge) HandleCommand(topic string, payload []byte) error {
	e, ok := b.commands[topic]
	if !ok {
		log.Warn().Str("topic", topic).Msg("Received command for unknown entity")
		return fmt.Errorf("no entity listens on %v", topic)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	command := strings.ToUpper(strings.TrimSpace(string(payload)))
	sublog := log.With().Str("entity", e.UniqueID()).Str("command", command).Logger()
	sublog.Info().Msg("Received command")

	var err error
	switch typed := e.(type) {
	case entity.Switch:
		switch command {
		case entity.StateOn:
			err = typed.TurnOn(ctx)
		case entity.StateOff:
			err = typed.TurnOff(ctx)
		default:
			err = fmt.Errorf("unexpected switch command %q", command)
		}

	case entity.Button:
		sublog.Debug().Str("action", string(typed.ActionType())).Msg("Pressing button")
		err = typed.Press(ctx)

	default:
		err = fmt.Errorf("entity %v does not accept commands", e.UniqueID())
	}

	if err != nil {
		sublog.Error().Err(err).Msg("Command failed")
	}

	return err
}

func (b *Bridge) handleService(_ MQTT.Client, msg MQTT.Message) {
	b.HandleService(msg.Topic(), msg.Payload())
}

// HandleService - executes service call, the payload carries the service data as JSON
func (b *Bridge) HandleService(topic string, payload []byte) error {
	service := action.Service(topic[strings.LastIndex(topic, "/")+1:])

	data := action.ServiceData{}
	if len(strings.TrimSpace(string(payload))) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			log.Error().Err(err).Str("service", string(service)).Msg("Unable to decode service data")
			return fmt.Errorf("unable to decode service data: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	log.Info().Str("service", string(service)).Str("child_uid", data.ChildUID).Msg("Received service call")

	if err := b.dispatcher.CallService(ctx, service, data); err != nil {
		log.Error().Err(err).Str("service", string(service)).Msg("Service call failed")
		return err
	}

	return nil
}

func (b *Bridge) handleHubStatus(_ MQTT.Client, msg MQTT.Message) {
	b.HandleHubStatus(msg.Payload())
}

// HandleHubStatus - re-publishes everything when Home Assistant comes online
func (b *Bridge) HandleHubStatus(payload []byte) {
	if string(payload) != PayloadOnline {
		return
	}

	log.Info().Msg("Home Assistant came online, re-publishing discovery")

	if err := b.PublishDiscovery(); err != nil {
		log.Error().Err(err).Msg("Unable to publish discovery")
		return
	}

	b.ResetState()
	b.PublishState()
}
