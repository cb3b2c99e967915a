package entity

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"gitlab.com/adam.stanek/huckleberry/pkg/action"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// Manufacturer - reported in the device info
const Manufacturer = "Huckleberry"

// Platform - kind of an entity in the hub
type Platform string

// Platforms
const (
	PlatformSensor       Platform = "sensor"
	PlatformBinarySensor Platform = "binary_sensor"
	PlatformSwitch       Platform = "switch"
	PlatformButton       Platform = "button"
)

// Binary states
const (
	StateOn  = "ON"
	StateOff = "OFF"
)

// Source - read access to the coordinator snapshot
type Source interface {
	ChildData(childUID string) (child.Data, bool)
	LastUpdateSuccess() bool
}

// Caller - executes services and device actions
type Caller interface {
	CallService(ctx context.Context, service action.Service, data action.ServiceData) error
	CallAction(ctx context.Context, deviceID string, actionType action.Type) error
}

// Device - device info shared by all entities of a child
type Device struct {
	Identifiers      []string `json:"identifiers"`
	Name             string   `json:"name"`
	Manufacturer     string   `json:"manufacturer"`
	ConfigurationURL string   `json:"configuration_url,omitempty"`
}

// Entity - read-only view of the snapshot
type Entity interface {
	Platform() Platform
	ObjectID() string
	UniqueID() string
	// Name - entity name, empty name means the entity is named after its device
	Name() string
	ChildUID() string
	Icon() string
	DeviceClass() string
	Unit() string
	// Device - nil for entities not bound to a child
	Device() *Device

	State(src Source) string
	Attributes(src Source) map[string]interface{}
	Available(src Source) bool
}

// BinarySensor - entity with on/off state
type BinarySensor interface {
	Entity
	IsOn(src Source) bool
}

// Switch - binary entity which can be toggled
type Switch interface {
	BinarySensor
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
}

// Button - stateless entity which triggers a device action
type Button interface {
	Entity
	ActionType() action.Type
	Press(ctx context.Context) error
}

type base struct {
	child       child.Child
	platform    Platform
	objectID    string
	name        string
	icon        string
	deviceClass string
	unit        string
}

func (b *base) Platform() Platform  { return b.platform }
func (b *base) ObjectID() string    { return b.objectID }
func (b *base) Name() string        { return b.name }
func (b *base) ChildUID() string    { return b.child.UID }
func (b *base) Icon() string        { return b.icon }
func (b *base) DeviceClass() string { return b.deviceClass }
func (b *base) Unit() string        { return b.unit }

func (b *base) UniqueID() string {
	return fmt.Sprintf("%v_%v", b.child.UID, b.objectID)
}

func (b *base) Device() *Device {
	return &Device{
		Identifiers:  []string{action.DeviceID(b.child.UID)},
		Name:         b.child.Name,
		Manufacturer: Manufacturer,
	}
}

// availableWithChild - last refresh succeeded and the child is present in the snapshot
func (b *base) availableWithChild(src Source) bool {
	if !src.LastUpdateSuccess() {
		return false
	}

	_, ok := src.ChildData(b.child.UID)
	return ok
}

func onOff(on bool) string {
	if on {
		return StateOn
	}

	return StateOff
}

func deref(v *float64) interface{} {
	if v == nil {
		return nil
	}

	return *v
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}

	return *v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func unixTime(seconds float64, loc *time.Location) time.Time {
	sec := math.Floor(seconds)
	usec := math.Round((seconds - sec) * 1e6)
	return time.Unix(int64(sec), int64(usec)*int64(time.Microsecond)).In(loc)
}

// isoFormat - local ISO 8601 time, microseconds only when non-zero
func isoFormat(t time.Time) string {
	if usec := t.Nanosecond() / 1000; usec != 0 {
		return fmt.Sprintf("%s.%06d", t.Format(isoLayout), usec)
	}
	return t.Format(isoLayout)
}

const (
	displayLayout = "2006-01-02 15:04"
	isoLayout     = "2006-01-02T15:04:05"
)
