package action

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// Domain - identifier namespace of the integration
const Domain = "huckleberry"

var (
	// ErrUnknownAction - returned for service names or action types outside of the fixed set
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownChild - returned when the child uid is missing or not tracked
	ErrUnknownChild = errors.New("unknown child")
	// ErrUnknownDevice - returned when the device id does not belong to this integration
	ErrUnknownDevice = errors.New("unknown device")
)

// API - remote calls the dispatcher maps services onto
type API interface {
	StartSleep(ctx context.Context, childUID string) error
	PauseSleep(ctx context.Context, childUID string) error
	ResumeSleep(ctx context.Context, childUID string) error
	CancelSleep(ctx context.Context, childUID string) error
	CompleteSleep(ctx context.Context, childUID string) error

	StartFeeding(ctx context.Context, childUID string, side child.Side) error
	PauseFeeding(ctx context.Context, childUID string) error
	ResumeFeeding(ctx context.Context, childUID string) error
	SwitchFeedingSide(ctx context.Context, childUID string) error
	CancelFeeding(ctx context.Context, childUID string) error
	CompleteFeeding(ctx context.Context, childUID string) error

	LogDiaper(ctx context.Context, childUID string, mode child.DiaperMode) error
	LogGrowth(ctx context.Context, childUID string, measurement child.GrowthMeasurement) error
}

// Refresher - asks for fresh data after a successful call
type Refresher interface {
	RequestRefresh()
}

// Service - name of a service
type Service string

// Services
const (
	ServiceStartSleep        Service = "start_sleep"
	ServicePauseSleep        Service = "pause_sleep"
	ServiceResumeSleep       Service = "resume_sleep"
	ServiceCancelSleep       Service = "cancel_sleep"
	ServiceCompleteSleep     Service = "complete_sleep"
	ServiceStartFeeding      Service = "start_feeding"
	ServicePauseFeeding      Service = "pause_feeding"
	ServiceResumeFeeding     Service = "resume_feeding"
	ServiceSwitchFeedingSide Service = "switch_feeding_side"
	ServiceCancelFeeding     Service = "cancel_feeding"
	ServiceCompleteFeeding   Service = "complete_feeding"
	ServiceLogDiaperPee      Service = "log_diaper_pee"
	ServiceLogDiaperPoo      Service = "log_diaper_poo"
	ServiceLogDiaperBoth     Service = "log_diaper_both"
	ServiceLogDiaperDry      Service = "log_diaper_dry"
	ServiceLogGrowth         Service = "log_growth"
)

// ServiceData - arguments of a service call
type ServiceData struct {
	ChildUID string     `json:"child_uid"`
	Side     child.Side `json:"side,omitempty"`

	Weight      *float64 `json:"weight,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Head        *float64 `json:"head,omitempty"`
	WeightUnits string   `json:"weight_units,omitempty"`
	HeightUnits string   `json:"height_units,omitempty"`
	HeadUnits   string   `json:"head_units,omitempty"`
}

type serviceHandler func(ctx context.Context, api API, data ServiceData) error

func childOnly(call func(API, context.Context, string) error) serviceHandler {
	return func(ctx context.Context, api API, data ServiceData) error {
		return call(api, ctx, data.ChildUID)
	}
}

func logDiaper(mode child.DiaperMode) serviceHandler {
	return func(ctx context.Context, api API, data ServiceData) error {
		return api.LogDiaper(ctx, data.ChildUID, mode)
	}
}

var services = map[Service]serviceHandler{
	ServiceStartSleep:    childOnly(API.StartSleep),
	ServicePauseSleep:    childOnly(API.PauseSleep),
	ServiceResumeSleep:   childOnly(API.ResumeSleep),
	ServiceCancelSleep:   childOnly(API.CancelSleep),
	ServiceCompleteSleep: childOnly(API.CompleteSleep),
	ServiceStartFeeding: func(ctx context.Context, api API, data ServiceData) error {
		side := data.Side
		if side == "" {
			side = child.SideLeft
		}
		if side != child.SideLeft && side != child.SideRight {
			return fmt.Errorf("invalid feeding side %q", side)
		}
		return api.StartFeeding(ctx, data.ChildUID, side)
	},
	ServicePauseFeeding:      childOnly(API.PauseFeeding),
	ServiceResumeFeeding:     childOnly(API.ResumeFeeding),
	ServiceSwitchFeedingSide: childOnly(API.SwitchFeedingSide),
	ServiceCancelFeeding:     childOnly(API.CancelFeeding),
	ServiceCompleteFeeding:   childOnly(API.CompleteFeeding),
	ServiceLogDiaperPee:      logDiaper(child.DiaperPee),
	ServiceLogDiaperPoo:      logDiaper(child.DiaperPoo),
	ServiceLogDiaperBoth:     logDiaper(child.DiaperBoth),
	ServiceLogDiaperDry:      logDiaper(child.DiaperDry),
	ServiceLogGrowth: func(ctx context.Context, api API, data ServiceData) error {
		return api.LogGrowth(ctx, data.ChildUID, child.GrowthMeasurement{
			Weight:      data.Weight,
			Height:      data.Height,
			Head:        data.Head,
			WeightUnits: data.WeightUnits,
			HeightUnits: data.HeightUnits,
			HeadUnits:   data.HeadUnits,
		})
	},
}

// Services - names of all supported services
func Services() []Service {
	names := make([]Service, 0, len(services))
	for name := range services {
		names = append(names, name)
	}

	return names
}

// Dispatcher - maps services and device actions one-to-one onto remote calls
type Dispatcher struct {
	api       API
	refresher Refresher
	children  map[string]child.Child
}

// NewDispatcher - constructor
// refresher may be nil
func NewDispatcher(api API, refresher Refresher, children []child.Child) *Dispatcher {
	byUID := make(map[string]child.Child, len(children))
	for _, c := range children {
		byUID[c.UID] = c
	}

	return &Dispatcher{
		api:       api,
		refresher: refresher,
		children:  byUID,
	}
}

// CallService - issues exactly one remote call for the service and waits for it to complete
func (d *Dispatcher) CallService(ctx context.Context, service Service, data ServiceData) error {
	handler, ok := services[service]
	if !ok {
		return fmt.Errorf("%w: service %q", ErrUnknownAction, service)
	}

	if _, ok := d.children[data.ChildUID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChild, data.ChildUID)
	}

	log.Info().Str("service", string(service)).Str("child_uid", data.ChildUID).Msg("Calling service")

	if err := handler(ctx, d.api, data); err != nil {
		return fmt.Errorf("%v for %v: %w", service, data.ChildUID, err)
	}

	if d.refresher != nil {
		d.refresher.RequestRefresh()
	}

	return nil
}

// DeviceID - device identifier of a child
func DeviceID(childUID string) string {
	return fmt.Sprintf("%v_%v", Domain, childUID)
}

// ChildUIDFromDevice - resolves child uid from the device identifier
func ChildUIDFromDevice(deviceID string) (string, bool) {
	prefix := Domain + "_"
	if !strings.HasPrefix(deviceID, prefix) || len(deviceID) == len(prefix) {
		return "", false
	}

	return strings.TrimPrefix(deviceID, prefix), true
}
