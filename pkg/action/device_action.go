package action

import (
	"context"
	"errors"
	"fmt"

	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// Type - device action type
type Type string

// Device action types
const (
	StartSleep        Type = "start_sleep"
	PauseSleep        Type = "pause_sleep"
	ResumeSleep       Type = "resume_sleep"
	CancelSleep       Type = "cancel_sleep"
	CompleteSleep     Type = "complete_sleep"
	StartFeedingLeft  Type = "start_feeding_left"
	StartFeedingRight Type = "start_feeding_right"
	PauseFeeding      Type = "pause_feeding"
	ResumeFeeding     Type = "resume_feeding"
	SwitchFeedingSide Type = "switch_feeding_side"
	CancelFeeding     Type = "cancel_feeding"
	CompleteFeeding   Type = "complete_feeding"
	LogDiaperPee      Type = "log_diaper_pee"
	LogDiaperPoo      Type = "log_diaper_poo"
	LogDiaperBoth     Type = "log_diaper_both"
	LogDiaperDry      Type = "log_diaper_dry"
	LogGrowth         Type = "log_growth"
)

// Types - all device action types grouped as sleep, feeding, diaper and growth
var Types = []Type{
	StartSleep, PauseSleep, ResumeSleep, CancelSleep, CompleteSleep,
	StartFeedingLeft, StartFeedingRight, PauseFeeding, ResumeFeeding, SwitchFeedingSide, CancelFeeding, CompleteFeeding,
	LogDiaperPee, LogDiaperPoo, LogDiaperBoth, LogDiaperDry,
	LogGrowth,
}

// ErrMeasurementRequired - the action needs data which a device action cannot carry
var ErrMeasurementRequired = errors.New("measurement required")

// RequiresMeasurement - true for actions which only work as a service call with measurement data
func (t Type) RequiresMeasurement() bool {
	return t == LogGrowth
}

// ServiceCall - service invocation a device action maps to
type ServiceCall struct {
	Service Service
	Side    child.Side
}

var deviceActions = map[Type]ServiceCall{
	StartSleep:        {Service: ServiceStartSleep},
	PauseSleep:        {Service: ServicePauseSleep},
	ResumeSleep:       {Service: ServiceResumeSleep},
	CancelSleep:       {Service: ServiceCancelSleep},
	CompleteSleep:     {Service: ServiceCompleteSleep},
	StartFeedingLeft:  {Service: ServiceStartFeeding, Side: child.SideLeft},
	StartFeedingRight: {Service: ServiceStartFeeding, Side: child.SideRight},
	PauseFeeding:      {Service: ServicePauseFeeding},
	ResumeFeeding:     {Service: ServiceResumeFeeding},
	SwitchFeedingSide: {Service: ServiceSwitchFeedingSide},
	CancelFeeding:     {Service: ServiceCancelFeeding},
	CompleteFeeding:   {Service: ServiceCompleteFeeding},
	LogDiaperPee:      {Service: ServiceLogDiaperPee},
	LogDiaperPoo:      {Service: ServiceLogDiaperPoo},
	LogDiaperBoth:     {Service: ServiceLogDiaperBoth},
	LogDiaperDry:      {Service: ServiceLogDiaperDry},
	LogGrowth:         {Service: ServiceLogGrowth},
}

// Action - device action descriptor
type Action struct {
	DeviceID string `json:"device_id"`
	Domain   string `json:"domain"`
	Type     Type   `json:"type"`
}

// Actions - lists device actions available for the device
func Actions(deviceID string) []Action {
	actions := make([]Action, 0, len(Types))
	for _, t := range Types {
		actions = append(actions, Action{DeviceID: deviceID, Domain: Domain, Type: t})
	}

	return actions
}

// Resolve - returns the service call the action type maps to
func Resolve(actionType Type) (ServiceCall, error) {
	call, ok := deviceActions[actionType]
	if !ok {
		return ServiceCall{}, fmt.Errorf("%w: action type %q", ErrUnknownAction, actionType)
	}

	return call, nil
}

// CallAction - executes a device action of the device
func (d *Dispatcher) CallAction(ctx context.Context, deviceID string, actionType Type) error {
	childUID, ok := ChildUIDFromDevice(deviceID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, deviceID)
	}

	call, err := Resolve(actionType)
	if err != nil {
		return err
	}

	if actionType.RequiresMeasurement() {
		return fmt.Errorf("%w: call the %v service with weight, height or head", ErrMeasurementRequired, call.Service)
	}

	return d.CallService(ctx, call.Service, ServiceData{ChildUID: childUID, Side: call.Side})
}
