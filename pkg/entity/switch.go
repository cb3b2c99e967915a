package entity

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/adam.stanek/huckleberry/pkg/action"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// SleepSwitch - starts and completes sleep tracking
type SleepSwitch struct {
	base
	caller Caller
}

// NewSleepSwitch - constructor
func NewSleepSwitch(c child.Child, caller Caller) *SleepSwitch {
	return &SleepSwitch{
		base: base{
			child:    c,
			platform: PlatformSwitch,
			objectID: "sleep_tracking",
			name:     "Sleep tracking",
			icon:     "mdi:sleep",
		},
		caller: caller,
	}
}

// IsOn - true if the sleep timer runs
func (s *SleepSwitch) IsOn(src Source) bool {
	status, ok := sleepStatus(src, s.child.UID)
	if !ok {
		return false
	}

	return isSleeping(status)
}

// State - ON/OFF
func (s *SleepSwitch) State(src Source) string { return onOff(s.IsOn(src)) }

// Attributes - none
func (s *SleepSwitch) Attributes(src Source) map[string]interface{} {
	return map[string]interface{}{}
}

// Available - last refresh succeeded and the child is known
func (s *SleepSwitch) Available(src Source) bool { return s.availableWithChild(src) }

// TurnOn - starts sleep tracking
func (s *SleepSwitch) TurnOn(ctx context.Context) error {
	return s.caller.CallService(ctx, action.ServiceStartSleep, action.ServiceData{ChildUID: s.child.UID})
}

// TurnOff - completes sleep tracking
func (s *SleepSwitch) TurnOff(ctx context.Context) error {
	return s.caller.CallService(ctx, action.ServiceCompleteSleep, action.ServiceData{ChildUID: s.child.UID})
}

// FeedingSwitch - starts and completes feeding on one side
type FeedingSwitch struct {
	base
	side   child.Side
	caller Caller
}

// NewFeedingSwitch - constructor
func NewFeedingSwitch(c child.Child, side child.Side, caller Caller) *FeedingSwitch {
	return &FeedingSwitch{
		base: base{
			child:    c,
			platform: PlatformSwitch,
			objectID: fmt.Sprintf("feeding_%v", side),
			name:     fmt.Sprintf("Feeding %v", side),
			icon:     "mdi:baby-bottle",
		},
		side:   side,
		caller: caller,
	}
}

// Side - feeding side the switch controls
func (s *FeedingSwitch) Side() child.Side { return s.side }

// IsOn - true if the feeding timer runs on this side
func (s *FeedingSwitch) IsOn(src Source) bool {
	status, ok := feedStatus(src, s.child.UID)
	if !ok || !status.Timer.Running() {
		return false
	}

	return strings.EqualFold(status.Timer.CurrentSide(), string(s.side))
}

// State - ON/OFF
func (s *FeedingSwitch) State(src Source) string { return onOff(s.IsOn(src)) }

// Attributes - controlled side
func (s *FeedingSwitch) Attributes(src Source) map[string]interface{} {
	return map[string]interface{}{"side": string(s.Side())}
}

// Available - last refresh succeeded and the child is known
func (s *FeedingSwitch) Available(src Source) bool { return s.availableWithChild(src) }

// TurnOn - starts feeding on this side
func (s *FeedingSwitch) TurnOn(ctx context.Context) error {
	return s.caller.CallService(ctx, action.ServiceStartFeeding, action.ServiceData{ChildUID: s.child.UID, Side: s.side})
}

// TurnOff - completes the feeding
func (s *FeedingSwitch) TurnOff(ctx context.Context) error {
	return s.caller.CallService(ctx, action.ServiceCompleteFeeding, action.ServiceData{ChildUID: s.child.UID})
}
