package entity

import (
	"fmt"

	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// SleepSensor - tells whether the child is sleeping right now
type SleepSensor struct {
	base
}

// NewSleepSensor - constructor
func NewSleepSensor(c child.Child) *SleepSensor {
	return &SleepSensor{base{
		child:       c,
		platform:    PlatformBinarySensor,
		objectID:    "sleep_status",
		name:        "Sleep status",
		icon:        "mdi:sleep",
		deviceClass: "occupancy",
	}}
}

func sleepStatus(src Source, childUID string) (*child.SleepStatus, bool) {
	data, ok := src.ChildData(childUID)
	if !ok {
		return nil, false
	}

	if data.SleepStatus == nil {
		return &child.SleepStatus{}, true
	}

	return data.SleepStatus, true
}

func isSleeping(status *child.SleepStatus) bool {
	if status.Timer != nil {
		return status.Timer.Running()
	}

	// Legacy structure
	return status.IsSleeping
}

// IsOn - true if the sleep timer runs (or the legacy flag says so)
func (s *SleepSensor) IsOn(src Source) bool {
	status, ok := sleepStatus(src, s.child.UID)
	if !ok {
		return false
	}

	return isSleeping(status)
}

// State - ON/OFF
func (s *SleepSensor) State(src Source) string {
	return onOff(s.IsOn(src))
}

// Attributes - auxiliary sleep fields
func (s *SleepSensor) Attributes(src Source) map[string]interface{} {
	status, ok := sleepStatus(src, s.child.UID)
	if !ok {
		return map[string]interface{}{}
	}

	attrs := map[string]interface{}{}

	if status.Timer != nil {
		timer := status.Timer

		if timer.Active {
			attrs["is_paused"] = timer.Paused
		}

		if timer.Running() {
			if timer.Timestamp != nil {
				attrs["sleep_start"] = timer.Timestamp.Seconds
			}
			if timer.TimerStartTime != nil {
				attrs["timer_start_time_ms"] = *timer.TimerStartTime
				attrs["timer_start_time"] = int64(*timer.TimerStartTime / 1000)
			}
		}

		if status.Prefs != nil && status.Prefs.LastSleep != nil {
			attrs["last_sleep_duration_seconds"] = deref(status.Prefs.LastSleep.Duration)
			attrs["last_sleep_start"] = deref(status.Prefs.LastSleep.Start)
		}

		return attrs
	}

	// Legacy computed structure
	attrs["last_updated"] = deref(status.LastUpdated)

	if status.SleepStart != nil && *status.SleepStart != 0 {
		attrs["sleep_start"] = *status.SleepStart
	}

	if status.SleepDuration != nil {
		duration := *status.SleepDuration
		attrs["sleep_duration_seconds"] = duration
		attrs["sleep_duration"] = formatDuration(duration)
	}

	return attrs
}

// Available - last refresh succeeded and the child is known
func (s *SleepSensor) Available(src Source) bool {
	return s.availableWithChild(src)
}

// FeedingSensor - tells whether the child is being fed right now
type FeedingSensor struct {
	base
}

// NewFeedingSensor - constructor
func NewFeedingSensor(c child.Child) *FeedingSensor {
	return &FeedingSensor{base{
		child:       c,
		platform:    PlatformBinarySensor,
		objectID:    "feeding_status",
		name:        "Feeding status",
		icon:        "mdi:baby-bottle",
		deviceClass: "occupancy",
	}}
}

func feedStatus(src Source, childUID string) (*child.FeedStatus, bool) {
	data, ok := src.ChildData(childUID)
	if !ok {
		return nil, false
	}

	if data.FeedStatus == nil {
		return &child.FeedStatus{}, true
	}

	return data.FeedStatus, true
}

// IsOn - true if the feeding timer runs
func (s *FeedingSensor) IsOn(src Source) bool {
	status, ok := feedStatus(src, s.child.UID)
	if !ok {
		return false
	}

	return status.Timer.Running()
}

// State - ON/OFF
func (s *FeedingSensor) State(src Source) string {
	return onOff(s.IsOn(src))
}

// Attributes - auxiliary feeding fields
func (s *FeedingSensor) Attributes(src Source) map[string]interface{} {
	attrs := map[string]interface{}{}

	status, ok := feedStatus(src, s.child.UID)
	if !ok || status.Timer == nil {
		return attrs
	}

	timer := status.Timer
	if timer.Running() {
		if timer.Timestamp != nil {
			attrs["feeding_start"] = timer.Timestamp.Seconds
		}

		attrs["left_duration_seconds"] = orZero(timer.LeftDuration)
		attrs["right_duration_seconds"] = orZero(timer.RightDuration)

		lastSide := timer.LastSide
		if lastSide == "" {
			lastSide = "unknown"
		}
		attrs["last_side"] = lastSide
	}

	if status.Prefs != nil && status.Prefs.LastNursing != nil {
		last := status.Prefs.LastNursing
		attrs["last_nursing_start"] = deref(last.Start)
		attrs["last_nursing_duration_seconds"] = deref(last.Duration)
		attrs["last_nursing_left_seconds"] = orZero(last.LeftDuration)
		attrs["last_nursing_right_seconds"] = orZero(last.RightDuration)
	}

	return attrs
}

// Available - last refresh succeeded and the child is known
func (s *FeedingSensor) Available(src Source) bool {
	return s.availableWithChild(src)
}

func formatDuration(seconds float64) string {
	total := int64(seconds)
	return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
}
