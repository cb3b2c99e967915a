package child

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Side - breast feeding side
type Side string

// Feeding sides
const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Other - returns the opposite side
func (s Side) Other() Side {
	if s == SideLeft {
		return SideRight
	}

	return SideLeft
}

// DiaperMode - kind of the logged diaper change
type DiaperMode string

// Diaper modes
const (
	DiaperPee  DiaperMode = "pee"
	DiaperPoo  DiaperMode = "poo"
	DiaperBoth DiaperMode = "both"
	DiaperDry  DiaperMode = "dry"
)

// Timestamp - seconds based timestamp as stored by the remote service
type Timestamp struct {
	Seconds float64 `json:"seconds"`
}

// UnmarshalJSON - accepts both {"seconds": x} and a plain number of seconds
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		if bytes.Equal(data, []byte("null")) {
			return nil
		}
		return json.Unmarshal(data, &t.Seconds)
	}

	type plain Timestamp
	return json.Unmarshal(data, (*plain)(t))
}

// Timer - in-progress activity of a child
// TimerStartTime and TimerEndTime are in milliseconds.
type Timer struct {
	Active         bool       `json:"active"`
	Paused         bool       `json:"paused"`
	Timestamp      *Timestamp `json:"timestamp,omitempty"`
	TimerStartTime *float64   `json:"timerStartTime,omitempty"`
	TimerEndTime   *float64   `json:"timerEndTime,omitempty"`
	UUID           string     `json:"uuid,omitempty"`

	// Feeding only
	LeftDuration  *float64 `json:"leftDuration,omitempty"`
	RightDuration *float64 `json:"rightDuration,omitempty"`
	LastSide      string   `json:"lastSide,omitempty"`
	ActiveSide    string   `json:"activeSide,omitempty"`
}

// Running - true if the timer is active and not paused
func (t *Timer) Running() bool {
	return t != nil && t.Active && !t.Paused
}

// CurrentSide - side being fed right now, falls back to the last used side
func (t *Timer) CurrentSide() string {
	if t == nil {
		return ""
	}

	if t.ActiveSide != "" {
		return t.ActiveSide
	}

	return t.LastSide
}

// LastSleep - summary of the last completed sleep
type LastSleep struct {
	Start    *float64 `json:"start,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Offset   *float64 `json:"offset,omitempty"`
}

// SleepPrefs - sleep preferences (summaries of last events)
type SleepPrefs struct {
	LastSleep *LastSleep `json:"lastSleep,omitempty"`
}

// SleepStatus - sleep record of a child
// Timer and Prefs describe the real-time structure, the rest is the legacy computed one.
type SleepStatus struct {
	Timer *Timer      `json:"timer,omitempty"`
	Prefs *SleepPrefs `json:"prefs,omitempty"`

	IsSleeping    bool     `json:"is_sleeping,omitempty"`
	LastUpdated   *float64 `json:"last_updated,omitempty"`
	SleepStart    *float64 `json:"sleep_start,omitempty"`
	SleepDuration *float64 `json:"sleep_duration,omitempty"`
}

// LastNursing - summary of the last completed breast feeding
type LastNursing struct {
	Start         *float64 `json:"start,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
	LeftDuration  *float64 `json:"leftDuration,omitempty"`
	RightDuration *float64 `json:"rightDuration,omitempty"`
	Offset        *float64 `json:"offset,omitempty"`
}

// FeedPrefs - feeding preferences
type FeedPrefs struct {
	LastNursing *LastNursing `json:"lastNursing,omitempty"`
}

// FeedStatus - feeding record of a child
type FeedStatus struct {
	Timer *Timer     `json:"timer,omitempty"`
	Prefs *FeedPrefs `json:"prefs,omitempty"`
}

// LastDiaper - last logged diaper change
type LastDiaper struct {
	Start  *float64   `json:"start,omitempty"`
	Mode   DiaperMode `json:"mode,omitempty"`
	Offset *float64   `json:"offset,omitempty"`
}

// DiaperPrefs - diaper preferences
type DiaperPrefs struct {
	LastDiaper *LastDiaper `json:"lastDiaper,omitempty"`
}

// DiaperStatus - diaper record of a child
type DiaperStatus struct {
	Prefs *DiaperPrefs `json:"prefs,omitempty"`
}

// GrowthMeasurement - latest growth measurement of a child
type GrowthMeasurement struct {
	Weight      *float64 `json:"weight,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Head        *float64 `json:"head,omitempty"`
	WeightUnits string   `json:"weight_units,omitempty"`
	HeightUnits string   `json:"height_units,omitempty"`
	HeadUnits   string   `json:"head_units,omitempty"`
	Timestamp   *float64 `json:"timestamp,omitempty"`
}

// IsEmpty - true if the measurement carries no data at all
func (g *GrowthMeasurement) IsEmpty() bool {
	return g == nil || *g == GrowthMeasurement{}
}
