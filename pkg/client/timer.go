package client

import (
	"errors"
	"math"
	"time"

	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// ErrTimerNotActive - operation requires a running or paused timer
var ErrTimerNotActive = errors.New("timer is not active")

// ErrEmptyMeasurement - growth measurement without any value
var ErrEmptyMeasurement = errors.New("growth measurement has no values")

// Default growth units
const (
	DefaultWeightUnits = "kg"
	DefaultHeightUnits = "cm"
	DefaultHeadUnits   = "hcm"
)

// SleepInterval - completed sleep
type SleepInterval struct {
	Start       float64 `json:"start"`
	Duration    float64 `json:"duration"`
	Offset      float64 `json:"offset"`
	LastUpdated float64 `json:"lastUpdated"`
}

// FeedInterval - completed breast feeding
type FeedInterval struct {
	Mode          string  `json:"mode"`
	Start         float64 `json:"start"`
	LeftDuration  float64 `json:"leftDuration"`
	RightDuration float64 `json:"rightDuration"`
	LastSide      string  `json:"lastSide,omitempty"`
	Offset        float64 `json:"offset"`
	LastUpdated   float64 `json:"lastUpdated"`
}

// DiaperInterval - logged diaper change
type DiaperInterval struct {
	Mode        child.DiaperMode `json:"mode"`
	Start       float64          `json:"start"`
	Offset      float64          `json:"offset"`
	LastUpdated float64          `json:"lastUpdated"`
}

// GrowthEntry - logged growth measurement as stored by the remote service
type GrowthEntry struct {
	Type        string   `json:"type,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	Start       float64  `json:"start"`
	Weight      *float64 `json:"weight,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Head        *float64 `json:"head,omitempty"`
	WeightUnits string   `json:"weightUnits,omitempty"`
	HeightUnits string   `json:"heightUnits,omitempty"`
	HeadUnits   string   `json:"headUnits,omitempty"`
	Offset      float64  `json:"offset"`
	LastUpdated float64  `json:"lastUpdated"`
}

// Measurement - converts the entry to the measurement exposed to entities
func (g *GrowthEntry) Measurement() *child.GrowthMeasurement {
	m := &child.GrowthMeasurement{
		Weight:      g.Weight,
		Height:      g.Height,
		Head:        g.Head,
		WeightUnits: g.WeightUnits,
		HeightUnits: g.HeightUnits,
		HeadUnits:   g.HeadUnits,
	}

	if g.Start != 0 {
		start := g.Start
		m.Timestamp = &start
	}

	return m
}

func millis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func seconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}

func ptr(v float64) *float64 {
	return &v
}

// TimezoneOffset - minutes to be added to the local time to get UTC (positive west of Greenwich)
func TimezoneOffset(t time.Time) float64 {
	_, offset := t.Zone()
	return float64(-offset / 60)
}

// Elapsed - seconds the timer ran for, time spent paused not included
func Elapsed(t *child.Timer, now time.Time) float64 {
	if t == nil || !t.Active || t.TimerStartTime == nil {
		return 0
	}

	end := millis(now)
	if t.Paused && t.TimerEndTime != nil {
		end = *t.TimerEndTime
	}

	return math.Max(0, (end-*t.TimerStartTime)/1000)
}

// segment - seconds of the running part which has not been accumulated to any side yet
func segment(t *child.Timer, now time.Time) float64 {
	if !t.Running() {
		return 0
	}

	return math.Max(0, Elapsed(t, now)-orZero(t.LeftDuration)-orZero(t.RightDuration))
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}

	return *v
}

// accumulate - adds the running segment to the active side
func accumulate(t *child.Timer, now time.Time) {
	if t.ActiveSide == "" {
		return
	}

	current := segment(t, now)
	switch child.Side(t.ActiveSide) {
	case child.SideLeft:
		t.LeftDuration = ptr(orZero(t.LeftDuration) + current)
	case child.SideRight:
		t.RightDuration = ptr(orZero(t.RightDuration) + current)
	}
}

// StartTimer - new running timer
func StartTimer(now time.Time, uuid string) *child.Timer {
	return &child.Timer{
		Active:         true,
		Timestamp:      &child.Timestamp{Seconds: seconds(now)},
		TimerStartTime: ptr(millis(now)),
		UUID:           uuid,
	}
}

// StartSleep - starts a new sleep, resumes a paused one, running one is kept
func StartSleep(current *child.Timer, now time.Time, uuid string) *child.Timer {
	if current != nil && current.Active {
		t, _ := ResumeTimer(current, now)
		return t
	}

	return StartTimer(now, uuid)
}

// StartFeeding - starts a new feeding on the side
// Active feeding continues on the requested side.
func StartFeeding(current *child.Timer, now time.Time, uuid string, side child.Side) *child.Timer {
	if current != nil && current.Active {
		t, _ := ResumeTimer(current, now)
		if child.Side(t.CurrentSide()) != side {
			if t.ActiveSide == "" {
				t.ActiveSide = t.LastSide
			}
			accumulate(t, now)
			t.ActiveSide = string(side)
			t.LastSide = string(side)
		}

		return t
	}

	t := StartTimer(now, uuid)
	t.LeftDuration = ptr(0)
	t.RightDuration = ptr(0)
	t.ActiveSide = string(side)
	t.LastSide = string(side)
	return t
}

// PauseTimer - freezes the timer, feeding time is accumulated to the active side
func PauseTimer(current *child.Timer, now time.Time) (*child.Timer, error) {
	if current == nil || !current.Active {
		return nil, ErrTimerNotActive
	}

	t := *current
	if t.Paused {
		return &t, nil
	}

	accumulate(&t, now)
	t.Paused = true
	t.TimerEndTime = ptr(millis(now))
	return &t, nil
}

// ResumeTimer - continues the paused timer, the start is shifted by the paused time
func ResumeTimer(current *child.Timer, now time.Time) (*child.Timer, error) {
	if current == nil || !current.Active {
		return nil, ErrTimerNotActive
	}

	t := *current
	if !t.Paused {
		return &t, nil
	}

	if t.TimerStartTime != nil && t.TimerEndTime != nil {
		t.TimerStartTime = ptr(*t.TimerStartTime + millis(now) - *t.TimerEndTime)
	}

	t.Paused = false
	t.TimerEndTime = nil
	return &t, nil
}

// SwitchSide - continues the feeding on the other side
func SwitchSide(current *child.Timer, now time.Time) (*child.Timer, error) {
	if current == nil || !current.Active {
		return nil, ErrTimerNotActive
	}

	t := *current
	side := child.Side(t.CurrentSide())
	if side == "" {
		side = child.SideLeft
	}

	if t.ActiveSide == "" {
		t.ActiveSide = string(side)
	}

	accumulate(&t, now)
	t.ActiveSide = string(side.Other())
	t.LastSide = t.ActiveSide
	return &t, nil
}

// ResetTimer - inactive timer
func ResetTimer() *child.Timer {
	return &child.Timer{}
}

func sessionStart(t *child.Timer, now time.Time) float64 {
	if t.Timestamp != nil && t.Timestamp.Seconds != 0 {
		return t.Timestamp.Seconds
	}

	if t.TimerStartTime != nil {
		return *t.TimerStartTime / 1000
	}

	return seconds(now)
}

// CompleteSleep - interval and summary of the finished sleep
func CompleteSleep(current *child.Timer, now time.Time) (*SleepInterval, *child.LastSleep, error) {
	if current == nil || !current.Active {
		return nil, nil, ErrTimerNotActive
	}

	interval := &SleepInterval{
		Start:       sessionStart(current, now),
		Duration:    Elapsed(current, now),
		Offset:      TimezoneOffset(now),
		LastUpdated: seconds(now),
	}

	last := &child.LastSleep{
		Start:    ptr(interval.Start),
		Duration: ptr(interval.Duration),
		Offset:   ptr(interval.Offset),
	}

	return interval, last, nil
}

// CompleteFeeding - interval and summary of the finished feeding
func CompleteFeeding(current *child.Timer, now time.Time) (*FeedInterval, *child.LastNursing, error) {
	if current == nil || !current.Active {
		return nil, nil, ErrTimerNotActive
	}

	t := *current
	accumulate(&t, now)

	interval := &FeedInterval{
		Mode:          "breast",
		Start:         sessionStart(&t, now),
		LeftDuration:  orZero(t.LeftDuration),
		RightDuration: orZero(t.RightDuration),
		LastSide:      t.CurrentSide(),
		Offset:        TimezoneOffset(now),
		LastUpdated:   seconds(now),
	}

	last := &child.LastNursing{
		Start:         ptr(interval.Start),
		Duration:      ptr(interval.LeftDuration + interval.RightDuration),
		LeftDuration:  ptr(interval.LeftDuration),
		RightDuration: ptr(interval.RightDuration),
		Offset:        ptr(interval.Offset),
	}

	return interval, last, nil
}

// NewDiaperChange - interval and summary of the diaper change happening now
func NewDiaperChange(mode child.DiaperMode, now time.Time) (*DiaperInterval, *child.LastDiaper) {
	interval := &DiaperInterval{
		Mode:        mode,
		Start:       seconds(now),
		Offset:      TimezoneOffset(now),
		LastUpdated: seconds(now),
	}

	return interval, &child.LastDiaper{
		Start:  ptr(interval.Start),
		Mode:   mode,
		Offset: ptr(interval.Offset),
	}
}

// NewGrowthEntry - entry of the measurement taken now, missing units are defaulted
func NewGrowthEntry(m child.GrowthMeasurement, now time.Time) (*GrowthEntry, error) {
	if m.Weight == nil && m.Height == nil && m.Head == nil {
		return nil, ErrEmptyMeasurement
	}

	entry := &GrowthEntry{
		Type:        "health",
		Mode:        "growth",
		Start:       seconds(now),
		Weight:      m.Weight,
		Height:      m.Height,
		Head:        m.Head,
		Offset:      TimezoneOffset(now),
		LastUpdated: seconds(now),
	}

	if m.Weight != nil {
		entry.WeightUnits = unitsOrDefault(m.WeightUnits, DefaultWeightUnits)
	}
	if m.Height != nil {
		entry.HeightUnits = unitsOrDefault(m.HeightUnits, DefaultHeightUnits)
	}
	if m.Head != nil {
		entry.HeadUnits = unitsOrDefault(m.HeadUnits, DefaultHeadUnits)
	}

	return entry, nil
}

func unitsOrDefault(units, defaultUnits string) string {
	if units == "" {
		return defaultUnits
	}

	return units
}
