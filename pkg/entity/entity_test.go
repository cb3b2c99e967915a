package entity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/adam.stanek/huckleberry/pkg/action"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
	"gitlab.com/adam.stanek/huckleberry/pkg/coordinator"
	"gitlab.com/adam.stanek/huckleberry/pkg/entity"
)

var testChild = child.Child{UID: "child_1", Name: "Test Child", Birthday: "2023-01-01", Gender: "boy"}

func f(v float64) *float64 { return &v }

func newCoordinator(snapshot child.Snapshot) *coordinator.Coordinator {
	c := coordinator.New(nil, []child.Child{testChild})
	c.SetUpdatedData(snapshot)
	return c
}

type callerMock struct {
	services []action.Service
	data     []action.ServiceData
	actions  []action.Type
}

func (m *callerMock) CallService(ctx context.Context, service action.Service, data action.ServiceData) error {
	m.services = append(m.services, service)
	m.data = append(m.data, data)
	return nil
}

func (m *callerMock) CallAction(ctx context.Context, deviceID string, actionType action.Type) error {
	m.actions = append(m.actions, actionType)
	return nil
}

func TestBinarySensorsFollowTimers(t *testing.T) {
	sleep := entity.NewSleepSensor(testChild)
	feeding := entity.NewFeedingSensor(testChild)

	c := newCoordinator(child.Snapshot{
		"child_1": {
			SleepStatus: &child.SleepStatus{Timer: &child.Timer{Active: true}, Prefs: &child.SleepPrefs{}},
			FeedStatus:  &child.FeedStatus{Timer: &child.Timer{Active: true, LastSide: "left"}, Prefs: &child.FeedPrefs{}},
		},
	})

	assert.Equal(t, entity.StateOn, sleep.State(c))
	assert.Equal(t, entity.StateOn, feeding.State(c))
	assert.Equal(t, "left", feeding.Attributes(c)["last_side"])

	// awake and not feeding
	c.SetUpdatedData(child.Snapshot{
		"child_1": {
			SleepStatus: &child.SleepStatus{Timer: &child.Timer{Active: false}},
			FeedStatus:  &child.FeedStatus{Timer: &child.Timer{Active: false, LastSide: "left"}},
		},
	})

	assert.Equal(t, entity.StateOff, sleep.State(c))
	assert.Equal(t, entity.StateOff, feeding.State(c))
}

func TestBinarySensorsPaused(t *testing.T) {
	c := newCoordinator(child.Snapshot{
		"child_1": {
			SleepStatus: &child.SleepStatus{Timer: &child.Timer{Active: true, Paused: true}},
			FeedStatus:  &child.FeedStatus{Timer: &child.Timer{Active: true, Paused: true}},
		},
	})

	sleep := entity.NewSleepSensor(testChild)
	assert.False(t, sleep.IsOn(c))
	assert.Equal(t, map[string]interface{}{"is_paused": true}, sleep.Attributes(c))

	assert.False(t, entity.NewFeedingSensor(testChild).IsOn(c))
}

func TestSleepSensorAttributes(t *testing.T) {
	c := newCoordinator(child.Snapshot{
		"child_1": {SleepStatus: &child.SleepStatus{
			Timer: &child.Timer{
				Active:         true,
				Timestamp:      &child.Timestamp{Seconds: 1700000000},
				TimerStartTime: f(1700000000123),
			},
			Prefs: &child.SleepPrefs{LastSleep: &child.LastSleep{Start: f(1699990000), Duration: f(5400)}},
		}},
	})

	attrs := entity.NewSleepSensor(testChild).Attributes(c)
	assert.Equal(t, false, attrs["is_paused"])
	assert.Equal(t, 1700000000.0, attrs["sleep_start"])
	assert.Equal(t, 1700000000123.0, attrs["timer_start_time_ms"])
	assert.Equal(t, int64(1700000000), attrs["timer_start_time"])
	assert.Equal(t, 5400.0, attrs["last_sleep_duration_seconds"])
	assert.Equal(t, 1699990000.0, attrs["last_sleep_start"])
}

func TestSleepSensorLegacyFallback(t *testing.T) {
	c := newCoordinator(child.Snapshot{
		"child_1": {SleepStatus: &child.SleepStatus{
			IsSleeping:    true,
			LastUpdated:   f(1700000100),
			SleepStart:    f(1700000000),
			SleepDuration: f(3725),
		}},
	})

	sleep := entity.NewSleepSensor(testChild)
	assert.True(t, sleep.IsOn(c))

	attrs := sleep.Attributes(c)
	assert.Equal(t, 1700000100.0, attrs["last_updated"])
	assert.Equal(t, 1700000000.0, attrs["sleep_start"])
	assert.Equal(t, 3725.0, attrs["sleep_duration_seconds"])
	assert.Equal(t, "1h 2m", attrs["sleep_duration"])
}

func TestFeedingSensorAttributes(t *testing.T) {
	c := newCoordinator(child.Snapshot{
		"child_1": {FeedStatus: &child.FeedStatus{
			Timer: &child.Timer{Active: true, Timestamp: &child.Timestamp{Seconds: 1700000000}, LeftDuration: f(120)},
			Prefs: &child.FeedPrefs{LastNursing: &child.LastNursing{Start: f(1699990000), Duration: f(600), RightDuration: f(600)}},
		}},
	})

	attrs := entity.NewFeedingSensor(testChild).Attributes(c)
	assert.Equal(t, 1700000000.0, attrs["feeding_start"])
	assert.Equal(t, 120.0, attrs["left_duration_seconds"])
	assert.Equal(t, 0.0, attrs["right_duration_seconds"])
	assert.Equal(t, "unknown", attrs["last_side"])
	assert.Equal(t, 1699990000.0, attrs["last_nursing_start"])
	assert.Equal(t, 600.0, attrs["last_nursing_duration_seconds"])
	assert.Equal(t, 0.0, attrs["last_nursing_left_seconds"])
	assert.Equal(t, 600.0, attrs["last_nursing_right_seconds"])
}

func TestSwitchingSidesUpdatesLastSide(t *testing.T) {
	feeding := entity.NewFeedingSensor(testChild)
	left := entity.NewFeedingSwitch(testChild, child.SideLeft, nil)
	right := entity.NewFeedingSwitch(testChild, child.SideRight, nil)

	c := newCoordinator(child.Snapshot{
		"child_1": {FeedStatus: &child.FeedStatus{Timer: &child.Timer{Active: true, ActiveSide: "left", LastSide: "left"}}},
	})
	assert.Equal(t, "left", feeding.Attributes(c)["last_side"])
	assert.True(t, left.IsOn(c))
	assert.False(t, right.IsOn(c))

	c.Update("child_1", child.Data{FeedStatus: &child.FeedStatus{Timer: &child.Timer{Active: true, ActiveSide: "right", LastSide: "right"}}})
	assert.Equal(t, "right", feeding.Attributes(c)["last_side"])
	assert.False(t, left.IsOn(c))
	assert.True(t, right.IsOn(c))
}

func TestAvailability(t *testing.T) {
	c := newCoordinator(child.Snapshot{})

	assert.False(t, entity.NewSleepSensor(testChild).Available(c))
	assert.False(t, entity.NewFeedingSensor(testChild).Available(c))
	assert.Equal(t, entity.StateOff, entity.NewSleepSensor(testChild).State(c))
	assert.Empty(t, entity.NewSleepSensor(testChild).Attributes(c))

	assert.True(t, entity.NewGrowthSensor(testChild, time.UTC).Available(c))
	assert.True(t, entity.NewChildrenSensor([]child.Child{testChild}).Available(c))

	c.SetUpdatedData(child.Snapshot{"child_1": {}})
	assert.True(t, entity.NewSleepSensor(testChild).Available(c))

	unavailable := coordinator.New(nil, nil)
	assert.False(t, entity.NewGrowthSensor(testChild, time.UTC).Available(unavailable))
	assert.False(t, entity.NewProfileSensor(testChild).Available(unavailable))
}

func TestSwitches(t *testing.T) {
	caller := &callerMock{}

	c := newCoordinator(child.Snapshot{
		"child_1": {
			SleepStatus: &child.SleepStatus{Timer: &child.Timer{Active: true}},
			FeedStatus:  &child.FeedStatus{Timer: &child.Timer{Active: true, ActiveSide: "left"}},
		},
	})

	sleep := entity.NewSleepSwitch(testChild, caller)
	left := entity.NewFeedingSwitch(testChild, child.SideLeft, caller)
	right := entity.NewFeedingSwitch(testChild, child.SideRight, caller)

	assert.Equal(t, "child_1_sleep_tracking", sleep.UniqueID())
	assert.Equal(t, "child_1_feeding_left", left.UniqueID())
	assert.Equal(t, entity.StateOn, sleep.State(c))
	assert.Equal(t, entity.StateOn, left.State(c))
	assert.Equal(t, entity.StateOff, right.State(c))
	assert.Equal(t, map[string]interface{}{"side": "right"}, right.Attributes(c))

	ctx := context.Background()
	require.NoError(t, sleep.TurnOff(ctx))
	require.NoError(t, sleep.TurnOn(ctx))
	require.NoError(t, right.TurnOn(ctx))
	require.NoError(t, left.TurnOff(ctx))

	assert.Equal(t, []action.Service{
		action.ServiceCompleteSleep,
		action.ServiceStartSleep,
		action.ServiceStartFeeding,
		action.ServiceCompleteFeeding,
	}, caller.services)

	assert.Equal(t, action.ServiceData{ChildUID: "child_1", Side: child.SideRight}, caller.data[2])
	for _, data := range caller.data {
		assert.Equal(t, "child_1", data.ChildUID)
	}
}

func TestChildrenSensor(t *testing.T) {
	children := []child.Child{testChild, {UID: "child_2", Name: "Second"}}
	s := entity.NewChildrenSensor(children)
	c := newCoordinator(child.Snapshot{})

	assert.Equal(t, "2", s.State(c))
	assert.Equal(t, "huckleberry_children", s.UniqueID())
	assert.Nil(t, s.Device())

	attrs := s.Attributes(c)
	assert.Equal(t, []string{"child_1", "child_2"}, attrs["child_ids"])
	assert.Equal(t, []string{"Test Child", "Second"}, attrs["child_names"])
	assert.Len(t, attrs["children"], 2)
}

func TestProfileSensor(t *testing.T) {
	withPicture := testChild
	withPicture.Picture = "https://example.com/p.jpg"

	s := entity.NewProfileSensor(withPicture)
	c := newCoordinator(child.Snapshot{})

	assert.Equal(t, "Test Child", s.State(c))
	assert.Equal(t, "", s.Name())
	assert.Equal(t, "child_1_profile", s.UniqueID())
	assert.Equal(t, "https://example.com/p.jpg", s.Device().ConfigurationURL)
	assert.Equal(t, []string{"huckleberry_child_1"}, s.Device().Identifiers)

	attrs := s.Attributes(c)
	assert.Equal(t, "2023-01-01", attrs["birthday"])
	assert.NotContains(t, attrs, "color")
}

func TestGrowthSensor(t *testing.T) {
	s := entity.NewGrowthSensor(testChild, time.UTC)

	c := newCoordinator(child.Snapshot{"child_1": {}})
	assert.Equal(t, "No data", s.State(c))
	assert.Empty(t, s.Attributes(c))

	c.SetUpdatedData(child.Snapshot{"child_1": {GrowthData: &child.GrowthMeasurement{Weight: f(4.5)}}})
	assert.Equal(t, "Unknown", s.State(c))

	c.SetUpdatedData(child.Snapshot{"child_1": {GrowthData: &child.GrowthMeasurement{
		Weight:      f(4.5),
		Height:      f(55),
		HeightUnits: "in",
		Timestamp:   f(1700000000),
	}}})
	assert.Equal(t, "2023-11-14 22:13", s.State(c))

	attrs := s.Attributes(c)
	assert.Equal(t, 4.5, attrs["weight"])
	assert.Equal(t, "kg", attrs["weight_unit"])
	assert.Equal(t, "4.5 kg", attrs["weight_display"])
	assert.Equal(t, "in", attrs["height_unit"])
	assert.Equal(t, "55 in", attrs["height_display"])
	assert.NotContains(t, attrs, "head_circumference")
	assert.Equal(t, "2023-11-14T22:13:20", attrs["last_measured"])
}

func TestDiaperSensor(t *testing.T) {
	s := entity.NewDiaperSensor(testChild, time.UTC)

	c := newCoordinator(child.Snapshot{"child_1": {}})
	assert.Equal(t, "No changes logged", s.State(c))
	assert.Empty(t, s.Attributes(c))

	c.SetUpdatedData(child.Snapshot{"child_1": {DiaperData: &child.DiaperStatus{Prefs: &child.DiaperPrefs{
		LastDiaper: &child.LastDiaper{Start: f(1700000000), Mode: child.DiaperBoth, Offset: f(-60)},
	}}}})

	assert.Equal(t, "2023-11-14 22:13", s.State(c))

	attrs := s.Attributes(c)
	assert.Equal(t, 1700000000.0, attrs["timestamp"])
	assert.Equal(t, "2023-11-14T22:13:20", attrs["time"])
	assert.Equal(t, "both", attrs["mode"])
	assert.Equal(t, "Both", attrs["type"])
	assert.Equal(t, -60.0, attrs["timezone_offset_minutes"])
}

func TestDiaperSensorFractionalTimeAndMode(t *testing.T) {
	s := entity.NewDiaperSensor(testChild, time.UTC)

	c := newCoordinator(child.Snapshot{"child_1": {DiaperData: &child.DiaperStatus{Prefs: &child.DiaperPrefs{
		LastDiaper: &child.LastDiaper{Start: f(1700000000.5), Mode: child.DiaperMode("éCLAT")},
	}}}})

	attrs := s.Attributes(c)
	assert.Equal(t, "2023-11-14T22:13:20.500000", attrs["time"])
	assert.Equal(t, "Éclat", attrs["type"])
}

func TestActionButton(t *testing.T) {
	caller := &callerMock{}
	b := entity.NewActionButton(testChild, action.StartFeedingLeft, caller)

	assert.Equal(t, "Start feeding left", b.Name())
	assert.Equal(t, "mdi:baby-bottle", b.Icon())
	assert.Equal(t, "child_1_action_start_feeding_left", b.UniqueID())

	require.NoError(t, b.Press(context.Background()))
	assert.Equal(t, []action.Type{action.StartFeedingLeft}, caller.actions)
}

func TestNewSet(t *testing.T) {
	entities := entity.NewSet([]child.Child{testChild}, &callerMock{}, entity.Opts{Buttons: true})
	assert.Len(t, entities, 1+8+len(action.Types)-1)

	seen := map[string]bool{}
	for _, e := range entities {
		if b, ok := e.(entity.Button); ok {
			assert.NotEqual(t, action.LogGrowth, b.ActionType())
		}
		assert.False(t, seen[e.UniqueID()], "duplicate unique id %v", e.UniqueID())
		seen[e.UniqueID()] = true
	}
}
