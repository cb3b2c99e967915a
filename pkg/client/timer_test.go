package client_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
	"gitlab.com/adam.stanek/huckleberry/pkg/client"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return t0.Add(time.Duration(seconds) * time.Second)
}

func TestSleepTimerLifecycle(t *testing.T) {
	timer := client.StartSleep(nil, t0, "uuid-1")
	assert.True(t, timer.Running())
	assert.Equal(t, "uuid-1", timer.UUID)
	assert.Equal(t, float64(t0.Unix()), timer.Timestamp.Seconds)
	assert.Equal(t, float64(t0.UnixMilli()), *timer.TimerStartTime)

	paused, err := client.PauseTimer(timer, at(600))
	require.NoError(t, err)
	assert.True(t, paused.Paused)
	assert.False(t, paused.Running())
	assert.Equal(t, 600.0, client.Elapsed(paused, at(5000)))

	// original timer is not touched
	assert.False(t, timer.Paused)

	resumed, err := client.ResumeTimer(paused, at(900))
	require.NoError(t, err)
	assert.True(t, resumed.Running())
	assert.Nil(t, resumed.TimerEndTime)
	assert.Equal(t, 700.0, client.Elapsed(resumed, at(1000)))

	interval, last, err := client.CompleteSleep(resumed, at(1200))
	require.NoError(t, err)
	assert.Equal(t, float64(t0.Unix()), interval.Start)
	assert.Equal(t, 900.0, interval.Duration)
	assert.Equal(t, 0.0, interval.Offset)
	assert.Equal(t, 900.0, *last.Duration)
	assert.Equal(t, interval.Start, *last.Start)
}

func TestStartSleepKeepsActiveTimer(t *testing.T) {
	timer := client.StartSleep(nil, t0, "uuid-1")

	again := client.StartSleep(timer, at(60), "uuid-2")
	assert.Equal(t, "uuid-1", again.UUID)
	assert.Equal(t, *timer.TimerStartTime, *again.TimerStartTime)

	paused, _ := client.PauseTimer(timer, at(60))
	restarted := client.StartSleep(paused, at(120), "uuid-2")
	assert.True(t, restarted.Running())
	assert.Equal(t, "uuid-1", restarted.UUID)
}

func TestInactiveTimer(t *testing.T) {
	_, err := client.PauseTimer(nil, t0)
	assert.ErrorIs(t, err, client.ErrTimerNotActive)

	_, err = client.ResumeTimer(client.ResetTimer(), t0)
	assert.ErrorIs(t, err, client.ErrTimerNotActive)

	_, err = client.SwitchSide(&child.Timer{}, t0)
	assert.ErrorIs(t, err, client.ErrTimerNotActive)

	_, _, err = client.CompleteSleep(nil, t0)
	assert.ErrorIs(t, err, client.ErrTimerNotActive)

	_, _, err = client.CompleteFeeding(&child.Timer{}, t0)
	assert.ErrorIs(t, err, client.ErrTimerNotActive)
}

func TestFeedingSides(t *testing.T) {
	timer := client.StartFeeding(nil, t0, "uuid-1", child.SideLeft)
	assert.Equal(t, "left", timer.ActiveSide)
	assert.Equal(t, "left", timer.LastSide)
	assert.Equal(t, 0.0, *timer.LeftDuration)

	switched, err := client.SwitchSide(timer, at(300))
	require.NoError(t, err)
	assert.Equal(t, "right", switched.ActiveSide)
	assert.Equal(t, "right", switched.LastSide)
	assert.Equal(t, 300.0, *switched.LeftDuration)
	assert.Equal(t, 0.0, *switched.RightDuration)

	paused, err := client.PauseTimer(switched, at(500))
	require.NoError(t, err)
	assert.Equal(t, 200.0, *paused.RightDuration)

	resumed, err := client.ResumeTimer(paused, at(1000))
	require.NoError(t, err)

	interval, last, err := client.CompleteFeeding(resumed, at(1100))
	require.NoError(t, err)
	assert.Equal(t, "breast", interval.Mode)
	assert.Equal(t, 300.0, interval.LeftDuration)
	assert.Equal(t, 300.0, interval.RightDuration)
	assert.Equal(t, "right", interval.LastSide)
	assert.Equal(t, 600.0, *last.Duration)
	assert.Equal(t, 300.0, *last.LeftDuration)
}

func TestStartFeedingOtherSideSwitches(t *testing.T) {
	timer := client.StartFeeding(nil, t0, "uuid-1", child.SideLeft)

	same := client.StartFeeding(timer, at(100), "uuid-2", child.SideLeft)
	assert.Equal(t, "left", same.ActiveSide)
	assert.Equal(t, 0.0, *same.LeftDuration)

	other := client.StartFeeding(timer, at(100), "uuid-2", child.SideRight)
	assert.Equal(t, "uuid-1", other.UUID)
	assert.Equal(t, "right", other.ActiveSide)
	assert.Equal(t, "right", other.LastSide)
	assert.Equal(t, 100.0, *other.LeftDuration)
}

func TestDiaperChange(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	interval, last := client.NewDiaperChange(child.DiaperPoo, t0.In(loc))

	assert.Equal(t, child.DiaperPoo, interval.Mode)
	assert.Equal(t, float64(t0.Unix()), interval.Start)
	assert.Equal(t, -60.0, interval.Offset)
	assert.Equal(t, child.DiaperPoo, last.Mode)
	assert.Equal(t, -60.0, *last.Offset)
}

func TestGrowthEntry(t *testing.T) {
	_, err := client.NewGrowthEntry(child.GrowthMeasurement{}, t0)
	assert.ErrorIs(t, err, client.ErrEmptyMeasurement)

	weight := 4.5
	entry, err := client.NewGrowthEntry(child.GrowthMeasurement{Weight: &weight}, t0)
	require.NoError(t, err)
	assert.Equal(t, "kg", entry.WeightUnits)
	assert.Empty(t, entry.HeightUnits)

	m := entry.Measurement()
	assert.Equal(t, 4.5, *m.Weight)
	assert.Equal(t, float64(t0.Unix()), *m.Timestamp)
}
