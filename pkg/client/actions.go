package client

import (
	"context"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

func (c *HuckleberryClient) newID() string {
	if c.NewID == nil {
		return uuid.NewString()
	}

	return c.NewID()
}

type timerRecord struct {
	Timer *child.Timer `json:"timer"`
}

func (c *HuckleberryClient) timer(ctx context.Context, collection string, childUID string) (*child.Timer, error) {
	record := new(timerRecord)
	if err := c.getRecord(ctx, collection, childUID, record); err != nil {
		return nil, err
	}

	return record.Timer, nil
}

// updateTimer - reads the timer, applies the mutation and writes it back
func (c *HuckleberryClient) updateTimer(ctx context.Context, collection string, childUID string, mutate func(*child.Timer) (*child.Timer, error)) error {
	current, err := c.timer(ctx, collection, childUID)
	if err != nil {
		return err
	}

	timer, err := mutate(current)
	if err != nil {
		return err
	}

	return c.PatchDocument(ctx, path.Join(collection, childUID), Patch{"timer": timer})
}

// StartSleep - starts sleep timer
func (c *HuckleberryClient) StartSleep(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Starting sleep")

	return c.updateTimer(ctx, SleepCollection, childUID, func(t *child.Timer) (*child.Timer, error) {
		return StartSleep(t, c.now(), c.newID()), nil
	})
}

// PauseSleep - pauses sleep timer
func (c *HuckleberryClient) PauseSleep(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Pausing sleep")

	return c.updateTimer(ctx, SleepCollection, childUID, func(t *child.Timer) (*child.Timer, error) {
		return PauseTimer(t, c.now())
	})
}

// ResumeSleep - resumes sleep timer
func (c *HuckleberryClient) ResumeSleep(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Resuming sleep")

	return c.updateTimer(ctx, SleepCollection, childUID, func(t *child.Timer) (*child.Timer, error) {
		return ResumeTimer(t, c.now())
	})
}

// CancelSleep - discards sleep timer without saving
func (c *HuckleberryClient) CancelSleep(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Cancelling sleep")

	return c.PatchDocument(ctx, path.Join(SleepCollection, childUID), Patch{"timer": ResetTimer()})
}

// CompleteSleep - stops sleep timer and saves the interval
func (c *HuckleberryClient) CompleteSleep(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Completing sleep")

	timer, err := c.timer(ctx, SleepCollection, childUID)
	if err != nil {
		return err
	}

	interval, last, err := CompleteSleep(timer, c.now())
	if err != nil {
		return err
	}

	if _, err := c.CreateDocument(ctx, path.Join(SleepCollection, childUID, IntervalsCollection), interval); err != nil {
		return err
	}

	return c.PatchDocument(ctx, path.Join(SleepCollection, childUID), Patch{
		"timer":           ResetTimer(),
		"prefs.lastSleep": last,
	})
}

// StartFeeding - starts feeding timer on the side
func (c *HuckleberryClient) StartFeeding(ctx context.Context, childUID string, side child.Side) error {
	log.Info().Str("child_uid", childUID).Str("side", string(side)).Msg("Starting feeding")

	return c.updateTimer(ctx, FeedCollection, childUID, func(t *child.Timer) (*child.Timer, error) {
		return StartFeeding(t, c.now(), c.newID(), side), nil
	})
}

// PauseFeeding - pauses feeding timer
func (c *HuckleberryClient) PauseFeeding(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Pausing feeding")

	return c.updateTimer(ctx, FeedCollection, childUID, func(t *child.Timer) (*child.Timer, error) {
		return PauseTimer(t, c.now())
	})
}

// ResumeFeeding - resumes feeding timer
func (c *HuckleberryClient) ResumeFeeding(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Resuming feeding")

	return c.updateTimer(ctx, FeedCollection, childUID, func(t *child.Timer) (*child.Timer, error) {
		return ResumeTimer(t, c.now())
	})
}

// SwitchFeedingSide - continues feeding on the other side
func (c *HuckleberryClient) SwitchFeedingSide(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Switching feeding side")

	return c.updateTimer(ctx, FeedCollection, childUID, func(t *child.Timer) (*child.Timer, error) {
		return SwitchSide(t, c.now())
	})
}

// CancelFeeding - discards feeding timer without saving
func (c *HuckleberryClient) CancelFeeding(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Cancelling feeding")

	return c.PatchDocument(ctx, path.Join(FeedCollection, childUID), Patch{"timer": ResetTimer()})
}

// CompleteFeeding - stops feeding timer and saves the interval
func (c *HuckleberryClient) CompleteFeeding(ctx context.Context, childUID string) error {
	log.Info().Str("child_uid", childUID).Msg("Completing feeding")

	timer, err := c.timer(ctx, FeedCollection, childUID)
	if err != nil {
		return err
	}

	interval, last, err := CompleteFeeding(timer, c.now())
	if err != nil {
		return err
	}

	if _, err := c.CreateDocument(ctx, path.Join(FeedCollection, childUID, IntervalsCollection), interval); err != nil {
		return err
	}

	return c.PatchDocument(ctx, path.Join(FeedCollection, childUID), Patch{
		"timer":             ResetTimer(),
		"prefs.lastNursing": last,
	})
}

// LogDiaper - logs diaper change happening now
func (c *HuckleberryClient) LogDiaper(ctx context.Context, childUID string, mode child.DiaperMode) error {
	log.Info().Str("child_uid", childUID).Str("mode", string(mode)).Msg("Logging diaper change")

	interval, last := NewDiaperChange(mode, c.now())

	if _, err := c.CreateDocument(ctx, path.Join(DiaperCollection, childUID, IntervalsCollection), interval); err != nil {
		return err
	}

	return c.PatchDocument(ctx, path.Join(DiaperCollection, childUID), Patch{"prefs.lastDiaper": last})
}

// LogGrowth - logs growth measurement taken now
func (c *HuckleberryClient) LogGrowth(ctx context.Context, childUID string, measurement child.GrowthMeasurement) error {
	log.Info().Str("child_uid", childUID).Msg("Logging growth measurement")

	entry, err := NewGrowthEntry(measurement, c.now())
	if err != nil {
		return err
	}

	if _, err := c.CreateDocument(ctx, path.Join(HealthCollection, childUID, HealthDataCollection), entry); err != nil {
		return err
	}

	return c.PatchDocument(ctx, path.Join(HealthCollection, childUID), Patch{"prefs.lastGrowth": entry})
}
