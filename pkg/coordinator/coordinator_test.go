package coordinator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
	"gitlab.com/adam.stanek/huckleberry/pkg/coordinator"
)

type fetcherMock struct {
	snapshot child.Snapshot
	err      error
	calls    int
}

func (f *fetcherMock) FetchSnapshot(ctx context.Context, children []child.Child) (child.Snapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

var children = []child.Child{{UID: "child_1", Name: "Test Child"}}

func sleeping() child.Data {
	return child.Data{SleepStatus: &child.SleepStatus{Timer: &child.Timer{Active: true}}}
}

func TestRefreshSuccess(t *testing.T) {
	fetcher := &fetcherMock{snapshot: child.Snapshot{"child_1": sleeping()}}
	c := coordinator.New(fetcher, children)

	notified := 0
	c.Subscribe(func() { notified++ })

	assert.False(t, c.LastUpdateSuccess())
	require.NoError(t, c.Refresh(context.Background()))

	assert.True(t, c.LastUpdateSuccess())
	assert.Equal(t, 1, notified)

	data, ok := c.ChildData("child_1")
	require.True(t, ok)
	assert.True(t, data.SleepStatus.Timer.Running())
}

func TestRefreshFailureKeepsData(t *testing.T) {
	fetcher := &fetcherMock{snapshot: child.Snapshot{"child_1": sleeping()}}
	c := coordinator.New(fetcher, children)
	require.NoError(t, c.Refresh(context.Background()))

	notified := 0
	c.Subscribe(func() { notified++ })

	fetcher.err = errors.New("boom")
	err := c.Refresh(context.Background())
	assert.Error(t, err)

	assert.False(t, c.LastUpdateSuccess())
	assert.Equal(t, 1, notified)

	_, ok := c.ChildData("child_1")
	assert.True(t, ok)
}

func TestRefreshReplacesWholesale(t *testing.T) {
	fetcher := &fetcherMock{snapshot: child.Snapshot{"child_1": sleeping()}}
	c := coordinator.New(fetcher, children)
	require.NoError(t, c.Refresh(context.Background()))

	fetcher.snapshot = child.Snapshot{"child_2": {}}
	require.NoError(t, c.Refresh(context.Background()))

	_, ok := c.ChildData("child_1")
	assert.False(t, ok)
	_, ok = c.ChildData("child_2")
	assert.True(t, ok)
}

func TestSetUpdatedData(t *testing.T) {
	c := coordinator.New(&fetcherMock{}, children)

	notified := 0
	unsubscribe := c.Subscribe(func() { notified++ })

	c.SetUpdatedData(child.Snapshot{"child_1": sleeping()})
	assert.True(t, c.LastUpdateSuccess())
	assert.Equal(t, 1, notified)

	unsubscribe()
	c.SetUpdatedData(child.Snapshot{})
	assert.Equal(t, 1, notified)
}

func TestUpdateNotifiesOnlyOnChange(t *testing.T) {
	c := coordinator.New(&fetcherMock{}, children)
	c.SetUpdatedData(child.Snapshot{"child_1": sleeping()})

	notified := 0
	c.Subscribe(func() { notified++ })

	c.Update("child_1", sleeping())
	assert.Equal(t, 0, notified)

	feed := &child.FeedStatus{Timer: &child.Timer{Active: true, LastSide: "left"}}
	c.Update("child_1", child.Data{FeedStatus: feed})
	assert.Equal(t, 1, notified)

	data, _ := c.ChildData("child_1")
	assert.NotNil(t, data.SleepStatus)
	assert.Same(t, feed, data.FeedStatus)
}

func TestDataIsCopy(t *testing.T) {
	c := coordinator.New(&fetcherMock{}, children)
	c.SetUpdatedData(child.Snapshot{"child_1": sleeping()})

	snapshot := c.Data()
	delete(snapshot, "child_1")

	_, ok := c.ChildData("child_1")
	assert.True(t, ok)
}

func TestRunRefreshesOnRequest(t *testing.T) {
	fetcher := &fetcherMock{snapshot: child.Snapshot{}}
	c := coordinator.New(fetcher, children)

	refreshed := make(chan struct{}, 10)
	c.Subscribe(func() { refreshed <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Hour)
		close(done)
	}()

	<-refreshed
	c.RequestRefresh()

	select {
	case <-refreshed:
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for requested refresh")
	}

	cancel()
	<-done
}
