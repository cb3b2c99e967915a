package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tevino/abool"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// Fetcher - source of full snapshots (pull path)
type Fetcher interface {
	FetchSnapshot(ctx context.Context, children []child.Child) (child.Snapshot, error)
}

// Coordinator - owns the last known snapshot of all children and fans updates out to subscribers
type Coordinator struct {
	fetcher  Fetcher
	children []child.Child

	data       child.Snapshot
	dataMutex  sync.RWMutex
	cycleMutex sync.Mutex

	lastUpdateSuccess *abool.AtomicBool

	subscribers      map[*chan bool]func()
	subscribersMutex sync.RWMutex

	refreshC chan struct{}
}

// New - coordinator constructor
func New(fetcher Fetcher, children []child.Child) *Coordinator {
	return &Coordinator{
		fetcher:           fetcher,
		children:          children,
		data:              make(child.Snapshot),
		lastUpdateSuccess: abool.New(),
		subscribers:       make(map[*chan bool]func()),
		refreshC:          make(chan struct{}, 1),
	}
}

// Children - children the coordinator tracks
func (c *Coordinator) Children() []child.Child {
	return c.children
}

// LastUpdateSuccess - true if the last refresh succeeded
func (c *Coordinator) LastUpdateSuccess() bool {
	return c.lastUpdateSuccess.IsSet()
}

// Data - returns a copy of the current snapshot
func (c *Coordinator) Data() child.Snapshot {
	c.dataMutex.RLock()
	defer c.dataMutex.RUnlock()

	return c.data.Clone()
}

// ChildData - returns data of a single child and whether the child is present in the snapshot
func (c *Coordinator) ChildData(childUID string) (child.Data, bool) {
	c.dataMutex.RLock()
	defer c.dataMutex.RUnlock()

	data, ok := c.data[childUID]
	return data, ok
}

// Refresh - pulls a full snapshot from the fetcher
// On failure the previous snapshot is kept and the coordinator is marked as failed.
// Subscribers are notified in both cases.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.cycleMutex.Lock()
	defer c.cycleMutex.Unlock()

	snapshot, err := c.fetcher.FetchSnapshot(ctx, c.children)
	if err != nil {
		if c.lastUpdateSuccess.SetToIf(true, false) {
			log.Error().Err(err).Msg("Unable to refresh data, marking entities unavailable")
		} else {
			log.Debug().Err(err).Msg("Refresh failed again")
		}

		c.notifySubscribers()
		return err
	}

	log.Trace().Int("children", len(snapshot)).Msg("Data refreshed")
	c.replace(snapshot)
	c.notifySubscribers()
	return nil
}

// SetUpdatedData - replaces the snapshot with pushed data (push path)
func (c *Coordinator) SetUpdatedData(snapshot child.Snapshot) {
	c.cycleMutex.Lock()
	defer c.cycleMutex.Unlock()

	c.replace(snapshot)
	c.notifySubscribers()
}

// Update - merges partial data of a single child in a thread safe manner
// Subscribers are notified only when something changed.
func (c *Coordinator) Update(childUID string, update child.Data) {
	c.cycleMutex.Lock()
	defer c.cycleMutex.Unlock()

	c.dataMutex.Lock()
	current := c.data[childUID]
	newData := current.Merge(&update)
	if newData == &current {
		c.dataMutex.Unlock()
		return
	}

	c.data[childUID] = *newData
	c.dataMutex.Unlock()

	c.notifySubscribers()
}

// RequestRefresh - asks the running poll loop to refresh as soon as possible
func (c *Coordinator) RequestRefresh() {
	select {
	case c.refreshC <- struct{}{}:
	default:
	}
}

// Run - poll loop, refreshes immediately and then on every tick until the context is done
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Terminating coordinator poll loop")
			return
		case <-ticker.C:
			c.Refresh(ctx)
		case <-c.refreshC:
			c.Refresh(ctx)
			ticker.Reset(interval)
		}
	}
}

// Subscribe - registers function to be called after every update
// Callbacks run synchronously and must not call Refresh/Update themselves.
// Returns unsubscribe function
func (c *Coordinator) Subscribe(callback func()) func() {
	unsubscribeC := make(chan bool, 1)

	c.subscribersMutex.Lock()
	c.subscribers[&unsubscribeC] = callback
	c.subscribersMutex.Unlock()

	return func() {
		c.subscribersMutex.Lock()
		delete(c.subscribers, &unsubscribeC)
		c.subscribersMutex.Unlock()
	}
}

func (c *Coordinator) replace(snapshot child.Snapshot) {
	if snapshot == nil {
		snapshot = make(child.Snapshot)
	}

	c.dataMutex.Lock()
	c.data = snapshot.Clone()
	c.dataMutex.Unlock()

	c.lastUpdateSuccess.Set()
}

func (c *Coordinator) notifySubscribers() {
	c.subscribersMutex.RLock()
	callbacks := make([]func(), 0, len(c.subscribers))
	for _, callback := range c.subscribers {
		callbacks = append(callbacks, callback)
	}
	c.subscribersMutex.RUnlock()

	for _, callback := range callbacks {
		callback()
	}
}
