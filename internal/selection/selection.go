// Package selection holds the dataset the user most recently chose.
//
// A Channel is a single-slot, last-write-wins store. Search and workflow
// surfaces share one Channel instance without importing each other: the
// search side calls Select, the workflow side observes.
package selection

import (
	"context"
	"sync"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/pubsub"
)

// Selection is the payload delivered to observers. Present is false after
// Clear.
type Selection struct {
	Ref     dataset.Reference
	Present bool
}

// Observer is called synchronously on every Select and Clear. Observers must
// not call Select or Clear themselves.
type Observer func(Selection)

// Channel is the process-wide dataset selection slot.
type Channel struct {
	// order serializes whole updates so observers and subscribers see them
	// in the same order as Current.
	order sync.Mutex

	mu        sync.RWMutex
	current   Selection
	observers map[int]Observer
	nextID    int
	broker    *pubsub.Broker[Selection]
}

// New creates an empty Channel.
func New() *Channel {
	return &Channel{
		observers: make(map[int]Observer),
		broker:    pubsub.NewStickyBroker[Selection](),
	}
}

// Select replaces the current selection and notifies every observer before
// returning.
func (c *Channel) Select(ref dataset.Reference) {
	c.set(Selection{Ref: ref, Present: true}, pubsub.SelectedEvent)
	log.Debug(log.CatSelection, "dataset selected", "url", ref.URL, "format", ref.Format)
}

// Clear removes the current selection and notifies observers.
func (c *Channel) Clear() {
	c.set(Selection{}, pubsub.ClearedEvent)
	log.Debug(log.CatSelection, "selection cleared")
}

// Current returns the latest selection, if any.
func (c *Channel) Current() (dataset.Reference, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Ref, c.current.Present
}

// Observe registers fn for synchronous notifications. The returned function
// removes the observer.
func (c *Channel) Observe(fn Observer) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Subscribe returns an event stream for asynchronous consumers such as the
// Bubble Tea update loop. The latest selection is replayed on subscribe.
func (c *Channel) Subscribe(ctx context.Context) <-chan pubsub.Event[Selection] {
	return c.broker.Subscribe(ctx)
}

// Close releases subscriber channels.
func (c *Channel) Close() {
	c.broker.Close()
}

func (c *Channel) set(sel Selection, eventType pubsub.EventType) {
	c.order.Lock()
	defer c.order.Unlock()

	c.mu.Lock()
	c.current = sel
	observers := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(sel)
	}
	c.broker.Publish(eventType, sel)
}
