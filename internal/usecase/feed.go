package usecase

import (
	"sort"
	"sync"

	"github.com/vportela/leadcrm/internal/entity"
)

// Predicate selects which change events a subscription receives.
type Predicate func(entity.ChangeEvent) bool

// Subscription is one cancellable stream of change events. Events arrive on
// C until Cancel is called; C is closed afterwards.
type Subscription struct {
	C      <-chan entity.ChangeEvent
	cancel func()
	once   sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Feed fans change events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event and is expected to
// reconcile from the store on its next fetch.
type Feed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*feedSub
}

type feedSub struct {
	ch        chan entity.ChangeEvent
	predicate Predicate
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]*feedSub)}
}

// Subscribe registers a predicate-filtered stream. A nil predicate matches
// every event.
func (f *Feed) Subscribe(p Predicate, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	sub := &feedSub{ch: make(chan entity.ChangeEvent, buffer), predicate: p}
	f.subs[id] = sub
	f.mu.Unlock()

	return &Subscription{
		C: sub.ch,
		cancel: func() {
			f.mu.Lock()
			if s, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(s.ch)
			}
			f.mu.Unlock()
		},
	}
}

func (f *Feed) Publish(ev entity.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.predicate != nil && !sub.predicate(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Subscriber is lagging; it reconciles on the next fetch.
		}
	}
}

// LeadCache is a read-through view reconciled from change events. The store
// stays authoritative: events merge by id, never blind-append, so a local
// insert followed by the server echo of the same row converges to one entry.
type LeadCache struct {
	mu    sync.RWMutex
	leads map[string]entity.Lead
}

func NewLeadCache() *LeadCache {
	return &LeadCache{leads: make(map[string]entity.Lead)}
}

// Load replaces the cache with an authoritative fetch.
func (c *LeadCache) Load(leads []entity.Lead) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leads = make(map[string]entity.Lead, len(leads))
	for _, lead := range leads {
		c.leads[lead.ID] = lead
	}
}

func (c *LeadCache) Apply(ev entity.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch ev.Type {
	case entity.ChangeInsert, entity.ChangeUpdate:
		if ev.Lead != nil {
			c.leads[ev.Lead.ID] = *ev.Lead
		}
	case entity.ChangeDelete:
		delete(c.leads, ev.LeadID)
	}
}

func (c *LeadCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.leads)
}

// Snapshot returns the cached leads ordered by created_at descending, ties
// broken by id for a deterministic order.
func (c *LeadCache) Snapshot() []entity.Lead {
	c.mu.RLock()
	out := make([]entity.Lead, 0, len(c.leads))
	for _, lead := range c.leads {
		out = append(out, lead)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
