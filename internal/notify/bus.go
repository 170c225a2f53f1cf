// Package notify is the in-process publish/subscribe bus that keeps every
// view of a session's cart and wishlist in step after a mutation.
package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	CartUpdated     = "cartUpdated"
	WishlistUpdated = "wishlistUpdated"
	// Storage carries mutations made by other instances sharing the store.
	Storage = "storage"
)

const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

// ChannelFor maps a storage key to the channel announcing its changes.
func ChannelFor(key string) string {
	switch key {
	case KeyCart:
		return CartUpdated
	case KeyWishlist:
		return WishlistUpdated
	}
	return ""
}

type Event struct {
	Channel   string    `json:"channel"`
	SessionID string    `json:"-"`
	Key       string    `json:"key"`
	Version   string    `json:"version,omitempty"`
	Origin    string    `json:"origin,omitempty"`
	At        time.Time `json:"at"`
}

// SSE encodes e as one server-sent-events frame.
func (e Event) SSE() []byte {
	b, _ := json.Marshal(e)
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Channel, b))
}

type Handler func(Event)

type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]*Subscription
}

func NewBus() *Bus {
	return &Bus{subs: map[string][]*Subscription{}}
}

type Subscription struct {
	bus     *Bus
	id      uint64
	channel string
	fn      Handler
}

// Subscribe registers fn on channel. Handlers run in registration order.
func (b *Bus) Subscribe(channel string, fn Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := &Subscription{bus: b, id: b.nextID, channel: channel, fn: fn}
	b.subs[channel] = append(b.subs[channel], s)
	return s
}

// Unsubscribe is safe to call more than once and from inside a handler.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[s.channel]
	for i, x := range list {
		if x.id == s.id {
			next := make([]*Subscription, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			b.subs[s.channel] = next
			break
		}
	}
}

func (b *Bus) active(s *Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, x := range b.subs[s.channel] {
		if x.id == s.id {
			return true
		}
	}
	return false
}

// Publish delivers e synchronously to the subscribers registered on
// e.Channel at the time of the call. Nothing is retained for later subscribers.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.Lock()
	list := b.subs[e.Channel]
	b.mu.Unlock()
	for _, s := range list {
		// a handler earlier in this dispatch may have torn s down
		if !b.active(s) {
			continue
		}
		s.fn(e)
	}
}

// Count reports the live subscribers on channel.
func (b *Bus) Count(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}
