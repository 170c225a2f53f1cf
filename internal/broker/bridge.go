package broker

import (
	"context"
	"time"

	applog "greenleaf/internal/log"
	"greenleaf/internal/notify"
)

// Publisher is the outbound half of Client.
type Publisher interface {
	Publish(ctx context.Context, ev StorageEvent) error
}

// Bridge forwards local cart and wishlist updates to other instances and
// replays theirs on the storage channel.
type Bridge struct {
	Bus        *notify.Bus
	Pub        Publisher
	InstanceID string

	subs []*notify.Subscription
}

func NewBridge(bus *notify.Bus, pub Publisher, instanceID string) *Bridge {
	return &Bridge{Bus: bus, Pub: pub, InstanceID: instanceID}
}

func (b *Bridge) Start() {
	for _, ch := range []string{notify.CartUpdated, notify.WishlistUpdated} {
		b.subs = append(b.subs, b.Bus.Subscribe(ch, b.forward))
	}
}

func (b *Bridge) Stop() {
	for _, s := range b.subs {
		s.Unsubscribe()
	}
	b.subs = nil
}

func (b *Bridge) forward(e notify.Event) {
	// only local writes leave the process
	if e.Origin != "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev := StorageEvent{SessionID: e.SessionID, Key: e.Key, Version: e.Version, Origin: b.InstanceID}
	if err := b.Pub.Publish(ctx, ev); err != nil {
		applog.Warn(nil, "broker.publish.fail", err, map[string]any{"key": e.Key})
	}
}

// Deliver is the consumer callback. Echoes of this instance's own writes are dropped.
func (b *Bridge) Deliver(ev StorageEvent) {
	if ev.Origin == b.InstanceID || ev.SessionID == "" {
		return
	}
	b.Bus.Publish(notify.Event{
		Channel:   notify.Storage,
		SessionID: ev.SessionID,
		Key:       ev.Key,
		Version:   ev.Version,
		Origin:    ev.Origin,
	})
}
