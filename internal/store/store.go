// Package store persists a session's cart and wishlist as JSON collections
// and announces every successful write on the notify bus.
package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"greenleaf/internal/domain"
	"greenleaf/internal/notify"
)

var (
	// ErrCorrupt means stored content could not be decoded; the caller got an empty collection.
	ErrCorrupt = errors.New("store: malformed content")
	// ErrUnavailable means the backing KV failed to read or write.
	ErrUnavailable = errors.New("store: storage unavailable")
)

// KV is a per-session key-value facility.
type KV interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, bool, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
}

// Version fingerprints stored bytes. Empty means nothing stored.
type Version string

func versionOf(b []byte) Version {
	sum := blake2b.Sum256(b)
	return Version(hex.EncodeToString(sum[:16]))
}

type Adapter struct {
	kv  KV
	bus *notify.Bus
}

func NewAdapter(kv KV, bus *notify.Bus) *Adapter {
	return &Adapter{kv: kv, bus: bus}
}

// Load decodes key into out. A missing key leaves out untouched.
func (a *Adapter) Load(ctx context.Context, sessionID, key string, out any) (Version, error) {
	raw, ok, err := a.kv.Get(ctx, sessionID, key)
	if err != nil {
		return "", fmt.Errorf("load %s: %w: %v", key, ErrUnavailable, err)
	}
	if !ok || len(raw) == 0 {
		return "", nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return versionOf(raw), fmt.Errorf("load %s: %w: %v", key, ErrCorrupt, err)
	}
	return versionOf(raw), nil
}

// Save overwrites key with v and publishes the key's channel on success.
func (a *Adapter) Save(ctx context.Context, sessionID, key string, v any) (Version, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", key, err)
	}
	if err := a.kv.Set(ctx, sessionID, key, raw); err != nil {
		return "", fmt.Errorf("save %s: %w: %v", key, ErrUnavailable, err)
	}
	ver := versionOf(raw)
	if a.bus != nil {
		if ch := notify.ChannelFor(key); ch != "" {
			a.bus.Publish(notify.Event{Channel: ch, SessionID: sessionID, Key: key, Version: string(ver)})
		}
	}
	return ver, nil
}

// LoadCart always returns a non-nil collection, empty on any error.
// Decodable content is normalized to one clamped line per id.
func (a *Adapter) LoadCart(ctx context.Context, sessionID string) ([]domain.CartLineItem, Version, error) {
	var items []domain.CartLineItem
	ver, err := a.Load(ctx, sessionID, notify.KeyCart, &items)
	if err != nil {
		return []domain.CartLineItem{}, ver, err
	}
	return domain.NormalizeCart(items), ver, nil
}

func (a *Adapter) SaveCart(ctx context.Context, sessionID string, items []domain.CartLineItem) (Version, error) {
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return a.Save(ctx, sessionID, notify.KeyCart, items)
}

func (a *Adapter) LoadWishlist(ctx context.Context, sessionID string) ([]domain.WishlistEntry, Version, error) {
	var items []domain.WishlistEntry
	ver, err := a.Load(ctx, sessionID, notify.KeyWishlist, &items)
	if err != nil {
		return []domain.WishlistEntry{}, ver, err
	}
	return domain.NormalizeWishlist(items), ver, nil
}

func (a *Adapter) SaveWishlist(ctx context.Context, sessionID string, items []domain.WishlistEntry) (Version, error) {
	if items == nil {
		items = []domain.WishlistEntry{}
	}
	return a.Save(ctx, sessionID, notify.KeyWishlist, items)
}
