// Package storage defines the key/value storage used for carts, auth
// snapshots and pending actions. Two scopes exist per client: durable local
// storage and session storage that lapses with the tab.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

type Scope string

const (
	Local   Scope = "local"
	Session Scope = "session"
)

// Well-known keys. Nothing else may write under these names.
const (
	KeyCart            = "vhelpcc_food_cart"
	KeyUser            = "user"
	KeyIsAuthenticated = "isAuthenticated"

	KeyPendingRepairForm = "pendingRepairForm"
	KeyPendingLostFound  = "pendingLostFoundReport"
	KeyPendingCartAccess = "pendingCartAccess"
	KeyReturnURL         = "returnUrl"
	KeyServiceContext    = "serviceContext"
)

// Change describes a single mutation observed by subscribers.
type Change struct {
	Scope   Scope  `json:"scope"`
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Removed bool   `json:"removed"`
	// Origin identifies the writing process for stores shared between
	// processes. Remote is set when that process is not this one.
	Origin string `json:"origin,omitempty"`
	Remote bool   `json:"-"`
}

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Subscribe registers fn for every later mutation. The returned func
	// stops delivery; it is safe to call more than once.
	Subscribe(fn func(Change)) (unsubscribe func())
}

// Scopes is the storage pair owned by one client.
type Scopes struct {
	Local   Store
	Session Store
}

// NewMemoryScopes returns a fresh in-memory pair.
func NewMemoryScopes() Scopes {
	return Scopes{Local: NewMemoryStore(Local), Session: NewMemoryStore(Session)}
}

// GetJSON decodes the value under key into dest. A value that fails to
// decode is removed and reported as absent.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Printf("storage: discarding corrupt value under %q: %v", key, err)
		if errRemove := s.Remove(ctx, key); errRemove != nil {
			return false, fmt.Errorf("failed to remove corrupt %s: %w", key, errRemove)
		}
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
