// Package pending keeps a user's interrupted action in session storage
// across a login redirect and hands it back exactly once afterwards.
//
// A slot moves EMPTY -> STORED when login interrupts an action. Loading a
// stored payload that is expired, corrupt or meant for another page empties
// the slot. A successful replay empties it; a failed one keeps it for one
// more try; an auth failure during replay stores it again.
package pending

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campus_portal/internal/auth"
	"campus_portal/internal/storage"
)

const (
	DefaultMaxAge = 24 * time.Hour
	// MaxRetries is how many failed replays a payload survives.
	MaxRetries = 1
)

type Options struct {
	MaxAge time.Duration
	Now    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxAge <= 0 {
		o.MaxAge = DefaultMaxAge
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type Slot[T Payload] struct {
	store storage.Store
	key   string
	opts  Options
}

func newSlot[T Payload](store storage.Store, key string, opts Options) *Slot[T] {
	return &Slot[T]{store: store, key: key, opts: opts.withDefaults()}
}

func RepairSlot(store storage.Store, opts Options) *Slot[RepairForm] {
	return newSlot[RepairForm](store, storage.KeyPendingRepairForm, opts)
}

func CartSlot(store storage.Store, opts Options) *Slot[CartIntent] {
	return newSlot[CartIntent](store, storage.KeyPendingCartAccess, opts)
}

func LostFoundSlot(store storage.Store, opts Options) *Slot[LostFoundReport] {
	return newSlot[LostFoundReport](store, storage.KeyPendingLostFound, opts)
}

func (s *Slot[T]) Key() string { return s.key }

// Save stores payload, replacing whatever the slot held.
func (s *Slot[T]) Save(ctx context.Context, payload T, redirectURL string) error {
	return s.put(ctx, &Envelope[T]{
		Payload:     payload,
		Context:     payload.Context(),
		RedirectURL: auth.SafeReturnURL(redirectURL),
		Timestamp:   s.opts.Now(),
	})
}

// Load returns the stored payload if it belongs to page and is still fresh.
// Anything else found in the slot is deleted and reported as absent.
func (s *Slot[T]) Load(ctx context.Context, page Page) (*Envelope[T], error) {
	var env Envelope[T]
	ok, err := storage.GetJSON(ctx, s.store, s.key, &env)
	if err != nil || !ok {
		return nil, err
	}

	if reason := s.reject(&env, page); reason != "" {
		log.Printf("pending: discarding %s (%s)", s.key, reason)
		if err := s.store.Remove(ctx, s.key); err != nil {
			return nil, fmt.Errorf("failed to discard %s: %w", s.key, err)
		}
		return nil, nil
	}
	return &env, nil
}

// Complete empties the slot after the resumed action succeeded.
func (s *Slot[T]) Complete(ctx context.Context) error {
	if err := s.store.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear %s: %w", s.key, err)
	}
	return nil
}

// Fail records a failed replay. The payload stays for MaxRetries more
// attempts and is dropped after that.
func (s *Slot[T]) Fail(ctx context.Context, env *Envelope[T]) error {
	env.Attempts++
	if env.Attempts > MaxRetries {
		log.Printf("pending: dropping %s after %d failed attempts", s.key, env.Attempts)
		return s.Complete(ctx)
	}
	return s.put(ctx, env)
}

func (s *Slot[T]) reject(env *Envelope[T], page Page) string {
	switch {
	case env.Timestamp.IsZero():
		return "missing timestamp"
	case s.opts.Now().Sub(env.Timestamp) >= s.opts.MaxAge:
		return "expired"
	case env.Context != env.Payload.Context() || env.Context != page.Context:
		return "context mismatch"
	case !env.Payload.matches(page):
		return "service type mismatch"
	case env.Attempts > MaxRetries:
		return "retries exhausted"
	}
	return ""
}

func (s *Slot[T]) put(ctx context.Context, env *Envelope[T]) error {
	if err := storage.SetJSON(ctx, s.store, s.key, env); err != nil {
		return fmt.Errorf("failed to store %s: %w", s.key, err)
	}
	return nil
}

// Run replays the slot's payload through fn. ran is false when there was
// nothing to replay. On success the slot is emptied; an auth failure stores
// the payload again with a fresh timestamp; any other failure keeps it.
func Run[T Payload](ctx context.Context, slot *Slot[T], page Page, fn func(context.Context, T) error) (ran bool, err error) {
	env, err := slot.Load(ctx, page)
	if err != nil || env == nil {
		return false, err
	}

	runErr := fn(ctx, env.Payload)
	switch {
	case runErr == nil:
		return true, slot.Complete(ctx)
	case errors.Is(runErr, auth.ErrAuthRequired):
		env.Timestamp = slot.opts.Now()
		if err := slot.put(ctx, env); err != nil {
			log.Printf("pending: failed to re-store %s: %v", slot.key, err)
		}
	default:
		if err := slot.Fail(ctx, env); err != nil {
			log.Printf("pending: failed to record failure on %s: %v", slot.key, err)
		}
	}
	return true, runErr
}
