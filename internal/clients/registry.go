// Package clients tracks the browser profiles talking to the server. Each
// profile owns a storage pair and an event bus for its lifetime.
package clients

import (
	"log"
	"sync"
	"time"

	"campus_portal/internal/events"
	"campus_portal/internal/storage"
)

type Client struct {
	ID     string
	Scopes storage.Scopes
	Bus    *events.Bus

	mu       sync.Mutex
	lastSeen time.Time
}

func (c *Client) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *Client) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// listening reports whether a stream still follows this client's bus.
func (c *Client) listening() bool {
	return c.Bus.Subscribers(events.CartUpdated)+c.Bus.Subscribers(events.AuthChanged) > 0
}

// ScopeFactory builds the storage pair for a client id.
type ScopeFactory func(clientID string) storage.Scopes

type Registry struct {
	mu      sync.Mutex
	clients map[string]*Client
	scopes  ScopeFactory
	now     func() time.Time
}

func NewRegistry(scopes ScopeFactory) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		scopes:  scopes,
		now:     time.Now,
	}
}

// NewMemoryRegistry keeps every client's storage in process.
func NewMemoryRegistry() *Registry {
	return NewRegistry(func(string) storage.Scopes { return storage.NewMemoryScopes() })
}

// Get returns the client for id, creating it on first use.
func (r *Registry) Get(id string) *Client {
	r.mu.Lock()
	c, ok := r.clients[id]
	if !ok {
		c = &Client{ID: id, Scopes: r.scopes(id), Bus: events.NewBus()}
		r.clients[id] = c
	}
	r.mu.Unlock()

	c.touch(r.now())
	return c
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Sweep forgets clients not seen for idle and returns how many went. Their
// storage is left alone; a returning client picks it up again.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, c := range r.clients {
		if c.idleSince().Before(cutoff) && !c.listening() {
			delete(r.clients, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("clients: swept %d idle clients", removed)
	}
	return removed
}
