package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"campus_portal/internal/storage"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type Client struct {
	rdb *redis.Client
	// origin tags storage changes written through this process.
	origin string
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewClient(rdb), nil
}

// NewClient wraps an existing connection.
func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, origin: uuid.NewString()}
}

// Scopes returns the local/session storage pair for one client. The whole
// session scope expires after sessionTTL without being read or written.
func (c *Client) Scopes(clientID string, sessionTTL time.Duration) storage.Scopes {
	return storage.Scopes{
		Local:   c.Store(storage.Local, clientID, 0),
		Session: c.Store(storage.Session, clientID, sessionTTL),
	}
}

// Store returns a storage.Store for one scope of one client. A zero ttl
// keeps keys forever.
func (c *Client) Store(scope storage.Scope, clientID string, ttl time.Duration) *Store {
	return &Store{
		rdb:      c.rdb,
		origin:   c.origin,
		scope:    scope,
		clientID: clientID,
		ttl:      ttl,
	}
}

// Publish sends payload as JSON on channel.
func (c *Client) Publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return c.rdb.Publish(ctx, channel, data).Err()
}

// Subscribe opens a pub/sub connection on the given channels and waits for
// the server to confirm it.
func (c *Client) Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error) {
	ps := c.rdb.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return ps, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Store implements storage.Store on Redis. One scope of one client is a
// single hash, so its keys share a TTL. Every mutation is also published so
// that other processes serving the same client observe it.
type Store struct {
	rdb      *redis.Client
	origin   string
	scope    storage.Scope
	clientID string
	ttl      time.Duration
}

func (s *Store) key() string {
	return fmt.Sprintf("%s:%s", s.scope, s.clientID)
}

func (s *Store) channel() string {
	return fmt.Sprintf("storage:%s:%s", s.scope, s.clientID)
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.HGet(ctx, s.key(), key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if s.ttl > 0 {
		if err := s.rdb.Expire(ctx, s.key(), s.ttl).Err(); err != nil {
			log.Printf("redis: failed to refresh ttl on %s: %v", s.key(), err)
		}
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(), key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key(), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	s.publish(ctx, storage.Change{Scope: s.scope, Key: key, Value: value})
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	n, err := s.rdb.HDel(ctx, s.key(), key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if n > 0 {
		s.publish(ctx, storage.Change{Scope: s.scope, Key: key, Removed: true})
	}
	return nil
}

// Subscribe delivers every change published for this scope of the client.
// Changes written by another process arrive with Remote set.
func (s *Store) Subscribe(fn func(storage.Change)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	ps := s.rdb.Subscribe(ctx, s.channel())
	if _, err := ps.Receive(ctx); err != nil {
		log.Printf("redis: subscribe %s failed: %v", s.channel(), err)
	}

	go func() {
		for msg := range ps.Channel() {
			var change storage.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Printf("redis: dropping malformed change on %s: %v", msg.Channel, err)
				continue
			}
			change.Remote = change.Origin != s.origin
			fn(change)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			ps.Close()
		})
	}
}

func (s *Store) publish(ctx context.Context, c storage.Change) {
	c.Origin = s.origin
	data, err := json.Marshal(c)
	if err != nil {
		log.Printf("redis: failed to marshal change: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, s.channel(), data).Err(); err != nil {
		log.Printf("redis: failed to publish change on %s: %v", s.channel(), err)
	}
}
