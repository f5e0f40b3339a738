// Package realtime publishes row changes made through GORM onto Redis and
// lets HTTP handlers follow them per table with an equality filter.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
)

type Change struct {
	Table string                 `json:"table"`
	Op    Op                     `json:"op"`
	Row   map[string]interface{} `json:"row"`
	At    time.Time              `json:"at"`
}

func Channel(table string) string {
	return "changes:" + table
}

// Broker is the pub/sub surface of the Redis client.
type Broker interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
	Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error)
}

// Filter keeps rows whose Column equals Value. An empty Column keeps all.
type Filter struct {
	Column string
	Value  string
}

func (f Filter) Match(row map[string]interface{}) bool {
	if f.Column == "" {
		return true
	}
	v, ok := row[f.Column]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == f.Value
}

type Feed struct {
	broker Broker
}

func NewFeed(broker Broker) *Feed {
	return &Feed{broker: broker}
}

type Subscription struct {
	C <-chan Change

	ps     *redis.PubSub
	cancel context.CancelFunc
	once   sync.Once
	err    error
}

// Close stops delivery and closes C. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		s.err = s.ps.Close()
	})
	return s.err
}

// Subscribe follows changes to table that pass filter until ctx ends or the
// subscription is closed.
func (f *Feed) Subscribe(ctx context.Context, table string, filter Filter) (*Subscription, error) {
	ps, err := f.broker.Subscribe(ctx, Channel(table))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Change, 16)
	sub := &Subscription{C: out, ps: ps, cancel: cancel}

	go func() {
		defer close(out)
		defer sub.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					log.Printf("realtime: dropping malformed message on %s: %v", msg.Channel, err)
					continue
				}
				if !filter.Match(change.Row) {
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}
