// Package notify carries document-change notifications between clients over
// Redis pub/sub. Every successful persist is published; every client
// subscribes and replaces its in-memory snapshot with the payload.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"boxinventory/api/internal/store"
)

// Channel is the pub/sub channel for singleton-document updates.
const Channel = "app_storage_changes"

// Notifier publishes and subscribes to document updates.
type Notifier struct {
	client  *redis.Client
	channel string
}

// New connects to Redis and verifies the connection.
func New(redisURL string) (*Notifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Notifier{client: client, channel: Channel}, nil
}

// NewWithClient wraps an existing Redis client.
func NewWithClient(client *redis.Client) *Notifier {
	return &Notifier{client: client, channel: Channel}
}

// Publish broadcasts the document to all subscribed clients, including the
// publisher itself.
func (n *Notifier) Publish(ctx context.Context, doc store.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish document: %w", err)
	}
	return nil
}

// Subscription is a live change feed; Close releases it.
type Subscription struct {
	pubsub *redis.PubSub
}

// Subscribe registers a handler for inbound document updates. The handler
// runs on a dedicated goroutine until the subscription is closed. Messages
// that fail to decode are logged and skipped.
func (n *Notifier) Subscribe(ctx context.Context, handler func(store.Document)) (*Subscription, error) {
	pubsub := n.client.Subscribe(ctx, n.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", n.channel, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var doc store.Document
			if err := json.Unmarshal([]byte(msg.Payload), &doc); err != nil {
				log.Printf("notify: dropping malformed update: %v", err)
				continue
			}
			handler(doc)
		}
	}()

	return &Subscription{pubsub: pubsub}, nil
}

// Close cancels the subscription and ends the handler goroutine.
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

// Ping checks if Redis is reachable.
func (n *Notifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (n *Notifier) Close() error {
	return n.client.Close()
}
