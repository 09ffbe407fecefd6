package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Inbox keeps the most recent notifications of each user in a Redis list
type Inbox struct {
	client *redis.Client
	prefix string
	size   int64
}

// NewInbox connects to Redis and returns an inbox holding up to size entries per user
func NewInbox(redisURL string, size int) (*Inbox, error) {
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

	return NewInboxWithClient(client, size), nil
}

// NewInboxWithClient creates an inbox from an existing Redis client
func NewInboxWithClient(client *redis.Client, size int) *Inbox {
	if size <= 0 {
		size = 100
	}
	return &Inbox{
		client: client,
		prefix: "notifications:",
		size:   int64(size),
	}
}

func (i *Inbox) key(userID string) string {
	return i.prefix + userID
}

// Name implements Channel
func (i *Inbox) Name() string {
	return "inbox"
}

// Deliver prepends the notification and trims the list
func (i *Inbox) Deliver(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	key := i.key(n.RecipientID)
	_, err = i.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, i.size-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// List returns up to limit notifications, newest first
func (i *Inbox) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 || int64(limit) > i.size {
		limit = int(i.size)
	}

	items, err := i.client.LRange(ctx, i.key(userID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	notifications := make([]Notification, 0, len(items))
	for _, item := range items {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("unmarshal notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// Clear removes every notification of a user
func (i *Inbox) Clear(ctx context.Context, userID string) error {
	if err := i.client.Del(ctx, i.key(userID)).Err(); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (i *Inbox) Ping(ctx context.Context) error {
	return i.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (i *Inbox) Close() error {
	return i.client.Close()
}
