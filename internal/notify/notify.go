// Package notify delivers user notifications. Delivery is fire-and-forget:
// callers never see a channel failure.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notification is a message addressed to one user
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// Channel is one delivery route (inbox, websocket, push)
type Channel interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

// Dispatcher fans a notification out to every channel in the background
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given channels
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		timeout:  10 * time.Second,
	}
}

// Notify queues delivery and returns immediately
func (d *Dispatcher) Notify(_ context.Context, recipientID, message string) {
	n := Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Message:     message,
		CreatedAt:   time.Now(),
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// Detached from the request context: the request may finish first.
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.deliver(ctx, n)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) {
	for _, ch := range d.channels {
		if err := ch.Deliver(ctx, n); err != nil {
			log.Warn().
				Err(err).
				Str("channel", ch.Name()).
				Str("recipient_id", n.RecipientID).
				Msg("Failed to deliver notification")
		}
	}
}

// Wait blocks until queued deliveries finish; used on shutdown
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
