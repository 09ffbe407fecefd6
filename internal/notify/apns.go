package notify

import (
	"context"
	"fmt"

	"skillshare-backend/internal/config"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// TokenSource resolves the device token registered for a user
type TokenSource interface {
	PushToken(ctx context.Context, userID string) (string, error)
}

// APNsPusher sends notifications to iOS devices
type APNsPusher struct {
	client *apns2.Client
	topic  string
	tokens TokenSource
}

// NewAPNsPusher creates a token-authenticated APNs client
func NewAPNsPusher(cfg config.APNsConfig, tokens TokenSource) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load apns key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{
		client: client,
		topic:  cfg.Topic,
		tokens: tokens,
	}, nil
}

// Name implements Channel
func (p *APNsPusher) Name() string {
	return "apns"
}

// Deliver pushes the notification when the recipient registered a device
func (p *APNsPusher) Deliver(ctx context.Context, n Notification) error {
	deviceToken, err := p.tokens.PushToken(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to get push token: %w", err)
	}
	if deviceToken == "" {
		return nil
	}

	res, err := p.client.PushWithContext(ctx, buildPush(n, deviceToken, p.topic))
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}

func buildPush(n Notification, deviceToken, topic string) *apns2.Notification {
	return &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       topic,
		Payload: payload.NewPayload().
			Alert(n.Message).
			Sound("default").
			Custom("notification_id", n.ID),
	}
}
