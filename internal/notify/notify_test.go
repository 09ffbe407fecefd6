package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type recordingChannel struct {
	mu    sync.Mutex
	name  string
	err   error
	calls []Notification
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Deliver(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, n)
	return c.err
}

func (c *recordingChannel) received() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.calls...)
}

func TestDispatcherFansOut(t *testing.T) {
	failing := &recordingChannel{name: "broken", err: errors.New("down")}
	working := &recordingChannel{name: "ok"}
	d := NewDispatcher(failing, working)

	d.Notify(context.Background(), "user-1", "Bob liked your post!")
	d.Wait()

	if len(failing.received()) != 1 {
		t.Fatalf("failing channel should still be attempted")
	}
	got := working.received()
	if len(got) != 1 {
		t.Fatalf("a failing channel must not stop the others, got %d deliveries", len(got))
	}
	if got[0].RecipientID != "user-1" || got[0].Message != "Bob liked your post!" || got[0].ID == "" {
		t.Fatalf("unexpected notification %+v", got[0])
	}
}

func TestDispatcherIgnoresCancelledRequest(t *testing.T) {
	ch := &recordingChannel{name: "ok"}
	d := NewDispatcher(ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Notify(ctx, "user-1", "hello")
	d.Wait()

	if len(ch.received()) != 1 {
		t.Fatalf("delivery must not depend on the caller's context")
	}
}

type staticTokens map[string]string

func (s staticTokens) PushToken(_ context.Context, userID string) (string, error) {
	return s[userID], nil
}

func TestAPNsSkipsUsersWithoutDevice(t *testing.T) {
	p := &APNsPusher{topic: "app.skillshare", tokens: staticTokens{}}
	if err := p.Deliver(context.Background(), Notification{RecipientID: "nobody"}); err != nil {
		t.Fatalf("expected no-op for user without token, got %v", err)
	}
}

func TestBuildPush(t *testing.T) {
	n := Notification{ID: "n1", RecipientID: "u", Message: "Ada commented on your post!"}
	push := buildPush(n, "device-token", "app.skillshare")

	if push.DeviceToken != "device-token" || push.Topic != "app.skillshare" {
		t.Fatalf("unexpected push target %+v", push)
	}
	raw, err := json.Marshal(push.Payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var body struct {
		APS struct {
			Alert string `json:"alert"`
			Sound string `json:"sound"`
		} `json:"aps"`
		NotificationID string `json:"notification_id"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if body.APS.Alert != n.Message || body.APS.Sound != "default" || body.NotificationID != "n1" {
		t.Fatalf("unexpected payload %s", raw)
	}
}
