package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillshare-backend/internal/notify"

	"github.com/gorilla/websocket"
)

// dialHub starts a server that registers every connection under userID and
// returns the client side.
func dialHub(t *testing.T, hub *WSHub, userID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Register(userID, conn)
		close(registered)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatalf("connection was not registered")
	}
	return client
}

func TestWSHubDeliversToOnlineUser(t *testing.T) {
	hub := NewWSHub()
	client := dialHub(t, hub, "alice")

	if !hub.IsOnline("alice") {
		t.Fatalf("alice should be online")
	}

	n := notify.Notification{ID: "n1", RecipientID: "alice", Message: "bob liked your post!"}
	if err := hub.Deliver(context.Background(), n); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got struct {
		Type string              `json:"type"`
		Data notify.Notification `json:"data"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != "notification" || got.Data.Message != n.Message || got.Data.ID != "n1" {
		t.Fatalf("unexpected message %s", data)
	}

	hub.Unregister("alice", nil)
	if hub.IsOnline("alice") {
		t.Fatalf("alice should be offline after unregister")
	}
}

func TestWSHubSkipsOfflineUser(t *testing.T) {
	hub := NewWSHub()
	err := hub.Deliver(context.Background(), notify.Notification{RecipientID: "nobody", Message: "hi"})
	if err != nil {
		t.Fatalf("offline delivery should be skipped silently, got %v", err)
	}
	if err := hub.SendToUser("nobody", WSMessage{Type: "ping"}); err == nil {
		t.Fatalf("direct send to an offline user should fail")
	}
}
