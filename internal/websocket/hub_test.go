package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(hub *Hub) *Client {
	return &Client{
		hub:    hub,
		send:   make(chan []byte, 8),
		id:     "test-client",
		logger: slog.Default(),
	}
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d, got %d", want, hub.ClientCount())
}

func TestHubRegisterSendsConnectionEvent(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.register <- client
	waitForCount(t, hub, 1)

	select {
	case message := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(message, &event))
		assert.Equal(t, TypeConnection, event.Type)
	case <-time.After(time.Second):
		t.Fatal("no connection event received")
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	first := testClient(hub)
	second := testClient(hub)
	hub.register <- first
	hub.register <- second
	waitForCount(t, hub, 2)

	// Drain connection events so the broadcast is the next message.
	<-first.send
	<-second.send

	hub.BroadcastRefresh(120, 3)

	for _, client := range []*Client{first, second} {
		select {
		case message := <-client.send:
			var event Event
			require.NoError(t, json.Unmarshal(message, &event))
			assert.Equal(t, TypeDatasetRefresh, event.Type)
		case <-time.After(time.Second):
			t.Fatal("broadcast never arrived")
		}
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.register <- client
	waitForCount(t, hub, 1)

	hub.unregister <- client
	waitForCount(t, hub, 0)

	// Drain until the channel is closed.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-client.send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("send channel never closed")
		}
	}
}
