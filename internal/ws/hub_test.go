package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r, zap.NewNop())
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub, srv := startHub(t)

	first := dial(t, srv)
	second := dial(t, srv)

	// Registration races the broadcast without this wait.
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(EventNewOrder, map[string]string{"id": "order-1"})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, message, err := conn.ReadMessage()
		require.NoError(t, err)

		var event Event
		require.NoError(t, json.Unmarshal(message, &event))
		assert.Equal(t, EventNewOrder, event.Event)
		data, ok := event.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "order-1", data["id"])
	}
}

func TestHubDisconnectedClientDoesNotBlockBroadcast(t *testing.T) {
	hub, srv := startHub(t)

	gone := dial(t, srv)
	stays := dial(t, srv)
	time.Sleep(50 * time.Millisecond)

	gone.Close()
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(EventOrderStatusUpdated, map[string]string{"id": "order-2", "status": "SHIPPING"})

	stays.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := stays.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(message), "orderStatusUpdated")
}

func TestHubShutdownDoesNotBlockLateClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	cancel()
	time.Sleep(50 * time.Millisecond)

	// A pump goroutine deregistering after shutdown, and an upgrade that won
	// the race against cancellation, must both complete.
	done := make(chan struct{})
	go func() {
		hub.unregister <- &Client{send: make(chan []byte, 1)}
		hub.register <- &Client{send: make(chan []byte, 1)}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub blocked register/unregister after shutdown")
	}
}
