package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"greencart-ops-api/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		id := hub.Register(conn)
		defer func() {
			hub.Unregister(id)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsSimulationCompleted(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub)

	a, b := dial(t, srv), dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	sim := &models.Simulation{ID: primitive.NewObjectID(), TotalProfit: 1600, OnTimeDeliveries: 1, Tags: []string{}}
	require.NoError(t, hub.SimulationCompleted(context.Background(), sim))

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var ev struct {
			Type       string            `json:"type"`
			Simulation models.Simulation `json:"simulation"`
		}
		require.NoError(t, json.Unmarshal(msg, &ev))
		require.Equal(t, EventSimulationCompleted, ev.Type)
		require.Equal(t, sim.ID, ev.Simulation.ID)
		require.Equal(t, 1600.0, ev.Simulation.TotalProfit)
	}
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)

	require.Zero(t, hub.Broadcast([]byte(`{}`)))
}

func TestHubConcurrentBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	const n = 20
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func() {
			hub.Broadcast([]byte(`{"type":"ping"}`))
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for i := 0; i < n; i++ {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		require.JSONEq(t, `{"type":"ping"}`, string(msg))
	}
}
