// internal/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"greencart-ops-api/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// EventSimulationCompleted is pushed after every persisted simulation run.
const EventSimulationCompleted = "simulation.completed"

type Event struct {
	Type       string             `json:"type"`
	Simulation *models.Simulation `json:"simulation,omitempty"`
}

// client serializes writes; gorilla connections allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// Hub tracks the open dashboard connections and broadcasts events to them.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger,
	}
}

// Register adds a connection and returns the id it is tracked under.
func (h *Hub) Register(conn *websocket.Conn) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = &client{conn: conn}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("websocket client registered", zap.String("client_id", id), zap.Int("clients", n))
	return id
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	_, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if ok {
		h.logger.Debug("websocket client unregistered", zap.String("client_id", id))
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends message to every client and returns how many received it.
// Clients that fail a write are closed and dropped.
func (h *Hub) Broadcast(message []byte) int {
	h.mu.RLock()
	targets := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		targets[id] = c
	}
	h.mu.RUnlock()

	sent := 0
	for id, c := range targets {
		if err := c.write(message); err != nil {
			h.logger.Debug("websocket write failed, dropping client", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
			h.Unregister(id)
			continue
		}
		sent++
	}
	return sent
}

// SimulationCompleted pushes a finished run to every dashboard.
func (h *Hub) SimulationCompleted(_ context.Context, sim *models.Simulation) error {
	msg, err := json.Marshal(Event{Type: EventSimulationCompleted, Simulation: sim})
	if err != nil {
		return fmt.Errorf("socket: encode event: %w", err)
	}
	sent := h.Broadcast(msg)
	h.logger.Debug("simulation event broadcast", zap.String("simulation_id", sim.ID.Hex()), zap.Int("clients", sent))
	return nil
}
