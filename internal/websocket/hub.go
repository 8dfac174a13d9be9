package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bpmn-interview-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ClusterChannel is the redis channel every instance listens on.
const ClusterChannel = "interview_progress"

// Message is the frame written to websocket clients.
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Data      interface{} `json:"data,omitempty"`
	SentAt    time.Time   `json:"sent_at"`
}

// Hub fans progress messages out to the clients watching a session.
type Hub struct {
	// session id -> connected clients (several tabs may watch one session)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	quit       chan struct{}

	mu sync.RWMutex

	// optional, for cross-instance delivery
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.remove(client)

		case <-h.quit:
			h.mu.Lock()
			for id, clients := range h.clients {
				for _, c := range clients {
					close(c.Send)
				}
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop closes every client channel and ends Run.
func (h *Hub) Stop() {
	close(h.quit)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info("Hub", "Last client of session left", map[string]interface{}{"session_id": client.SessionID})
	}
}

// Clients reports how many local connections watch sessionID.
func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Notify delivers one message to every client of sessionID. With redis the
// message travels through the cluster channel so that every instance,
// this one included, delivers it to its own clients.
func (h *Hub) Notify(sessionID, kind string, data interface{}) {
	payload, err := json.Marshal(Message{
		Type:      kind,
		SessionID: sessionID,
		Data:      data,
		SentAt:    time.Now(),
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode message", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		err := h.rdb.Publish(context.Background(), ClusterChannel, payload).Err()
		if err == nil {
			return
		}
		h.logger.Warn("Hub", "Redis publish failed, delivering locally", map[string]interface{}{"error": err.Error()})
	}
	h.deliver(sessionID, payload)
}

func (h *Hub) deliver(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
		}
	}
}

func (h *Hub) subscribeToRedis() {
	pubsub := h.rdb.Subscribe(context.Background(), ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-h.quit:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var envelope struct {
				SessionID string `json:"session_id"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil || envelope.SessionID == "" {
				h.logger.Warn("Hub", "Ignoring malformed cluster message", nil)
				continue
			}
			h.deliver(envelope.SessionID, []byte(msg.Payload))
		}
	}
}
