package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"pairtalk/pkg/logger"
)

// Client is one connected interface session.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager tracks active connections and fans view-state events out to them.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex

	// onDisconnect runs after a client is removed; the session controller
	// uses it for teardown and best-effort offline marking.
	onDisconnect func(userID string)
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// OnDisconnect installs the disconnect hook. Must be set before Start.
func (m *Manager) OnDisconnect(hook func(userID string)) {
	m.onDisconnect = hook
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				logger.Info("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				removed := false
				if current, ok := m.clients[client.UserID]; ok && current == client {
					delete(m.clients, client.UserID)
					close(client.Send)
					removed = true
				}
				m.mutex.Unlock()
				if removed {
					logger.Info("Client unregistered: %s", client.UserID)
					if m.onDisconnect != nil {
						m.onDisconnect(client.UserID)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser delivers a message to one user without blocking the caller;
// a client that cannot keep up is dropped.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- message:
	default:
		logger.Warn("Dropping slow client: %s", userID)
		m.Unregister <- client
	}
}

// Publish marshals a view-state event and sends it to the user's session.
func (m *Manager) Publish(userID string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event for %s: %v", userID, err)
		return
	}
	m.SendToUser(userID, payload)
}

// ReadPump drains inbound frames until the connection drops so that close
// and ping handling keep working. Inbound payloads are ignored; all
// operations arrive over the HTTP API.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Read error for %s: %v", c.UserID, err)
			}
			break
		}
	}
}

// WritePump sends queued messages to the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn("Write error for %s: %v", c.UserID, err)
			return
		}
	}
}
