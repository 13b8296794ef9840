// Package chathub keeps the WebSocket connections of this server instance and pushes
// pairing notifications to them.
package chathub

import (
	"blindpair/backend/internal/metrics"
	"blindpair/backend/internal/models"
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// ManagerService is the per-instance hub. All map writes happen on the Run goroutine.
type ManagerService struct {
	mu      sync.RWMutex
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	DeliverCh    chan models.Notification

	logger logrus.FieldLogger
}

func NewManagerService(logger logrus.FieldLogger) *ManagerService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ManagerService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		DeliverCh:    make(chan models.Notification, 256),
		logger:       logger.WithField("component", "chathub"),
	}
}

// Run serves the hub until ctx is done, then closes every client.
func (m *ManagerService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case client := <-m.RegisterCh:
			m.register(client)
		case client := <-m.UnregisterCh:
			m.unregister(client)
		case n := <-m.DeliverCh:
			m.deliver(n)
		}
	}
}

// Notify queues n for local delivery. Users without a connection on this instance
// are skipped silently.
func (m *ManagerService) Notify(ctx context.Context, n models.Notification) error {
	select {
	case m.DeliverCh <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HasClient reports whether userID has a connection on this instance.
func (m *ManagerService) HasClient(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.Clients[userID]
	return ok
}

func (m *ManagerService) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Clients)
}

func (m *ManagerService) register(client Client) {
	m.mu.Lock()
	prev, ok := m.Clients[client.GetUserID()]
	m.Clients[client.GetUserID()] = client
	m.mu.Unlock()

	// A new connection replaces the old one, e.g. after a page reload.
	if ok && prev != client {
		prev.Close()
	} else {
		metrics.WebSocketConnections.Inc()
	}
	m.logger.WithField("user_id", client.GetUserID()).Debug("client registered")
}

func (m *ManagerService) unregister(client Client) {
	m.mu.Lock()
	current, ok := m.Clients[client.GetUserID()]
	if ok && current == client {
		delete(m.Clients, client.GetUserID())
	}
	m.mu.Unlock()

	if ok && current == client {
		metrics.WebSocketConnections.Dec()
		client.Close()
		m.logger.WithField("user_id", client.GetUserID()).Debug("client unregistered")
	}
}

func (m *ManagerService) deliver(n models.Notification) {
	m.mu.RLock()
	client, ok := m.Clients[n.UserID]
	m.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case client.GetSendChannel() <- n:
	default:
		// Slow client: drop the connection rather than block the hub.
		m.logger.WithField("user_id", n.UserID).Warn("client send buffer full, disconnecting")
		m.unregister(client)
	}
}

func (m *ManagerService) closeAll() {
	m.mu.Lock()
	clients := m.Clients
	m.Clients = make(map[string]Client)
	m.mu.Unlock()

	for _, c := range clients {
		metrics.WebSocketConnections.Dec()
		c.Close()
	}
}
