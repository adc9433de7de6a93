package ws

import (
	"context"
	"sync"

	"consultlink_backend/internal/logger"
)

// WebSocketManager держит открытые просмотры переписки.
type WebSocketManager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (manager *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			manager.closeAll()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client.ID] = client
			total := len(manager.clients)
			manager.mu.Unlock()
			logger.Debug("WebSocket client registered", "client_id", client.ID, "consultation_id", client.ConsultationID, "total", total)

		case client := <-manager.unregister:
			manager.remove(client)
		}
	}
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if _, ok := manager.clients[client.ID]; ok {
		client.cancel()
		close(client.Send)
		delete(manager.clients, client.ID)
		logger.Debug("WebSocket client unregistered", "client_id", client.ID, "total", len(manager.clients))
	}
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	for id, client := range manager.clients {
		client.cancel()
		close(client.Send)
		delete(manager.clients, id)
	}
}

// BroadcastToConsultation отправляет сообщение всем, кто смотрит переписку.
func (manager *WebSocketManager) BroadcastToConsultation(consultationID string, message any) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	for _, client := range manager.clients {
		if client.ConsultationID != consultationID {
			continue
		}
		manager.deliver(client, message)
	}
}

// BroadcastToClient отправляет сообщение конкретному клиенту
func (manager *WebSocketManager) BroadcastToClient(clientID string, message any) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if client, ok := manager.clients[clientID]; ok {
		manager.deliver(client, message)
	}
}

// deliver вызывается под mu.RLock.
func (manager *WebSocketManager) deliver(client *Client, message any) {
	select {
	case client.Send <- message:
	default:
		// Канал заполнен, клиент отключается
		go func() {
			manager.unregister <- client
		}()
		logger.Warn("WebSocket client disconnected due to full send channel", "client_id", client.ID)
	}
}

// GetClientCount возвращает количество подключенных клиентов
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients)
}

// IsClientConnected проверяет, подключен ли клиент
func (manager *WebSocketManager) IsClientConnected(clientID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	_, exists := manager.clients[clientID]
	return exists
}
