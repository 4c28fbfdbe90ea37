// websocket/manager.go
package websocket

import (
	"context"
	"encoding/json"

	"github.com/LilVoxy/coursework_market/models"
	"github.com/rs/zerolog/log"
)

// NewManager создает менеджер WebSocket-соединений
func NewManager(auth Identifier, allowedOrigin string) *Manager {
	return &Manager{
		auth:       auth,
		upgrader:   newUpgrader(allowedOrigin),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 64),
		replies:    make(chan reply, 64),
		done:       make(chan struct{}),
		statuses:   make(map[string]*UserStatus),
	}
}

// Run обрабатывает подключения, отключения и доставку до отмены ctx
func (manager *Manager) Run(ctx context.Context) {
	defer func() {
		for id, client := range manager.clients {
			close(client.Send)
			delete(manager.clients, id)
		}
		close(manager.done)
		log.Info().Msg("✅ WebSocket менеджер остановлен")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-manager.register:
			if existing, ok := manager.clients[client.UserID]; ok {
				log.Info().Str("user_id", client.UserID).Msg("ℹ️ Пользователь уже подключен. Заменяем соединение")
				close(existing.Send)
			}
			manager.clients[client.UserID] = client
			manager.sendSnapshot(client)
			manager.setStatus(client.UserID, true)
			log.Info().Str("user_id", client.UserID).Msg("👤 Клиент подключился")

		case client := <-manager.unregister:
			// Замененное соединение уже удалено из карты
			if current, ok := manager.clients[client.UserID]; ok && current == client {
				delete(manager.clients, client.UserID)
				close(client.Send)
				manager.setStatus(client.UserID, false)
				log.Info().Str("user_id", client.UserID).Msg("👤 Клиент отключился")
			}

		case d := <-manager.deliver:
			for _, id := range d.userIDs {
				manager.sendTo(id, d.payload)
			}

		case r := <-manager.replies:
			if current, ok := manager.clients[r.client.UserID]; ok && current == r.client {
				manager.sendTo(r.client.UserID, r.payload)
			}
		}
	}
}

// sendTo кладет кадр в очередь клиента. Переполненный клиент отключается.
func (manager *Manager) sendTo(userID string, payload []byte) {
	client, ok := manager.clients[userID]
	if !ok {
		return
	}
	select {
	case client.Send <- payload:
	default:
		log.Warn().Str("user_id", userID).Msg("⚠️ Очередь клиента переполнена, соединение закрыто")
		close(client.Send)
		delete(manager.clients, userID)
		manager.setStatus(userID, false)
	}
}

// enqueue передает кадр в Run. После остановки менеджера кадр отбрасывается.
func (manager *Manager) enqueue(ch chan<- *Client, client *Client) bool {
	select {
	case ch <- client:
		return true
	case <-manager.done:
		return false
	}
}

// respond отвечает конкретному соединению, если оно еще активно
func (manager *Manager) respond(client *Client, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case manager.replies <- reply{client: client, payload: payload}:
	case <-manager.done:
	}
}

// broadcast отправляет кадр всем подключенным клиентам, кроме except
func (manager *Manager) broadcast(payload []byte, except string) {
	for id := range manager.clients {
		if id != except {
			manager.sendTo(id, payload)
		}
	}
}

// NotifyMessage отправляет новое сообщение отправителю и получателю.
// Пользователи не в сети пропускаются.
func (manager *Manager) NotifyMessage(chat *models.Chat, msg models.Message) {
	payload, err := json.Marshal(Event{Type: EventMessage, ChatID: chat.ID, Message: &msg})
	if err != nil {
		log.Error().Err(err).Msg("❌ Ошибка при кодировании события")
		return
	}
	if !manager.Online(msg.ReceiverID) {
		log.Debug().Str("user_id", msg.ReceiverID).Msg("ℹ️ Получатель не в сети")
	}

	select {
	case manager.deliver <- delivery{userIDs: []string{msg.SenderID, msg.ReceiverID}, payload: payload}:
	case <-manager.done:
	}
}
