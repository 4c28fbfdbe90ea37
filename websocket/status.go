// websocket/status.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// setStatus обновляет статус пользователя и сообщает о нем остальным клиентам.
// Вызывается только из Run.
func (manager *Manager) setStatus(userID string, online bool) {
	manager.statusMutex.Lock()
	status, exists := manager.statuses[userID]
	if !exists {
		status = &UserStatus{}
		manager.statuses[userID] = status
	}
	changed := !exists || status.Online != online
	status.Online = online
	status.LastSeen = time.Now()
	manager.statusMutex.Unlock()

	if !changed {
		return
	}

	label := "offline"
	if online {
		label = "online"
	}
	log.Debug().Str("user_id", userID).Str("status", label).Msg("📊 Статус пользователя изменен")

	data, err := json.Marshal(Event{Type: EventStatus, UserID: userID, Status: label})
	if err != nil {
		return
	}
	manager.broadcast(data, userID)
}

// sendSnapshot отправляет новому клиенту статусы остальных пользователей в сети
func (manager *Manager) sendSnapshot(client *Client) {
	for id := range manager.clients {
		if id == client.UserID {
			continue
		}
		data, err := json.Marshal(Event{Type: EventStatus, UserID: id, Status: "online"})
		if err != nil {
			continue
		}
		manager.sendTo(client.UserID, data)
	}
}

// Online сообщает, подключен ли пользователь
func (manager *Manager) Online(userID string) bool {
	manager.statusMutex.RLock()
	defer manager.statusMutex.RUnlock()
	status, ok := manager.statuses[userID]
	return ok && status.Online
}

// Status возвращает последний известный статус пользователя
func (manager *Manager) Status(userID string) (UserStatus, bool) {
	manager.statusMutex.RLock()
	defer manager.statusMutex.RUnlock()
	status, ok := manager.statuses[userID]
	if !ok {
		return UserStatus{}, false
	}
	return *status, true
}
