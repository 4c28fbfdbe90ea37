// websocket/read_pump.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// readPump читает служебные кадры клиента. Сообщения чата отправляются через HTTP.
func (c *Client) readPump(manager *Manager) {
	defer func() {
		manager.enqueue(manager.unregister, c)
		c.Socket.Close()
		log.Debug().Str("user_id", c.UserID).Msg("ℹ️ Завершение readPump")
	}()

	// Устанавливаем параметры подключения
	c.Socket.SetReadLimit(maxMessageSize)
	c.Socket.SetReadDeadline(time.Now().Add(pongWait))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", c.UserID).Msg("⚠️ Соединение закрыто с ошибкой")
			}
			return
		}
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Debug().Err(err).Str("user_id", c.UserID).Msg("⚠️ Ошибка декодирования кадра")
			continue
		}

		switch event.Type {
		case EventPing:
			manager.respond(c, Event{Type: EventPong})
		default:
			log.Debug().Str("user_id", c.UserID).Str("type", event.Type).Msg("ℹ️ Неизвестный тип кадра")
		}
	}
}
