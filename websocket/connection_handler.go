// websocket/connection_handler.go
package websocket

import (
	"context"
	"net/http"
	"strings"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/middleware"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/rs/zerolog/log"
)

// Identifier определяет пользователя по токену доступа
type Identifier interface {
	IdentifyToken(ctx context.Context, token string) (*models.User, error)
}

// connectionToken берет токен из параметра token или из заголовка Authorization.
// Браузерный WebSocket не умеет передавать заголовки.
func connectionToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	return middleware.BearerToken(r)
}

// HandleConnections обрабатывает WebSocket-соединения
func (manager *Manager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	user, err := manager.auth.IdentifyToken(r.Context(), connectionToken(r))
	if err != nil {
		log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("⚠️ Отказ в WebSocket-соединении")
		errs.Write(w, r, err)
		return
	}

	// Устанавливаем WebSocket-соединение
	conn, err := manager.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("❌ Ошибка при установке WebSocket-соединения")
		return
	}

	client := newClient(user.ID, conn)
	if !manager.enqueue(manager.register, client) {
		conn.Close()
		return
	}
	log.Info().Str("user_id", user.ID).Str("remote", r.RemoteAddr).Msg("✅ WebSocket-соединение установлено")

	go client.writePump()
	go client.readPump(manager)
}
