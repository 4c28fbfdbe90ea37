// websocket/types.go
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/LilVoxy/coursework_market/models"
	"github.com/gorilla/websocket"
)

// Event кадр, которым обмениваются сервер и клиент
type Event struct {
	Type    string          `json:"type"`
	ChatID  string          `json:"chatId,omitempty"`
	Message *models.Message `json:"message,omitempty"`
	UserID  string          `json:"userId,omitempty"`
	Status  string          `json:"status,omitempty"`
}

// UserStatus состояние подключения пользователя
type UserStatus struct {
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen"`
}

// delivery кадр для отправки конкретным пользователям
type delivery struct {
	userIDs []string
	payload []byte
}

// reply ответ конкретному соединению
type reply struct {
	client  *Client
	payload []byte
}

// Manager хаб WebSocket-соединений. Один клиент на пользователя,
// состояние клиентов меняется только в Run.
type Manager struct {
	auth       Identifier
	upgrader   websocket.Upgrader
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	replies    chan reply
	done       chan struct{}

	statuses    map[string]*UserStatus
	statusMutex sync.RWMutex
}

// Конфигурация WebSocket-соединения
func newUpgrader(allowedOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
		},
	}
}
