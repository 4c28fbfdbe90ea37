// websocket/client.go
package websocket

import (
	"github.com/gorilla/websocket"
)

// Client подключение одного пользователя
type Client struct {
	UserID string
	Socket *websocket.Conn
	Send   chan []byte
}

func newClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Socket: conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}
