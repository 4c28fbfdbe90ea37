// models/chat.go
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Chat переписка двух пользователей по конкретному товару.
// ParticipantA открыл чат (потенциальный покупатель), ParticipantB владелец товара.
// Сообщения хранятся в порядке добавления.
type Chat struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	Product        *Product  `json:"product,omitempty"`
	ParticipantAID string    `json:"-"`
	ParticipantA   *User     `json:"participantA"`
	ParticipantBID string    `json:"-"`
	ParticipantB   *User     `json:"participantB"`
	Messages       []Message `json:"messages"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasParticipant проверяет, участвует ли пользователь в чате
func (c *Chat) HasParticipant(userID string) bool {
	return userID != "" && (c.ParticipantAID == userID || c.ParticipantBID == userID)
}

// Counterpart возвращает второго участника относительно userID
func (c *Chat) Counterpart(userID string) (string, bool) {
	switch userID {
	case c.ParticipantAID:
		return c.ParticipantBID, true
	case c.ParticipantBID:
		return c.ParticipantAID, true
	}
	return "", false
}

// Message сообщение в чате. После создания не изменяется.
type Message struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chatId"`
	Date       time.Time `json:"date"`
	SenderID   string    `json:"sender"`
	ReceiverID string    `json:"receiver"`
	Body       string    `json:"message"`
}

const (
	MessageMinLength = 3
	MessageMaxLength = 250
)

// NewMessage создает сообщение с новым ID. Текст обрезается по краям
// и должен содержать от 3 до 250 символов.
func NewMessage(chatID, senderID, receiverID, body string, now time.Time) (Message, error) {
	body = strings.TrimSpace(body)
	if err := validateVar("newMessage", body, fmt.Sprintf("required,min=%d,max=%d", MessageMinLength, MessageMaxLength)); err != nil {
		return Message{}, err
	}
	return Message{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		Date:       now,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
	}, nil
}

// NewMessageRequest тело запросов POST/PUT /chat/{id}
type NewMessageRequest struct {
	ProductID  string `json:"productId"`
	NewMessage string `json:"newMessage"`
}
