// service/chats.go
package service

import (
	"context"
	"time"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier получает новые сообщения для доставки участникам в реальном времени
type Notifier interface {
	NotifyMessage(chat *models.Chat, msg models.Message)
}

// Chats операции с чатами и сообщениями
type Chats struct {
	store    ChatStore
	products ProductStore
	notifier Notifier
	now      func() time.Time
}

func NewChats(store ChatStore, products ProductStore, notifier Notifier) *Chats {
	return &Chats{store: store, products: products, notifier: notifier, now: time.Now}
}

// List администратор видит все чаты, остальные только свои
func (s *Chats) List(ctx context.Context, viewer *models.User, page models.Page) (models.List[models.Chat], error) {
	if viewer == nil {
		return models.List[models.Chat]{}, errs.Unauthorized("нет пользователя")
	}
	filter := viewer.ID
	if viewer.IsAdmin {
		filter = ""
	}
	chats, total, err := s.store.ListChats(ctx, filter, page)
	if err != nil {
		return models.List[models.Chat]{}, err
	}
	return models.NewList(chats, total, page), nil
}

func (s *Chats) Get(ctx context.Context, id string) (*models.Chat, error) {
	return s.store.GetChat(ctx, id)
}

// StartWithMessage открывает чат по товару первым сообщением отправителя.
// Второй участник чата владелец товара.
func (s *Chats) StartWithMessage(ctx context.Context, sender *models.User, productID, body string) (*models.Chat, error) {
	if sender == nil {
		return nil, errs.Unauthorized("нет отправителя")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.OwnerID == sender.ID {
		return nil, errs.Validation("Некорректные данные", map[string]string{"productId": "нельзя открыть чат по своему товару"})
	}

	now := s.now().UTC()
	chatID := uuid.NewString()
	msg, err := models.NewMessage(chatID, sender.ID, product.OwnerID, body, now)
	if err != nil {
		return nil, err
	}

	chat := &models.Chat{
		ID:             chatID,
		ProductID:      product.ID,
		ParticipantAID: sender.ID,
		ParticipantBID: product.OwnerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateChat(ctx, chat, &msg); err != nil {
		return nil, err
	}

	created, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	s.notify(created, msg)
	return created, nil
}

// Append добавляет сообщение участника в чат. Получатель второй участник.
// Администратор может читать и удалять чужие чаты, но не писать в них.
func (s *Chats) Append(ctx context.Context, sender *models.User, chat *models.Chat, body string) (*models.Chat, error) {
	if sender == nil || chat == nil {
		return nil, errs.Unauthorized("нет отправителя или чата")
	}
	receiverID, ok := chat.Counterpart(sender.ID)
	if !ok {
		return nil, errs.Unauthorized("отправитель не участник чата")
	}

	msg, err := models.NewMessage(chat.ID, sender.ID, receiverID, body, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.AppendMessage(ctx, chat.ID, &msg); err != nil {
		return nil, err
	}

	updated, err := s.store.GetChat(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	s.notify(updated, msg)
	return updated, nil
}

// Delete удаляет чат со всеми сообщениями и возвращает удаленную запись
func (s *Chats) Delete(ctx context.Context, id string) (*models.Chat, error) {
	chat, err := s.store.GetChat(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteChat(ctx, id); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *Chats) notify(chat *models.Chat, msg models.Message) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyMessage(chat, msg)
	log.Debug().Str("chat_id", chat.ID).Str("message_id", msg.ID).Msg("ℹ️ Сообщение передано в websocket")
}
