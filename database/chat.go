// database/chat.go
package database

import (
	"context"
	"database/sql"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/rs/zerolog/log"
)

const chatColumns = "id, product_id, participant_a_id, participant_b_id, created_at, updated_at"

func scanChat(row scanner) (*models.Chat, error) {
	var c models.Chat
	if err := row.Scan(&c.ID, &c.ProductID, &c.ParticipantAID, &c.ParticipantBID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChat сохраняет чат и первое сообщение в одной транзакции
func (s *Store) CreateChat(ctx context.Context, c *models.Chat, first *models.Message) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO chats (id, product_id, participant_a_id, participant_b_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			c.ID, c.ProductID, c.ParticipantAID, c.ParticipantBID, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return classify(err, "productId")
		}
		return s.insertMessage(ctx, tx, first)
	})
	if err != nil {
		log.Error().Err(err).Str("product_id", c.ProductID).Msg("❌ Ошибка создания чата")
		return err
	}

	log.Info().
		Str("chat_id", c.ID).
		Str("participant_a", c.ParticipantAID).
		Str("participant_b", c.ParticipantBID).
		Str("product_id", c.ProductID).
		Msg("✅ Создан новый чат")
	return nil
}

// GetChat возвращает чат с участниками, товаром и сообщениями
func (s *Store) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	c, err := scanChat(s.db.QueryRowContext(ctx, "SELECT "+chatColumns+" FROM chats WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, "Чат", id)
	}
	chats := []models.Chat{*c}
	if err := s.populateChats(ctx, s.db, chats); err != nil {
		return nil, err
	}
	return &chats[0], nil
}

// ListChats возвращает страницу чатов. Пустой userID означает все чаты.
func (s *Store) ListChats(ctx context.Context, userID string, page models.Page) ([]models.Chat, int, error) {
	where, args := "", []any{}
	if userID != "" {
		where = " WHERE participant_a_id = ? OR participant_b_id = ?"
		args = append(args, userID, userID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chats"+where, args...).Scan(&total); err != nil {
		return nil, 0, errs.Internal(err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+chatColumns+" FROM chats"+where+" ORDER BY updated_at DESC, id LIMIT ? OFFSET ?",
		append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, errs.Internal(err)
	}
	defer rows.Close()

	chats := []models.Chat{}
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, 0, errs.Internal(err)
		}
		chats = append(chats, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errs.Internal(err)
	}
	rows.Close()

	if err := s.populateChats(ctx, s.db, chats); err != nil {
		return nil, 0, err
	}
	return chats, total, nil
}

// AppendMessage добавляет сообщение в чат. Строка чата блокируется до конца
// транзакции, поэтому параллельные отправки в один чат выполняются по очереди.
func (s *Store) AppendMessage(ctx context.Context, chatID string, m *models.Message) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var id string
		if err := tx.QueryRowContext(ctx, "SELECT id FROM chats WHERE id = ? FOR UPDATE", chatID).Scan(&id); err != nil {
			return notFound(err, "Чат", chatID)
		}
		m.ChatID = chatID
		if err := s.insertMessage(ctx, tx, m); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE chats SET updated_at = ? WHERE id = ?", m.Date, chatID); err != nil {
			return errs.Internal(err)
		}
		return nil
	})
}

// DeleteChat удаляет чат и все его сообщения
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", id); err != nil {
			return errs.Internal(err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", id)
		if err != nil {
			return errs.Internal(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errs.NotFound("Чат", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("chat_id", id).Msg("✅ Чат удален")
	return nil
}

// populateChats подставляет участников, товары и сообщения
func (s *Store) populateChats(ctx context.Context, q querier, chats []models.Chat) error {
	if len(chats) == 0 {
		return nil
	}
	var userIDs, productIDs, chatIDs []string
	for _, c := range chats {
		userIDs = append(userIDs, c.ParticipantAID, c.ParticipantBID)
		productIDs = append(productIDs, c.ProductID)
		chatIDs = append(chatIDs, c.ID)
	}

	users, err := s.loadUsers(ctx, q, userIDs)
	if err != nil {
		return err
	}
	products, err := s.loadProducts(ctx, q, productIDs)
	if err != nil {
		return err
	}
	messages, err := s.loadMessages(ctx, q, chatIDs)
	if err != nil {
		return err
	}

	for i := range chats {
		c := &chats[i]
		c.ParticipantA = users[c.ParticipantAID]
		c.ParticipantB = users[c.ParticipantBID]
		c.Product = products[c.ProductID]
		c.Messages = messages[c.ID]
		if c.Messages == nil {
			c.Messages = []models.Message{}
		}
	}
	return nil
}
