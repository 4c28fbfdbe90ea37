// database/message.go
package database

import (
	"context"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/rs/zerolog/log"
)

// Текст, который подставляется вместо сообщения, которое не удалось расшифровать
const undecryptable = "[Ошибка расшифровки]"

// insertMessage шифрует и сохраняет сообщение.
// Порядок сообщений в чате задается автоинкрементным seq.
func (s *Store) insertMessage(ctx context.Context, q querier, m *models.Message) error {
	sealed, err := s.sealer.Seal(m.Body)
	if err != nil {
		log.Error().Err(err).Str("message_id", m.ID).Msg("❌ Ошибка шифрования сообщения")
		return errs.Internal(err)
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO messages (id, chat_id, sender_id, receiver_id, body, date) VALUES (?, ?, ?, ?, ?, ?)",
		m.ID, m.ChatID, m.SenderID, m.ReceiverID, sealed, m.Date,
	)
	if err != nil {
		return classify(err, "chatId")
	}
	return nil
}

// loadMessages возвращает расшифрованные сообщения чатов в порядке добавления
func (s *Store) loadMessages(ctx context.Context, q querier, chatIDs []string) (map[string][]models.Message, error) {
	chatIDs = unique(chatIDs)
	result := make(map[string][]models.Message, len(chatIDs))
	if len(chatIDs) == 0 {
		return result, nil
	}

	rows, err := q.QueryContext(ctx,
		"SELECT id, chat_id, sender_id, receiver_id, body, date FROM messages WHERE chat_id IN ("+placeholders(len(chatIDs))+") ORDER BY seq",
		toArgs(chatIDs)...)
	if err != nil {
		return nil, errs.Internal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m      models.Message
			sealed string
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.ReceiverID, &sealed, &m.Date); err != nil {
			return nil, errs.Internal(err)
		}

		body, err := s.sealer.Open(sealed)
		if err != nil {
			log.Warn().Err(err).Str("message_id", m.ID).Msg("⚠️ Ошибка расшифровки сообщения")
			body = undecryptable
		}
		m.Body = body
		result[m.ChatID] = append(result[m.ChatID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Internal(err)
	}
	return result, nil
}
