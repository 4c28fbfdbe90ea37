// database/schema.go
package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Порядок важен: внешние ключи ссылаются на ранее созданные таблицы.
// Удаление пользователя каскадно удаляет его товары и чаты,
// удаление товара удаляет его чаты, удаление чата удаляет сообщения.
var schema = []struct {
	table string
	ddl   string
}{
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		name VARCHAR(64) NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_users_email (email),
		INDEX idx_users_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`},
	{"products", `
	CREATE TABLE IF NOT EXISTS products (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(64) NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT '',
		owner_id CHAR(36) NOT NULL,
		buyer_id CHAR(36) NULL,
		photos TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_products_name (name),
		FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (buyer_id) REFERENCES users(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`},
	{"chats", `
	CREATE TABLE IF NOT EXISTS chats (
		id CHAR(36) PRIMARY KEY,
		product_id CHAR(36) NOT NULL,
		participant_a_id CHAR(36) NOT NULL,
		participant_b_id CHAR(36) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_participants (participant_a_id, participant_b_id),
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE,
		FOREIGN KEY (participant_a_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (participant_b_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`},
	{"messages", `
	CREATE TABLE IF NOT EXISTS messages (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id CHAR(36) NOT NULL,
		chat_id CHAR(36) NOT NULL,
		sender_id CHAR(36) NOT NULL,
		receiver_id CHAR(36) NOT NULL,
		body TEXT NOT NULL,
		date DATETIME(6) NOT NULL,
		UNIQUE KEY uq_messages_id (id),
		INDEX idx_chat_id (chat_id, seq),
		FOREIGN KEY (chat_id) REFERENCES chats(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`},
}

// Migrate создает необходимые таблицы, если они не существуют
func (s *Store) Migrate(ctx context.Context) error {
	for _, t := range schema {
		if _, err := s.db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("ошибка создания таблицы %s: %w", t.table, err)
		}
	}
	log.Info().Msg("✅ Структура базы данных проверена и актуализирована")
	return nil
}
