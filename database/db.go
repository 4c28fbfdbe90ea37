// database/db.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/LilVoxy/coursework_market/processor"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// Config параметры подключения к MySQL
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN строка подключения для go-sql-driver/mysql
func (c Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Collation = "utf8mb4_unicode_ci"
	// RowsAffected считает найденные строки, а не измененные
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

// Store хранилище на MySQL. Тексты сообщений хранятся зашифрованными.
type Store struct {
	db     *sql.DB
	sealer *processor.Sealer
}

// querier общий интерфейс *sql.DB и *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New создает хранилище поверх готового соединения
func New(db *sql.DB, sealer *processor.Sealer) *Store {
	return &Store{db: db, sealer: sealer}
}

// Open подключается к базе данных, настраивает пул и создает таблицы
func Open(ctx context.Context, cfg Config, sealer *processor.Sealer) (*Store, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Error().Err(err).Msg("❌ Ошибка подключения к БД")
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Error().Err(err).Msg("❌ Ошибка проверки соединения с БД")
		db.Close()
		return nil, err
	}

	// Параметры пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("✅ Успешное подключение к базе данных")

	s := New(db, sealer)
	if err := s.Migrate(ctx); err != nil {
		log.Error().Err(err).Msg("❌ Ошибка создания таблиц")
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close закрывает соединение с БД
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping проверяет доступность БД
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx выполняет fn в транзакции. При ошибке транзакция откатывается.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
