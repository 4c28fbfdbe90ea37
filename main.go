// main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/coursework_market/auth"
	"github.com/LilVoxy/coursework_market/config"
	"github.com/LilVoxy/coursework_market/database"
	"github.com/LilVoxy/coursework_market/memstore"
	"github.com/LilVoxy/coursework_market/middleware"
	"github.com/LilVoxy/coursework_market/processor"
	"github.com/LilVoxy/coursework_market/routes"
	"github.com/LilVoxy/coursework_market/service"
	"github.com/LilVoxy/coursework_market/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	setupLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Некорректная конфигурация")
	}
	log.Info().Str("driver", cfg.Driver).Str("addr", cfg.Addr()).Msg("ℹ️ Запуск сервера...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация хранилища
	store, health, closeStore := openStore(ctx, &cfg)
	defer closeStore()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	users := service.NewUsers(store, tokens, cfg.AdminEmails)
	authenticator := middleware.NewAuthenticator(tokens, users)

	// Создаем менеджер WebSocket и запускаем его
	wsManager := websocket.NewManager(authenticator, cfg.CORSOrigin)
	go wsManager.Run(ctx)

	handler := routes.SetupRoutes(routes.Deps{
		Users:      users,
		Products:   service.NewProducts(store, store),
		Chats:      service.NewChats(store, store, wsManager),
		Auth:       authenticator,
		Hub:        wsManager,
		Health:     health,
		CORSOrigin: cfg.CORSOrigin,
	})

	// Настраиваем сервер
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		log.Info().Str("addr", server.Addr).Msg("✅ Сервер запущен")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Ошибка запуска сервера")
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	log.Warn().Msg("⚠️ Получен сигнал завершения, закрываем соединения...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Ошибка при остановке сервера")
	}

	log.Info().Msg("👋 Сервер остановлен")
}

// openStore выбирает хранилище по DB_DRIVER
func openStore(ctx context.Context, cfg *config.Config) (service.Store, func(context.Context) error, func()) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("⚠️ Используется хранилище в памяти, данные не сохраняются между запусками")
		return memstore.New(), nil, func() {}
	}

	if err := cfg.EnsureMessageKey(); err != nil {
		log.Fatal().Err(err).Msg("❌ Не удалось получить ключ шифрования")
	}
	sealer, err := processor.NewSealer(cfg.MessageKey)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Не удалось создать шифратор сообщений")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := database.Open(connectCtx, cfg.Database, sealer)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Не удалось инициализировать базу данных")
	}

	return db, db.Ping, func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("❌ Ошибка закрытия соединения с БД")
			return
		}
		log.Info().Msg("✅ Соединение с БД закрыто")
	}
}

// setupLogger настраивает глобальный zerolog: уровень и формат вывода
func setupLogger(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(level); err == nil && level != "" {
		zerolog.SetGlobalLevel(lvl)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
}
