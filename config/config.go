// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LilVoxy/coursework_market/database"
	"github.com/LilVoxy/coursework_market/processor"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Драйверы хранилища
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config содержит настройки сервиса
type Config struct {
	Port        string
	Driver      string
	Database    database.Config
	JWTSecret   string
	TokenTTL    time.Duration
	AdminEmails []string
	MessageKey  []byte
	CORSOrigin  string
	LogLevel    string
	LogFormat   string
}

// Значения конфигурации по умолчанию
var Default = Config{
	Port:   "3000",
	Driver: DriverMySQL,
	Database: database.Config{
		Host: "localhost",
		Port: "3306",
		User: "root",
		Name: "market",
	},
	TokenTTL:    24 * time.Hour,
	AdminEmails: []string{"admin@gmail.com"},
	CORSOrigin:  "http://localhost:3000",
	LogLevel:    "info",
	LogFormat:   "console",
}

// Load читает .env (если он есть) и переменные окружения
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("ℹ️ Файл .env не загружен, используются переменные окружения")
	}
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию из функции чтения переменных
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	var problems []string

	cfg.Port = get("PORT", cfg.Port)
	cfg.Driver = strings.ToLower(get("DB_DRIVER", cfg.Driver))
	cfg.Database.Host = get("DB_HOST", cfg.Database.Host)
	cfg.Database.User = get("DB_USER", cfg.Database.User)
	cfg.Database.Password = get("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = get("DB_NAME", cfg.Database.Name)
	if raw := get("DB_PORT", ""); raw != "" {
		if port, err := strconv.Atoi(raw); err != nil || port <= 0 {
			problems = append(problems, "DB_PORT: некорректный порт")
		} else {
			cfg.Database.Port = raw
		}
	}

	cfg.JWTSecret = get("JWT_SECRET", "")
	if raw := get("TOKEN_TTL", ""); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			problems = append(problems, "TOKEN_TTL: некорректная длительность")
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if raw := get("ADMIN_EMAILS", ""); raw != "" {
		cfg.AdminEmails = splitList(raw)
	}

	if raw := get("MESSAGE_KEY", ""); raw != "" {
		key, err := processor.ParseKey(raw)
		if err != nil {
			problems = append(problems, "MESSAGE_KEY: "+err.Error())
		} else {
			cfg.MessageKey = key
		}
	}

	cfg.CORSOrigin = get("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.LogLevel = strings.ToLower(get("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(get("LOG_FORMAT", cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return cfg, fmt.Errorf("конфигурация: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// Validate сообщает обо всех отсутствующих обязательных значениях сразу
func (c Config) Validate() error {
	var missing []string
	var unknown string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch c.Driver {
	case DriverMemory:
	case DriverMySQL:
		if c.Database.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.Database.User == "" {
			missing = append(missing, "DB_USER")
		}
		if c.Database.Name == "" {
			missing = append(missing, "DB_NAME")
		}
	default:
		unknown = fmt.Sprintf("неизвестный DB_DRIVER %q", c.Driver)
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "не заданы: "+strings.Join(missing, ", "))
	}
	if unknown != "" {
		parts = append(parts, unknown)
	}
	if len(parts) > 0 {
		return errors.New(strings.Join(parts, "; "))
	}
	return nil
}

// EnsureMessageKey генерирует временный ключ шифрования, если он не задан.
// Сообщения, зашифрованные таким ключом, не прочитать после перезапуска.
func (c *Config) EnsureMessageKey() error {
	if len(c.MessageKey) != 0 {
		return nil
	}
	key, err := processor.GenerateKey()
	if err != nil {
		return err
	}
	c.MessageKey = key
	log.Warn().Msg("⚠️ MESSAGE_KEY не задан, сгенерирован временный ключ шифрования сообщений")
	return nil
}

// Addr адрес HTTP-сервера
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
