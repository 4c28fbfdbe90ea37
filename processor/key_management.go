// processor/key_management.go
package processor

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// KeySize размер ключа AES-256
const KeySize = 32

// GenerateKey генерирует случайный ключ для шифрования сообщений
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("ошибка генерации ключа: %w", err)
	}
	return key, nil
}

// ParseKey разбирает ключ из переменной окружения.
// Допускается base64 (32 байта), hex (64 символа) или строка ровно из 32 байт.
func ParseKey(raw string) ([]byte, error) {
	if len(raw) == KeySize {
		return []byte(raw), nil
	}
	if b, err := hex.DecodeString(raw); err == nil && len(b) == KeySize {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(raw); err == nil && len(b) == KeySize {
		return b, nil
	}
	return nil, fmt.Errorf("ключ шифрования должен содержать %d байт", KeySize)
}
