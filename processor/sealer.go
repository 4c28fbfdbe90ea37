// processor/sealer.go
package processor

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrCiphertextTooShort шифротекст короче nonce
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Sealer шифрует текст сообщений для хранения в БД.
// Этапы: сжатие Snappy, затем AES-GCM (nonce в начале), затем base64.
type Sealer struct {
	gcm cipher.AEAD
}

// NewSealer создает Sealer с ключом AES-256
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("неверная длина ключа: %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{gcm: gcm}, nil
}

// Seal сжимает и шифрует текст
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := s.gcm.Seal(nonce, nonce, compress([]byte(plaintext)), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open расшифровывает и распаковывает текст
func (s *Sealer) Open(sealed string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := s.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", ErrCiphertextTooShort
	}
	nonce, ct := ciphertext[:nonceSize], ciphertext[nonceSize:]

	compressed, err := s.gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("ошибка расшифровки: %w", err)
	}
	plaintext, err := decompress(compressed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
