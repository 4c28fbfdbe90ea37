// auth/password.go
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost стоимость хэширования bcrypt (10 раундов)
const PasswordCost = 10

// dummyHash используется, когда пользователь не найден,
// чтобы время ответа при неверном email не отличалось от неверного пароля
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), PasswordCost)

// HashPassword хэширует пароль
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хэширования пароля: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword сравнивает пароль с хэшем за постоянное время
func VerifyPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// CompareAgainstDummy тратит то же время, что и VerifyPassword, и всегда возвращает false
func CompareAgainstDummy(raw string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(raw))
	return false
}
