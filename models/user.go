// models/user.go
package models

import (
	"strings"
	"time"
)

// User пользователь маркетплейса. Хэш пароля в структуру не входит
// и поэтому не может попасть ни в один ответ API.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser данные для регистрации пользователя
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=3,max=22"`
}

// Normalize приводит email к нижнему регистру, а имя к верхнему
func (u *NewUser) Normalize() {
	u.Email = NormalizeEmail(u.Email)
	u.Name = NormalizeName(u.Name)
}

// Validate нормализует и проверяет данные регистрации
func (u *NewUser) Validate() error {
	u.Normalize()
	return validateStruct(u)
}

// UserUpdate частичное обновление пользователя. nil означает "не менять".
type UserUpdate struct {
	Email    *string `json:"email" validate:"omitnil,email"`
	Password *string `json:"password" validate:"omitnil,min=8"`
	Name     *string `json:"name" validate:"omitnil,min=3,max=22"`
}

// Validate нормализует и проверяет переданные поля
func (u *UserUpdate) Validate() error {
	if u.Email != nil {
		email := NormalizeEmail(*u.Email)
		u.Email = &email
	}
	if u.Name != nil {
		name := NormalizeName(*u.Name)
		u.Name = &name
	}
	return validateStruct(u)
}

// Credentials данные для входа
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName имена пользователей и товаров хранятся в верхнем регистре
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
