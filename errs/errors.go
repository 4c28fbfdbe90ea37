// errs/errors.go
package errs

import (
	"errors"
	"fmt"
)

// Kind определяет класс ошибки, от которого зависит HTTP-статус ответа
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Сообщение, которое получает клиент при любой ошибке авторизации.
// Причина отказа наружу не сообщается.
const UnauthorizedMessage = "Нет авторизации для выполнения этой операции"

// Error типизированная ошибка приложения.
// Message уходит клиенту, Err остается только в логах.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation ошибка нарушения ограничений схемы (длина, формат, уникальность)
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Unauthorized ошибка авторизации. reason пишется только в лог.
func Unauthorized(reason string) *Error {
	return &Error{Kind: KindUnauthorized, Message: UnauthorizedMessage, Err: errors.New(reason)}
}

// UnauthorizedWrap то же, что Unauthorized, но сохраняет исходную ошибку
func UnauthorizedWrap(err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: UnauthorizedMessage, Err: err}
}

// NotFound ресурс с указанным идентификатором не найден
func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s не найден", resource, id)}
}

// Internal непредвиденная ошибка (например, недоступна БД)
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Внутренняя ошибка сервера", Err: err}
}

// KindOf возвращает класс ошибки. Ошибки без типа считаются внутренними.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool   { return err != nil && KindOf(err) == KindValidation }
func IsUnauthorized(err error) bool { return err != nil && KindOf(err) == KindUnauthorized }
func IsNotFound(err error) bool     { return err != nil && KindOf(err) == KindNotFound }
