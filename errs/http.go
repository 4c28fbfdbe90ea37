// errs/http.go
package errs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// errorBody тело ответа с ошибкой
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteJSON сериализует v в ответ с указанным статусом
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("❌ Ошибка при кодировании JSON")
	}
}

// Write единая точка преобразования ошибок в HTTP-ответ.
// Для 404 отдается пустой объект, как и в остальном API.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	write(w, r, err, struct{}{})
}

// WriteNotFoundList то же, что Write, но для поисковых коллекций: 404 отдается с пустым массивом
func WriteNotFoundList(w http.ResponseWriter, r *http.Request, err error) {
	write(w, r, err, []struct{}{})
}

func write(w http.ResponseWriter, r *http.Request, err error, notFoundBody interface{}) {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal(err)
	}

	switch e.Kind {
	case KindValidation:
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Err(err).Msg("⚠️ Ошибка валидации")
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: e.Message, Fields: e.Fields})
	case KindUnauthorized:
		log.Warn().Str("method", r.Method).Str("path", r.URL.Path).Err(err).Msg("⚠️ Отказ в доступе")
		WriteJSON(w, http.StatusUnauthorized, errorBody{Error: UnauthorizedMessage})
	case KindNotFound:
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Err(err).Msg("ℹ️ Ресурс не найден")
		WriteJSON(w, http.StatusNotFound, notFoundBody)
	default:
		log.Error().Str("method", r.Method).Str("path", r.URL.Path).Err(err).Msg("❌ Необработанная ошибка")
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Внутренняя ошибка сервера"})
	}
}
