// middleware/recover.go
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/rs/zerolog/log"
)

// Recover превращает панику обработчика в ответ 500
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// Сервер сам обрывает соединение на ErrAbortHandler
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("❌ Паника при обработке запроса")
			errs.Write(w, r, errs.Internal(fmt.Errorf("panic: %v", rec)))
		}()
		next.ServeHTTP(w, r)
	})
}
