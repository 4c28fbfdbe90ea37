// middleware/params.go
package middleware

import (
	"context"
	"net/http"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
)

// CheckParams проверяет page и limit и кладет страницу в контекст
func CheckParams(defaultLimit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page, err := models.ParsePage(r.URL.Query(), defaultLimit)
			if err != nil {
				errs.Write(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), pageKey, page)))
		})
	}
}
