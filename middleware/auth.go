// middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/LilVoxy/coursework_market/auth"
	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
)

// TokenVerifier проверяет токен доступа
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// UserLookup загружает пользователя по ID
type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// Authenticator определяет пользователя по токену запроса
type Authenticator struct {
	tokens TokenVerifier
	users  UserLookup
}

func NewAuthenticator(tokens TokenVerifier, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// BearerToken извлекает токен из заголовка Authorization
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Identify возвращает пользователя, которому выдан токен запроса
func (a *Authenticator) Identify(r *http.Request) (*models.User, error) {
	return a.IdentifyToken(r.Context(), BearerToken(r))
}

// IdentifyToken проверяет токен и загружает пользователя.
// Токен удаленного пользователя или пользователя со сменившимся email не принимается.
func (a *Authenticator) IdentifyToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, errs.Unauthorized("нет токена")
	}
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, errs.UnauthorizedWrap(err)
	}

	u, err := a.users.Get(ctx, claims.ID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.Unauthorized("пользователь токена не найден")
		}
		return nil, err
	}
	if u.Email != claims.Email {
		return nil, errs.Unauthorized("email токена не совпадает")
	}
	return u, nil
}

// RequireAuth пропускает только запросы с действительным токеном
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.Identify(r)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), u)))
	})
}
