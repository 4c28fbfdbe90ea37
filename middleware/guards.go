// middleware/guards.go
package middleware

import (
	"context"
	"net/http"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/gorilla/mux"
)

// ProductLookup загружает товар по ID
type ProductLookup interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

// ChatLookup загружает чат по ID
type ChatLookup interface {
	Get(ctx context.Context, id string) (*models.Chat, error)
}

// checkFunc решает, допущен ли пользователь к ресурсу targetID,
// и может дополнить контекст загруженным ресурсом
type checkFunc func(ctx context.Context, identity *models.User, targetID string) (context.Context, error)

// Guard охранник ресурса: сначала аутентификация, потом проверка прав.
// Все причины отказа дают одинаковый ответ 401.
type Guard struct {
	auth  *Authenticator
	check checkFunc
}

// Authorize проверяет доступ текущего пользователя к targetID
// и возвращает контекст с пользователем и ресурсом
func (g *Guard) Authorize(r *http.Request, targetID string) (context.Context, error) {
	identity, err := g.auth.Identify(r)
	if err != nil {
		return nil, err
	}
	ctx := WithIdentity(r.Context(), identity)
	return g.check(ctx, identity, targetID)
}

// Middleware применяет охранника к маршруту с переменной {id}
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := g.Authorize(r, mux.Vars(r)["id"])
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SelfOrAdmin пользователь может менять только свою учетную запись
func (a *Authenticator) SelfOrAdmin() *Guard {
	return &Guard{auth: a, check: func(ctx context.Context, identity *models.User, targetID string) (context.Context, error) {
		if identity.ID != targetID && !identity.IsAdmin {
			return nil, errs.Unauthorized("чужая учетная запись")
		}
		return ctx, nil
	}}
}

// ProductOwner доступ только владельцу товара. Отсутствующий товар дает 404.
func (a *Authenticator) ProductOwner(products ProductLookup) *Guard {
	return &Guard{auth: a, check: func(ctx context.Context, identity *models.User, targetID string) (context.Context, error) {
		p, err := products.Get(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if p.OwnerID != identity.ID && !identity.IsAdmin {
			return nil, errs.Unauthorized("не владелец товара")
		}
		return context.WithValue(ctx, productKey, p), nil
	}}
}

// ChatParticipant доступ только участникам чата. Отсутствующий чат дает 404.
func (a *Authenticator) ChatParticipant(chats ChatLookup) *Guard {
	return &Guard{auth: a, check: func(ctx context.Context, identity *models.User, targetID string) (context.Context, error) {
		c, err := chats.Get(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if !c.HasParticipant(identity.ID) && !identity.IsAdmin {
			return nil, errs.Unauthorized("не участник чата")
		}
		return context.WithValue(ctx, chatKey, c), nil
	}}
}
