// middleware/context.go
package middleware

import (
	"context"

	"github.com/LilVoxy/coursework_market/models"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	productKey
	chatKey
	pageKey
)

// WithIdentity сохраняет аутентифицированного пользователя в контексте
func WithIdentity(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, identityKey, u)
}

// IdentityFrom возвращает пользователя, установленного RequireAuth или охранником
func IdentityFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(identityKey).(*models.User)
	return u, ok && u != nil
}

// ProductFrom возвращает товар, загруженный охранником ProductOwner
func ProductFrom(ctx context.Context) (*models.Product, bool) {
	p, ok := ctx.Value(productKey).(*models.Product)
	return p, ok && p != nil
}

// ChatFrom возвращает чат, загруженный охранником ChatParticipant
func ChatFrom(ctx context.Context) (*models.Chat, bool) {
	c, ok := ctx.Value(chatKey).(*models.Chat)
	return c, ok && c != nil
}

// PageFrom возвращает параметры страницы, разобранные CheckParams
func PageFrom(ctx context.Context) (models.Page, bool) {
	p, ok := ctx.Value(pageKey).(models.Page)
	return p, ok
}
