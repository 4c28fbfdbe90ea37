// service/store.go
package service

import (
	"context"
	"time"

	"github.com/LilVoxy/coursework_market/models"
)

// UserStore хранилище пользователей.
// Отсутствующая запись возвращается как errs.NotFound, дубликат email как errs.Validation.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User, passwordHash string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	// GetUserCredentials единственный метод, который возвращает хэш пароля
	GetUserCredentials(ctx context.Context, email string) (*models.User, string, error)
	ListUsers(ctx context.Context, page models.Page) ([]models.User, int, error)
	FindUsersByName(ctx context.Context, prefix string) ([]models.User, error)
	FindUsersByEmail(ctx context.Context, prefix string) ([]models.User, error)
	// UpdateUser меняет только переданные поля. passwordHash == nil оставляет пароль прежним.
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate, passwordHash *string, at time.Time) (*models.User, error)
	// DeleteUser удаляет пользователя вместе с его товарами и чатами
	DeleteUser(ctx context.Context, id string) error
}

// ProductStore хранилище товаров. Owner и Buyer в ответах заполнены.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, page models.Page) ([]models.Product, int, error)
	FindProductsByName(ctx context.Context, prefix string) ([]models.Product, error)
	// UpdateProduct сохраняет изменяемые поля. Владелец не меняется.
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// ChatStore хранилище чатов и сообщений
type ChatStore interface {
	// CreateChat атомарно сохраняет чат и первое сообщение
	CreateChat(ctx context.Context, c *models.Chat, first *models.Message) error
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	// ListChats возвращает чаты участника, пустой userID означает все чаты
	ListChats(ctx context.Context, userID string, page models.Page) ([]models.Chat, int, error)
	// AppendMessage атомарно добавляет сообщение в конец чата
	AppendMessage(ctx context.Context, chatID string, m *models.Message) error
	// DeleteChat удаляет чат и все его сообщения
	DeleteChat(ctx context.Context, id string) error
}

// Store полный контракт хранилища
type Store interface {
	UserStore
	ProductStore
	ChatStore
}
