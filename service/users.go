// service/users.go
package service

import (
	"context"
	"time"

	"github.com/LilVoxy/coursework_market/auth"
	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session результат успешного входа
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Users хранилище учетных данных: регистрация, вход, профиль
type Users struct {
	store  UserStore
	tokens *auth.TokenService
	admins map[string]struct{}
	now    func() time.Time
}

// NewUsers создает сервис пользователей. Email из adminEmails при регистрации
// получают права администратора.
func NewUsers(store UserStore, tokens *auth.TokenService, adminEmails []string) *Users {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		if email = models.NormalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Users{store: store, tokens: tokens, admins: admins, now: time.Now}
}

// Register проверяет данные, хэширует пароль и сохраняет пользователя
func (s *Users) Register(ctx context.Context, in models.NewUser) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errs.Internal(err)
	}

	now := s.now().UTC()
	_, isAdmin := s.admins[in.Email]
	u := &models.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      in.Name,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateUser(ctx, u, hash); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", u.ID).Bool("admin", u.IsAdmin).Msg("✅ Зарегистрирован новый пользователь")
	return u, nil
}

// Login проверяет email и пароль и выпускает токен.
// Неизвестный email и неверный пароль дают одну и ту же ошибку.
func (s *Users) Login(ctx context.Context, creds models.Credentials) (*Session, error) {
	email := models.NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, errs.Unauthorized("пустой email или пароль")
	}

	u, hash, err := s.store.GetUserCredentials(ctx, email)
	switch {
	case errs.IsNotFound(err):
		auth.CompareAgainstDummy(creds.Password)
		log.Debug().Str("email", email).Msg("⚠️ Вход с неизвестным email")
		return nil, errs.Unauthorized("неизвестный email")
	case err != nil:
		return nil, err
	}

	if !auth.VerifyPassword(hash, creds.Password) {
		log.Debug().Str("user_id", u.ID).Msg("⚠️ Неверный пароль")
		return nil, errs.Unauthorized("неверный пароль")
	}

	token, expiresAt, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, errs.Internal(err)
	}
	log.Info().Str("user_id", u.ID).Msg("✅ Пользователь вошел в систему")
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Get возвращает пользователя по ID
func (s *Users) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

// List возвращает страницу пользователей
func (s *Users) List(ctx context.Context, page models.Page) (models.List[models.User], error) {
	users, total, err := s.store.ListUsers(ctx, page)
	if err != nil {
		return models.List[models.User]{}, err
	}
	return models.NewList(users, total, page), nil
}

// SearchByName ищет по началу имени без учета регистра
func (s *Users) SearchByName(ctx context.Context, prefix string) ([]models.User, error) {
	prefix = models.NormalizeName(prefix)
	if prefix == "" {
		return []models.User{}, nil
	}
	return s.store.FindUsersByName(ctx, prefix)
}

// SearchByEmail ищет по началу email
func (s *Users) SearchByEmail(ctx context.Context, prefix string) ([]models.User, error) {
	prefix = models.NormalizeEmail(prefix)
	if prefix == "" {
		return []models.User{}, nil
	}
	return s.store.FindUsersByEmail(ctx, prefix)
}

// Update меняет только переданные поля. Пароль хэшируется заново,
// только если он передан.
func (s *Users) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	var hash *string
	if upd.Password != nil {
		h, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, errs.Internal(err)
		}
		hash = &h
	}
	upd.Password = nil

	u, err := s.store.UpdateUser(ctx, id, upd, hash, s.now().UTC())
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", id).Bool("password_changed", hash != nil).Msg("✅ Пользователь обновлен")
	return u, nil
}

// Delete удаляет пользователя и возвращает удаленную запись
func (s *Users) Delete(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

