// database/user.go
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/rs/zerolog/log"
)

// Хэш пароля в этот список не входит
const userColumns = "id, email, name, is_admin, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner, extra ...any) (*models.User, error) {
	var u models.User
	dest := append([]any{&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser сохраняет пользователя с хэшем пароля
func (s *Store) CreateUser(ctx context.Context, u *models.User, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, name, is_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Email, passwordHash, u.Name, u.IsAdmin, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return classify(err, "email")
	}
	log.Debug().Str("user_id", u.ID).Msg("✅ Пользователь сохранен")
	return nil
}

// GetUser возвращает пользователя по ID
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, "Пользователь", id)
	}
	return u, nil
}

// GetUserCredentials возвращает пользователя и хэш его пароля по email
func (s *Store) GetUserCredentials(ctx context.Context, email string) (*models.User, string, error) {
	var hash string
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+", password_hash FROM users WHERE email = ?", email), &hash)
	if err != nil {
		return nil, "", notFound(err, "Пользователь", email)
	}
	return u, hash, nil
}

// ListUsers возвращает страницу пользователей и их общее количество
func (s *Store) ListUsers(ctx context.Context, page models.Page) ([]models.User, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, errs.Internal(err)
	}

	users, err := s.queryUsers(ctx, s.db,
		"SELECT "+userColumns+" FROM users ORDER BY created_at, id LIMIT ? OFFSET ?",
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// FindUsersByName ищет пользователей по началу имени
func (s *Store) FindUsersByName(ctx context.Context, prefix string) ([]models.User, error) {
	return s.queryUsers(ctx, s.db,
		`SELECT `+userColumns+` FROM users WHERE name LIKE ? ORDER BY name, id`,
		likePrefix(prefix))
}

// FindUsersByEmail ищет пользователей по началу email
func (s *Store) FindUsersByEmail(ctx context.Context, prefix string) ([]models.User, error) {
	return s.queryUsers(ctx, s.db,
		`SELECT `+userColumns+` FROM users WHERE email LIKE ? ORDER BY email, id`,
		likePrefix(prefix))
}

// UpdateUser обновляет переданные поля пользователя
func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UserUpdate, passwordHash *string, at time.Time) (*models.User, error) {
	sets := []string{"updated_at = ?"}
	args := []any{at}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if passwordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *passwordHash)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(sets, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, classify(err, "email")
	}
	return s.GetUser(ctx, id)
}

// DeleteUser удаляет пользователя. Его товары и чаты удаляются каскадно,
// у купленных им товаров покупатель сбрасывается.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return errs.Internal(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NotFound("Пользователь", id)
	}
	log.Info().Str("user_id", id).Msg("✅ Пользователь удален")
	return nil
}

func (s *Store) queryUsers(ctx context.Context, q querier, query string, args ...any) ([]models.User, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Internal(err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errs.Internal(err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Internal(err)
	}
	return users, nil
}

// loadUsers загружает пользователей по списку ID одним запросом
func (s *Store) loadUsers(ctx context.Context, q querier, ids []string) (map[string]*models.User, error) {
	ids = unique(ids)
	result := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	users, err := s.queryUsers(ctx, q,
		"SELECT "+userColumns+" FROM users WHERE id IN ("+placeholders(len(ids))+")",
		toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
