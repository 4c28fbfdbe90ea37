// database/product.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/rs/zerolog/log"
)

const productColumns = "id, name, price, description, owner_id, buyer_id, photos, created_at, updated_at"

func scanProduct(row scanner) (*models.Product, error) {
	var (
		p      models.Product
		buyer  sql.NullString
		photos string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.OwnerID, &buyer, &photos, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if buyer.Valid {
		p.BuyerID = &buyer.String
	}
	if err := json.Unmarshal([]byte(photos), &p.Photos); err != nil {
		return nil, fmt.Errorf("ошибка разбора фото товара %s: %w", p.ID, err)
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	return &p, nil
}

func encodePhotos(photos []string) (string, error) {
	if photos == nil {
		photos = []string{}
	}
	b, err := json.Marshal(photos)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// CreateProduct сохраняет новый товар
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	photos, err := encodePhotos(p.Photos)
	if err != nil {
		return errs.Internal(err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO products (id, name, price, description, owner_id, buyer_id, photos, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Price, p.Description, p.OwnerID, nullable(p.BuyerID), photos, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return classify(err, "buyer")
	}
	log.Debug().Str("product_id", p.ID).Str("owner_id", p.OwnerID).Msg("✅ Товар сохранен")
	return nil
}

// GetProduct возвращает товар с заполненными владельцем и покупателем
func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, "Товар", id)
	}
	products := []models.Product{*p}
	if err := s.populateProducts(ctx, s.db, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// ListProducts возвращает страницу товаров и их общее количество
func (s *Store) ListProducts(ctx context.Context, page models.Page) ([]models.Product, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&total); err != nil {
		return nil, 0, errs.Internal(err)
	}
	products, err := s.queryProducts(ctx, s.db,
		"SELECT "+productColumns+" FROM products ORDER BY created_at, id LIMIT ? OFFSET ?",
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindProductsByName ищет товары по началу названия
func (s *Store) FindProductsByName(ctx context.Context, prefix string) ([]models.Product, error) {
	return s.queryProducts(ctx, s.db,
		"SELECT "+productColumns+" FROM products WHERE name LIKE ? ORDER BY name, id",
		likePrefix(prefix))
}

// UpdateProduct сохраняет изменяемые поля товара. owner_id не обновляется.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	photos, err := encodePhotos(p.Photos)
	if err != nil {
		return errs.Internal(err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET name = ?, price = ?, description = ?, buyer_id = ?, photos = ?, updated_at = ? WHERE id = ?",
		p.Name, p.Price, p.Description, nullable(p.BuyerID), photos, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return classify(err, "buyer")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NotFound("Товар", p.ID)
	}
	return nil
}

// DeleteProduct удаляет товар вместе с его чатами
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return errs.Internal(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NotFound("Товар", id)
	}
	log.Info().Str("product_id", id).Msg("✅ Товар удален")
	return nil
}

func (s *Store) queryProducts(ctx context.Context, q querier, query string, args ...any) ([]models.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Internal(err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errs.Internal(err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Internal(err)
	}
	rows.Close()

	if err := s.populateProducts(ctx, q, products); err != nil {
		return nil, err
	}
	return products, nil
}

// populateProducts подставляет владельцев и покупателей одним запросом
func (s *Store) populateProducts(ctx context.Context, q querier, products []models.Product) error {
	ids := make([]string, 0, len(products)*2)
	for _, p := range products {
		ids = append(ids, p.OwnerID)
		if p.BuyerID != nil {
			ids = append(ids, *p.BuyerID)
		}
	}
	users, err := s.loadUsers(ctx, q, ids)
	if err != nil {
		return err
	}
	for i := range products {
		products[i].Owner = users[products[i].OwnerID]
		if products[i].BuyerID != nil {
			products[i].Buyer = users[*products[i].BuyerID]
		}
	}
	return nil
}

// loadProducts загружает товары по списку ID
func (s *Store) loadProducts(ctx context.Context, q querier, ids []string) (map[string]*models.Product, error) {
	ids = unique(ids)
	result := make(map[string]*models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	products, err := s.queryProducts(ctx, q,
		"SELECT "+productColumns+" FROM products WHERE id IN ("+placeholders(len(ids))+")",
		toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}
