// service/products.go
package service

import (
	"context"
	"time"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Products операции с товарами
type Products struct {
	store ProductStore
	users UserStore
	now   func() time.Time
}

func NewProducts(store ProductStore, users UserStore) *Products {
	return &Products{store: store, users: users, now: time.Now}
}

// Create создает товар, владельцем становится owner
func (s *Products) Create(ctx context.Context, owner *models.User, in models.ProductInput) (*models.Product, error) {
	if owner == nil {
		return nil, errs.Unauthorized("нет владельца товара")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var buyerID *string
	if in.BuyerID != nil && *in.BuyerID != "" {
		if err := s.checkBuyer(ctx, owner.ID, *in.BuyerID); err != nil {
			return nil, err
		}
		buyerID = in.BuyerID
	}

	now := s.now().UTC()
	p := &models.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Price:       *in.Price,
		Description: in.Description,
		OwnerID:     owner.ID,
		BuyerID:     buyerID,
		Photos:      in.Photos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	log.Info().Str("product_id", p.ID).Str("owner_id", owner.ID).Msg("✅ Товар создан")
	return s.store.GetProduct(ctx, p.ID)
}

func (s *Products) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Products) List(ctx context.Context, page models.Page) (models.List[models.Product], error) {
	products, total, err := s.store.ListProducts(ctx, page)
	if err != nil {
		return models.List[models.Product]{}, err
	}
	return models.NewList(products, total, page), nil
}

// SearchByName ищет по началу названия без учета регистра
func (s *Products) SearchByName(ctx context.Context, prefix string) ([]models.Product, error) {
	prefix = models.NormalizeName(prefix)
	if prefix == "" {
		return []models.Product{}, nil
	}
	return s.store.FindProductsByName(ctx, prefix)
}

// Update применяет частичное обновление. Владельца изменить нельзя.
func (s *Products) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Photos != nil {
		p.Photos = append([]string{}, *upd.Photos...)
	}
	switch {
	case upd.ClearsBuyer():
		p.BuyerID = nil
	case upd.BuyerID != nil:
		if err := s.checkBuyer(ctx, p.OwnerID, *upd.BuyerID); err != nil {
			return nil, err
		}
		buyer := *upd.BuyerID
		p.BuyerID = &buyer
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("product_id", id).Msg("✅ Товар обновлен")
	return s.store.GetProduct(ctx, id)
}

// Delete удаляет товар вместе с его чатами и возвращает удаленную запись
func (s *Products) Delete(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// checkBuyer покупатель должен существовать и не совпадать с владельцем
func (s *Products) checkBuyer(ctx context.Context, ownerID, buyerID string) error {
	if buyerID == ownerID {
		return errs.Validation("Некорректные данные", map[string]string{"buyer": "владелец не может купить свой товар"})
	}
	if _, err := s.users.GetUser(ctx, buyerID); err != nil {
		if errs.IsNotFound(err) {
			return errs.Validation("Некорректные данные", map[string]string{"buyer": "пользователь не найден"})
		}
		return err
	}
	return nil
}
