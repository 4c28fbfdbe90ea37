// models/product.go
package models

import (
	"strings"
	"time"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/google/uuid"
)

// Product товар. Владелец задается при создании и дальше не меняется.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"-"`
	Owner       *User     `json:"owner"`
	BuyerID     *string   `json:"-"`
	Buyer       *User     `json:"buyer,omitempty"`
	Photos      []string  `json:"photos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductInput данные для создания товара. Владельца из тела запроса не берем.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,min=3,max=50"`
	Price       *float64 `json:"price" validate:"required,gte=0,lte=9999999999.99"`
	Description string   `json:"description" validate:"omitempty,min=10,max=50"`
	BuyerID     *string  `json:"buyer"`
	Photos      []string `json:"photos" validate:"omitempty,dive,required"`
}

// Validate нормализует и проверяет данные товара
func (p *ProductInput) Validate() error {
	p.Name = NormalizeName(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if err := validateStruct(p); err != nil {
		return err
	}
	return validateBuyerID(p.BuyerID)
}

// ProductUpdate частичное обновление товара.
// Пустая строка в BuyerID снимает покупателя.
type ProductUpdate struct {
	Name        *string   `json:"name" validate:"omitnil,min=3,max=50"`
	Price       *float64  `json:"price" validate:"omitnil,gte=0,lte=9999999999.99"`
	Description *string   `json:"description" validate:"omitempty,min=10,max=50"`
	BuyerID     *string   `json:"buyer"`
	Photos      *[]string `json:"photos"`
}

// Validate нормализует и проверяет переданные поля
func (p *ProductUpdate) Validate() error {
	if p.Name != nil {
		name := NormalizeName(*p.Name)
		p.Name = &name
	}
	if p.Description != nil {
		description := strings.TrimSpace(*p.Description)
		p.Description = &description
	}
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.Photos != nil {
		for _, photo := range *p.Photos {
			if strings.TrimSpace(photo) == "" {
				return errs.Validation("Некорректные данные", map[string]string{"photos": "пустая ссылка на фото"})
			}
		}
	}
	return validateBuyerID(p.BuyerID)
}

// ClearsBuyer сообщает, что обновление снимает покупателя
func (p *ProductUpdate) ClearsBuyer() bool {
	return p.BuyerID != nil && *p.BuyerID == ""
}

func validateBuyerID(id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return errs.Validation("Некорректные данные", map[string]string{"buyer": "некорректный идентификатор"})
	}
	return nil
}
