// models/page.go
package models

import (
	"math"
	"net/url"
	"strconv"

	"github.com/LilVoxy/coursework_market/errs"
)

// MaxLimit наибольший размер страницы
const MaxLimit = 100

// Page параметры постраничной выдачи
type Page struct {
	Number int
	Limit  int
}

// Offset количество записей, которые нужно пропустить
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// ParsePage разбирает page и limit из строки запроса.
// Оба параметра должны быть положительными целыми, по умолчанию page=1.
// limit не больше MaxLimit, смещение страницы должно помещаться в int.
func ParsePage(query url.Values, defaultLimit int) (Page, error) {
	p := Page{Number: 1, Limit: defaultLimit}

	if v := query.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Page{}, errs.Validation("Некорректные параметры", map[string]string{"page": "должно быть положительным целым"})
		}
		p.Number = n
	}

	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Page{}, errs.Validation("Некорректные параметры", map[string]string{"limit": "должно быть положительным целым"})
		}
		if n > MaxLimit {
			return Page{}, errs.Validation("Некорректные параметры", map[string]string{"limit": "не больше " + strconv.Itoa(MaxLimit)})
		}
		p.Limit = n
	}

	if p.Limit > 0 && p.Number-1 > math.MaxInt/p.Limit {
		return Page{}, errs.Validation("Некорректные параметры", map[string]string{"page": "слишком большой номер страницы"})
	}

	return p, nil
}

// List конверт коллекции в ответах API
type List[T any] struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Data        []T `json:"data"`
}

// NewList собирает конверт. totalPages округляется вверх.
func NewList[T any](items []T, total int, p Page) List[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = total / p.Limit
		if total%p.Limit != 0 {
			pages++
		}
	}
	return List[T]{
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: p.Number,
		Data:        items,
	}
}
