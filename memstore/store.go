// memstore/store.go
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
)

type userRecord struct {
	user models.User
	hash string
}

// Store хранилище в памяти процесса с тем же контрактом, что и MySQL.
// Все операции выполняются под одной блокировкой.
type Store struct {
	mu sync.RWMutex

	users     map[string]*userRecord
	userOrder []string

	products     map[string]*models.Product
	productOrder []string

	chats map[string]*models.Chat
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		users:    make(map[string]*userRecord),
		products: make(map[string]*models.Product),
		chats:    make(map[string]*models.Chat),
	}
}

func duplicate(field string) error {
	return errs.Validation("Запись уже существует", map[string]string{field: "уже используется"})
}

func missingRef(field string) error {
	return errs.Validation("Связанная запись не найдена", map[string]string{field: "не существует"})
}

// Users

func (s *Store) CreateUser(_ context.Context, u *models.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(u.Email, "") {
		return duplicate("email")
	}
	s.users[u.ID] = &userRecord{user: *u, hash: passwordHash}
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, errs.NotFound("Пользователь", id)
	}
	u := rec.user
	return &u, nil
}

func (s *Store) GetUserCredentials(_ context.Context, email string) (*models.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		rec := s.users[id]
		if rec.user.Email == email {
			u := rec.user
			return &u, rec.hash, nil
		}
	}
	return nil, "", errs.NotFound("Пользователь", email)
}

func (s *Store) ListUsers(_ context.Context, page models.Page) ([]models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := paginate(s.userOrder, page)
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, s.users[id].user)
	}
	return users, len(s.userOrder), nil
}

func (s *Store) FindUsersByName(_ context.Context, prefix string) ([]models.User, error) {
	return s.findUsers(func(u models.User) string { return strings.ToUpper(u.Name) }, strings.ToUpper(prefix)), nil
}

func (s *Store) FindUsersByEmail(_ context.Context, prefix string) ([]models.User, error) {
	return s.findUsers(func(u models.User) string { return strings.ToLower(u.Email) }, strings.ToLower(prefix)), nil
}

func (s *Store) findUsers(key func(models.User) string, prefix string) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []models.User{}
	for _, id := range s.userOrder {
		u := s.users[id].user
		if strings.HasPrefix(key(u), prefix) {
			users = append(users, u)
		}
	}
	sort.SliceStable(users, func(i, j int) bool { return key(users[i]) < key(users[j]) })
	return users
}

func (s *Store) UpdateUser(_ context.Context, id string, upd models.UserUpdate, passwordHash *string, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, errs.NotFound("Пользователь", id)
	}
	if upd.Email != nil && s.emailTaken(*upd.Email, id) {
		return nil, duplicate("email")
	}

	if upd.Email != nil {
		rec.user.Email = *upd.Email
	}
	if upd.Name != nil {
		rec.user.Name = *upd.Name
	}
	if passwordHash != nil {
		rec.hash = *passwordHash
	}
	rec.user.UpdatedAt = at

	u := rec.user
	return &u, nil
}

// DeleteUser повторяет каскад MySQL: товары владельца и чаты пользователя удаляются,
// у купленных товаров сбрасывается покупатель
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return errs.NotFound("Пользователь", id)
	}

	for _, pid := range append([]string(nil), s.productOrder...) {
		p := s.products[pid]
		if p.OwnerID == id {
			s.deleteProductLocked(pid)
			continue
		}
		if p.BuyerID != nil && *p.BuyerID == id {
			p.BuyerID = nil
		}
	}
	for cid, c := range s.chats {
		if c.HasParticipant(id) {
			delete(s.chats, cid)
		}
	}

	delete(s.users, id)
	s.userOrder = remove(s.userOrder, id)
	return nil
}

// emailTaken вызывается под блокировкой
func (s *Store) emailTaken(email, exceptID string) bool {
	for id, rec := range s.users {
		if id != exceptID && rec.user.Email == email {
			return true
		}
	}
	return false
}

// Products

func (s *Store) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.OwnerID]; !ok {
		return missingRef("owner")
	}
	if p.BuyerID != nil && *p.BuyerID != "" {
		if _, ok := s.users[*p.BuyerID]; !ok {
			return missingRef("buyer")
		}
	}

	stored := cloneProduct(*p)
	s.products[p.ID] = &stored
	s.productOrder = append(s.productOrder, p.ID)
	return nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errs.NotFound("Товар", id)
	}
	out := s.populateProduct(*p)
	return &out, nil
}

func (s *Store) ListProducts(_ context.Context, page models.Page) ([]models.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := paginate(s.productOrder, page)
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, s.populateProduct(*s.products[id]))
	}
	return products, len(s.productOrder), nil
}

func (s *Store) FindProductsByName(_ context.Context, prefix string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix = strings.ToUpper(prefix)
	products := []models.Product{}
	for _, id := range s.productOrder {
		p := s.products[id]
		if strings.HasPrefix(strings.ToUpper(p.Name), prefix) {
			products = append(products, s.populateProduct(*p))
		}
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (s *Store) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.products[p.ID]
	if !ok {
		return errs.NotFound("Товар", p.ID)
	}
	if p.BuyerID != nil && *p.BuyerID != "" {
		if _, ok := s.users[*p.BuyerID]; !ok {
			return missingRef("buyer")
		}
	}

	updated := cloneProduct(*p)
	updated.OwnerID = stored.OwnerID
	updated.CreatedAt = stored.CreatedAt
	if updated.BuyerID != nil && *updated.BuyerID == "" {
		updated.BuyerID = nil
	}
	s.products[p.ID] = &updated
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return errs.NotFound("Товар", id)
	}
	s.deleteProductLocked(id)
	return nil
}

func (s *Store) deleteProductLocked(id string) {
	for cid, c := range s.chats {
		if c.ProductID == id {
			delete(s.chats, cid)
		}
	}
	delete(s.products, id)
	s.productOrder = remove(s.productOrder, id)
}

// populateProduct вызывается под блокировкой
func (s *Store) populateProduct(p models.Product) models.Product {
	out := cloneProduct(p)
	out.Owner = s.userRef(p.OwnerID)
	if p.BuyerID != nil {
		out.Buyer = s.userRef(*p.BuyerID)
	}
	return out
}

func (s *Store) userRef(id string) *models.User {
	rec, ok := s.users[id]
	if !ok {
		return nil
	}
	u := rec.user
	return &u
}

// Chats

func (s *Store) CreateChat(_ context.Context, c *models.Chat, first *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[c.ProductID]; !ok {
		return missingRef("productId")
	}
	for _, id := range []string{c.ParticipantAID, c.ParticipantBID} {
		if _, ok := s.users[id]; !ok {
			return missingRef("participant")
		}
	}
	if _, ok := s.chats[c.ID]; ok {
		return duplicate("id")
	}

	stored := models.Chat{
		ID:             c.ID,
		ProductID:      c.ProductID,
		ParticipantAID: c.ParticipantAID,
		ParticipantBID: c.ParticipantBID,
		Messages:       []models.Message{*first},
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	s.chats[c.ID] = &stored
	return nil
}

func (s *Store) GetChat(_ context.Context, id string) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[id]
	if !ok {
		return nil, errs.NotFound("Чат", id)
	}
	out := s.populateChat(c)
	return &out, nil
}

func (s *Store) ListChats(_ context.Context, userID string, page models.Page) ([]models.Chat, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Chat
	for _, c := range s.chats {
		if userID == "" || c.HasParticipant(userID) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	chats := []models.Chat{}
	start, end := bounds(len(matched), page)
	for _, c := range matched[start:end] {
		chats = append(chats, s.populateChat(c))
	}
	return chats, len(matched), nil
}

func (s *Store) AppendMessage(_ context.Context, chatID string, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return errs.NotFound("Чат", chatID)
	}
	m.ChatID = chatID
	c.Messages = append(c.Messages, *m)
	c.UpdatedAt = m.Date
	return nil
}

func (s *Store) DeleteChat(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[id]; !ok {
		return errs.NotFound("Чат", id)
	}
	delete(s.chats, id)
	return nil
}

// populateChat вызывается под блокировкой
func (s *Store) populateChat(c *models.Chat) models.Chat {
	out := *c
	out.Messages = append([]models.Message{}, c.Messages...)
	out.ParticipantA = s.userRef(c.ParticipantAID)
	out.ParticipantB = s.userRef(c.ParticipantBID)
	if p, ok := s.products[c.ProductID]; ok {
		product := s.populateProduct(*p)
		out.Product = &product
	}
	return out
}

func cloneProduct(p models.Product) models.Product {
	out := p
	out.Owner, out.Buyer = nil, nil
	out.Photos = append([]string{}, p.Photos...)
	if p.BuyerID != nil {
		buyer := *p.BuyerID
		out.BuyerID = &buyer
	}
	return out
}

func bounds(n int, page models.Page) (int, int) {
	start := page.Offset()
	if start < 0 || start > n {
		start = n
	}
	end := n
	if page.Limit > 0 && page.Limit < n-start {
		end = start + page.Limit
	}
	return start, end
}

func paginate(ids []string, page models.Page) []string {
	start, end := bounds(len(ids), page)
	return ids[start:end]
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
