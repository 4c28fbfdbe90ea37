package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LilVoxy/coursework_market/auth"
	"github.com/LilVoxy/coursework_market/memstore"
	"github.com/LilVoxy/coursework_market/middleware"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/LilVoxy/coursework_market/routes"
	"github.com/LilVoxy/coursework_market/service"
)

type api struct {
	t *testing.T
	h http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := memstore.New()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	users := service.NewUsers(store, tokens, []string{"admin@gmail.com"})
	products := service.NewProducts(store, store)
	chats := service.NewChats(store, store, nil)
	h := routes.SetupRoutes(routes.Deps{
		Users:      users,
		Products:   products,
		Chats:      chats,
		Auth:       middleware.NewAuthenticator(tokens, users),
		CORSOrigin: "http://localhost:3000",
	})
	return &api{t: t, h: h}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// signup регистрирует пользователя и входит под ним
func (a *api) signup(email, name string) (*models.User, string) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/user", "", map[string]string{"email": email, "password": "password1", "name": name})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("register %s: %d %s", email, rec.Code, rec.Body.String())
	}
	rec = a.do(http.MethodPost, "/user/login", "", map[string]string{"email": email, "password": "password1"})
	if rec.Code != http.StatusOK {
		a.t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body.String())
	}
	s := decode[service.Session](a.t, rec)
	return s.User, s.Token
}

func (a *api) product(token, name string) *models.Product {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/product", token, map[string]interface{}{"name": name, "price": 12.5})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("create product: %d %s", rec.Code, rec.Body.String())
	}
	p := decode[models.Product](a.t, rec)
	return &p
}

func (a *api) startChat(token, productID, body string) *models.Chat {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/chat/"+productID, token, map[string]string{"newMessage": body})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("start chat: %d %s", rec.Code, rec.Body.String())
	}
	c := decode[models.Chat](a.t, rec)
	return &c
}

func (a *api) chat(token, id string) models.Chat {
	a.t.Helper()
	rec := a.do(http.MethodGet, "/chat/"+id, token, nil)
	if rec.Code != http.StatusOK {
		a.t.Fatalf("get chat: %d %s", rec.Code, rec.Body.String())
	}
	return decode[models.Chat](a.t, rec)
}

func TestPasswordNeverReturned(t *testing.T) {
	a := newAPI(t)
	u, token := a.signup("ana@mail.com", "ana maria")

	responses := []*httptest.ResponseRecorder{
		a.do(http.MethodPost, "/user/login", "", map[string]string{"email": "ana@mail.com", "password": "password1"}),
		a.do(http.MethodGet, "/user/"+u.ID, "", nil),
		a.do(http.MethodGet, "/user", "", nil),
		a.do(http.MethodGet, "/user/name/an", "", nil),
		a.do(http.MethodGet, "/user/email/ana", "", nil),
		a.do(http.MethodPut, "/user/"+u.ID, token, map[string]string{"password": "newpassword"}),
	}
	p := a.product(token, "lamp")
	responses = append(responses, a.do(http.MethodGet, "/product/"+p.ID, "", nil))

	for i, rec := range responses {
		body := rec.Body.String()
		if rec.Code != http.StatusOK {
			t.Errorf("#%d: status %d %s", i, rec.Code, body)
		}
		for _, leak := range []string{"password", "password1", "newpassword", "$2a$"} {
			if strings.Contains(body, leak) {
				t.Errorf("#%d leaks %q: %s", i, leak, body)
			}
		}
	}
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	a := newAPI(t)
	a.signup("ana@mail.com", "ana maria")

	wrong := a.do(http.MethodPost, "/user/login", "", map[string]string{"email": "ana@mail.com", "password": "wrongpass"})
	unknown := a.do(http.MethodPost, "/user/login", "", map[string]string{"email": "nobody@mail.com", "password": "password1"})
	garbage := a.do(http.MethodPost, "/user/login", "", "{not json")

	for name, rec := range map[string]*httptest.ResponseRecorder{"unknown": unknown, "garbage": garbage} {
		if rec.Code != wrong.Code || rec.Body.String() != wrong.Body.String() {
			t.Errorf("%s: %d %q differs from wrong password %d %q", name, rec.Code, rec.Body.String(), wrong.Code, wrong.Body.String())
		}
	}
	if wrong.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", wrong.Code)
	}
}

func TestDuplicateEmail(t *testing.T) {
	a := newAPI(t)
	first, _ := a.signup("ana@mail.com", "ana maria")

	rec := a.do(http.MethodPost, "/user", "", map[string]string{"email": "ANA@mail.com", "password": "password2", "name": "impostor"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	got := decode[models.User](t, a.do(http.MethodGet, "/user/"+first.ID, "", nil))
	if got.Name != "ANA MARIA" {
		t.Errorf("first user changed: %+v", got)
	}
	if rec := a.do(http.MethodPost, "/user/login", "", map[string]string{"email": "ana@mail.com", "password": "password1"}); rec.Code != http.StatusOK {
		t.Errorf("original credentials broken: %d", rec.Code)
	}
}

func TestAppendByOutsider(t *testing.T) {
	a := newAPI(t)
	_, ownerToken := a.signup("owner@mail.com", "owner")
	_, buyerToken := a.signup("buyer@mail.com", "buyer")
	_, strangerToken := a.signup("stranger@mail.com", "stranger")
	_, adminToken := a.signup("admin@gmail.com", "admin")

	p := a.product(ownerToken, "lamp")
	c := a.startChat(buyerToken, p.ID, "is it available?")

	for name, token := range map[string]string{"stranger": strangerToken, "admin": adminToken, "anonymous": ""} {
		rec := a.do(http.MethodPut, "/chat/"+c.ID, token, map[string]string{"newMessage": "let me in"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
	}
	if got := a.chat(ownerToken, c.ID); len(got.Messages) != 1 {
		t.Errorf("messages = %d, want 1", len(got.Messages))
	}
}

func TestAppendOrderAndConcurrency(t *testing.T) {
	a := newAPI(t)
	owner, ownerToken := a.signup("owner@mail.com", "owner")
	buyer, buyerToken := a.signup("buyer@mail.com", "buyer")
	p := a.product(ownerToken, "lamp")
	c := a.startChat(buyerToken, p.ID, "message 0")

	for i := 1; i <= 5; i++ {
		token := ownerToken
		if i%2 == 0 {
			token = buyerToken
		}
		rec := a.do(http.MethodPut, "/chat/"+c.ID, token, map[string]string{"newMessage": fmt.Sprintf("message %d", i)})
		if rec.Code != http.StatusOK {
			t.Fatalf("append %d: %d %s", i, rec.Code, rec.Body.String())
		}
	}

	got := a.chat(buyerToken, c.ID)
	if len(got.Messages) != 6 {
		t.Fatalf("messages = %d, want 6", len(got.Messages))
	}
	for i, m := range got.Messages {
		if m.Body != fmt.Sprintf("message %d", i) {
			t.Errorf("#%d body = %q", i, m.Body)
		}
		wantSender, wantReceiver := owner.ID, buyer.ID
		if i%2 == 0 {
			wantSender, wantReceiver = buyer.ID, owner.ID
		}
		if m.SenderID != wantSender || m.ReceiverID != wantReceiver {
			t.Errorf("#%d sender/receiver = %s/%s", i, m.SenderID, m.ReceiverID)
		}
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := ownerToken
			if i%2 == 0 {
				token = buyerToken
			}
			req := httptest.NewRequest(http.MethodPut, "/chat/"+c.ID, strings.NewReader(fmt.Sprintf(`{"newMessage":"concurrent %d"}`, i)))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			a.h.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("concurrent append %d: %d", i, rec.Code)
			}
		}(i)
	}
	wg.Wait()

	if got := a.chat(ownerToken, c.ID); len(got.Messages) != 6+n {
		t.Errorf("messages after concurrent appends = %d, want %d", len(got.Messages), 6+n)
	}
}

func TestDeleteRequiresOwnership(t *testing.T) {
	a := newAPI(t)
	ana, anaToken := a.signup("ana@mail.com", "ana maria")
	_, bobToken := a.signup("bob@mail.com", "bob")
	_, carlToken := a.signup("carl@mail.com", "carl")
	_, adminToken := a.signup("admin@gmail.com", "admin")

	p := a.product(anaToken, "lamp")
	c := a.startChat(bobToken, p.ID, "is it available?")

	for path, code := range map[string]int{
		"/user/" + ana.ID:  a.do(http.MethodDelete, "/user/"+ana.ID, bobToken, nil).Code,
		"/product/" + p.ID: a.do(http.MethodDelete, "/product/"+p.ID, bobToken, nil).Code,
		"/chat/" + c.ID:    a.do(http.MethodDelete, "/chat/"+c.ID, carlToken, nil).Code,
	} {
		if code != http.StatusUnauthorized {
			t.Errorf("DELETE %s by outsider: %d, want 401", path, code)
		}
	}

	totals := func() (int, int, int) {
		u := decode[models.List[models.User]](t, a.do(http.MethodGet, "/user", "", nil))
		pr := decode[models.List[models.Product]](t, a.do(http.MethodGet, "/product", "", nil))
		ch := decode[models.List[models.Chat]](t, a.do(http.MethodGet, "/chat", adminToken, nil))
		return u.TotalItems, pr.TotalItems, ch.TotalItems
	}
	if u, pr, ch := totals(); u != 4 || pr != 1 || ch != 1 {
		t.Fatalf("counts after refused deletes = %d/%d/%d", u, pr, ch)
	}

	rec := a.do(http.MethodDelete, "/chat/"+c.ID, adminToken, nil)
	if rec.Code != http.StatusOK || decode[models.Chat](t, rec).ID != c.ID {
		t.Errorf("admin chat delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodDelete, "/product/"+p.ID, adminToken, nil); rec.Code != http.StatusOK {
		t.Errorf("admin product delete: %d", rec.Code)
	}
	if rec := a.do(http.MethodDelete, "/user/"+ana.ID, adminToken, nil); rec.Code != http.StatusOK {
		t.Errorf("admin user delete: %d", rec.Code)
	}
	if u, pr, ch := totals(); u != 3 || pr != 0 || ch != 0 {
		t.Errorf("counts after admin deletes = %d/%d/%d", u, pr, ch)
	}
}

func TestStartChatAsBuyer(t *testing.T) {
	a := newAPI(t)
	owner, ownerToken := a.signup("owner@mail.com", "owner")
	buyer, buyerToken := a.signup("buyer@mail.com", "buyer")
	p := a.product(ownerToken, "lamp")

	rec := a.do(http.MethodPost, "/chat/"+p.ID, buyerToken, map[string]string{"productId": p.ID, "newMessage": "  still for sale?  "})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	c := decode[models.Chat](t, rec)
	if c.ParticipantA == nil || c.ParticipantA.ID != buyer.ID || c.ParticipantB == nil || c.ParticipantB.ID != owner.ID {
		t.Errorf("participants = %+v / %+v", c.ParticipantA, c.ParticipantB)
	}
	if c.Product == nil || c.Product.ID != p.ID {
		t.Errorf("product = %+v", c.Product)
	}
	if len(c.Messages) != 1 || c.Messages[0].SenderID != buyer.ID || c.Messages[0].Body != "still for sale?" {
		t.Errorf("messages = %+v", c.Messages)
	}

	for name, tc := range map[string]struct {
		token, product string
		body           interface{}
		want           int
	}{
		"own product":     {ownerToken, p.ID, map[string]string{"newMessage": "hello me"}, http.StatusBadRequest},
		"missing product": {buyerToken, "nope", map[string]string{"newMessage": "hello there"}, http.StatusNotFound},
		"mismatched body": {buyerToken, p.ID, map[string]string{"productId": "other", "newMessage": "hello there"}, http.StatusBadRequest},
		"too short":       {buyerToken, p.ID, map[string]string{"newMessage": "hi"}, http.StatusBadRequest},
		"anonymous":       {"", p.ID, map[string]string{"newMessage": "hello there"}, http.StatusUnauthorized},
		"invalid json":    {buyerToken, p.ID, "{", http.StatusBadRequest},
	} {
		if rec := a.do(http.MethodPost, "/chat/"+tc.product, tc.token, tc.body); rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d (%s)", name, rec.Code, tc.want, rec.Body.String())
		}
	}
}

func TestPutByOutsiderCreatesNothing(t *testing.T) {
	a := newAPI(t)
	_, ownerToken := a.signup("owner@mail.com", "owner")
	_, buyerToken := a.signup("buyer@mail.com", "buyer")
	_, strangerToken := a.signup("stranger@mail.com", "stranger")
	p := a.product(ownerToken, "lamp")
	c := a.startChat(buyerToken, p.ID, "is it available?")

	rec := a.do(http.MethodPut, "/chat/"+c.ID, strangerToken, map[string]string{"newMessage": "hijack attempt"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	got := a.chat(buyerToken, c.ID)
	if len(got.Messages) != 1 || !got.UpdatedAt.Equal(c.UpdatedAt) {
		t.Errorf("chat changed: %d messages, updated %v -> %v", len(got.Messages), c.UpdatedAt, got.UpdatedAt)
	}

	if rec := a.do(http.MethodGet, "/chat/"+c.ID, strangerToken, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("stranger read: %d", rec.Code)
	}
}

func TestChatListVisibility(t *testing.T) {
	a := newAPI(t)
	_, ownerToken := a.signup("owner@mail.com", "owner")
	_, buyerToken := a.signup("buyer@mail.com", "buyer")
	_, strangerToken := a.signup("stranger@mail.com", "stranger")
	_, adminToken := a.signup("admin@gmail.com", "admin")
	p := a.product(ownerToken, "lamp")
	a.startChat(buyerToken, p.ID, "is it available?")

	for name, tc := range map[string]struct {
		token string
		want  int
	}{
		"owner":    {ownerToken, 1},
		"buyer":    {buyerToken, 1},
		"stranger": {strangerToken, 0},
		"admin":    {adminToken, 1},
	} {
		list := decode[models.List[models.Chat]](t, a.do(http.MethodGet, "/chat", tc.token, nil))
		if list.TotalItems != tc.want || len(list.Data) != tc.want {
			t.Errorf("%s sees %d chats, want %d", name, list.TotalItems, tc.want)
		}
	}
	if rec := a.do(http.MethodGet, "/chat", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list: %d", rec.Code)
	}
}

func TestProductLifecycle(t *testing.T) {
	a := newAPI(t)
	owner, ownerToken := a.signup("owner@mail.com", "owner")
	buyer, _ := a.signup("buyer@mail.com", "buyer")
	p := a.product(ownerToken, "lamp")
	if p.Owner == nil || p.Owner.ID != owner.ID {
		t.Fatalf("owner = %+v", p.Owner)
	}

	rec := a.do(http.MethodPut, "/product/"+p.ID, ownerToken, map[string]interface{}{"price": 20, "buyer": buyer.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	got := decode[models.Product](t, rec)
	if got.Price != 20 || got.Buyer == nil || got.Buyer.ID != buyer.ID || got.Owner.ID != owner.ID {
		t.Errorf("updated = %+v", got)
	}

	if rec := a.do(http.MethodPut, "/product/"+p.ID, ownerToken, map[string]interface{}{"buyer": owner.ID}); rec.Code != http.StatusBadRequest {
		t.Errorf("owner as buyer: %d", rec.Code)
	}
	if rec := a.do(http.MethodGet, "/product/name/LA", "", nil); rec.Code != http.StatusOK {
		t.Errorf("prefix search: %d", rec.Code)
	}
}

func TestEnvelopeAndEmptyBodies(t *testing.T) {
	a := newAPI(t)
	for i := 0; i < 7; i++ {
		a.signup(fmt.Sprintf("user%d@mail.com", i), fmt.Sprintf("user %d", i))
	}

	list := decode[models.List[models.User]](t, a.do(http.MethodGet, "/user", "", nil))
	if list.TotalItems != 7 || list.TotalPages != 2 || list.CurrentPage != 1 || len(list.Data) != 5 {
		t.Errorf("default page = %+v", list)
	}
	list = decode[models.List[models.User]](t, a.do(http.MethodGet, "/user?page=2&limit=5", "", nil))
	if len(list.Data) != 2 || list.CurrentPage != 2 {
		t.Errorf("second page = %+v", list)
	}
	for _, query := range []string{"page=0", "limit=101", "page=2&limit=9223372036854775807"} {
		if rec := a.do(http.MethodGet, "/user?"+query, "", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: %d, want 400", query, rec.Code)
		}
	}

	for path, want := range map[string]string{
		"/user/missing":     "{}\n",
		"/product/missing":  "{}\n",
		"/user/name/zzz":    "[]\n",
		"/user/email/zzz":   "[]\n",
		"/product/name/zzz": "[]\n",
	} {
		rec := a.do(http.MethodGet, path, "", nil)
		if rec.Code != http.StatusNotFound || rec.Body.String() != want {
			t.Errorf("%s: %d %q, want 404 %q", path, rec.Code, rec.Body.String(), want)
		}
	}
}

func TestBannerAndFallbacks(t *testing.T) {
	a := newAPI(t)

	if rec := a.do(http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health: %d", rec.Code)
	}

	rec := a.do(http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != routes.Banner {
		t.Errorf("banner: %d %q", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodGet, "/nowhere/at/all", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path: %d", rec.Code)
	}

	rec = a.do(http.MethodOptions, "/user/123", "", nil)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("preflight: %d %v", rec.Code, rec.Header())
	}
}
