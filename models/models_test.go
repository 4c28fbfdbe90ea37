package models

import (
	"errors"
	"math"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/LilVoxy/coursework_market/errs"
)

func TestNewUserValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        NewUser
		wantField string
	}{
		{"ok", NewUser{Email: " Ana@Mail.com ", Password: "12345678", Name: "ana"}, ""},
		{"bad email", NewUser{Email: "not-an-email", Password: "12345678", Name: "ana"}, "email"},
		{"short password", NewUser{Email: "a@b.com", Password: "1234567", Name: "ana"}, "password"},
		{"short name after trim", NewUser{Email: "a@b.com", Password: "12345678", Name: "  ab  "}, "name"},
		{"long name", NewUser{Email: "a@b.com", Password: "12345678", Name: strings.Repeat("x", 23)}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var e *errs.Error
			if !errors.As(err, &e) || e.Kind != errs.KindValidation {
				t.Fatalf("Validate() = %v, want validation error", err)
			}
			if _, ok := e.Fields[tt.wantField]; !ok {
				t.Errorf("fields = %v, want key %q", e.Fields, tt.wantField)
			}
		})
	}
}

func TestNewUserNormalize(t *testing.T) {
	u := NewUser{Email: "  Ana@Mail.COM", Password: "12345678", Name: " ana lópez "}
	if err := u.Validate(); err != nil {
		t.Fatal(err)
	}
	if u.Email != "ana@mail.com" {
		t.Errorf("email = %q", u.Email)
	}
	if u.Name != "ANA LÓPEZ" {
		t.Errorf("name = %q", u.Name)
	}
}

func TestUserUpdateRejectsEmptyName(t *testing.T) {
	empty := "  "
	u := UserUpdate{Name: &empty}
	if err := u.Validate(); !errs.IsValidation(err) {
		t.Fatalf("Validate() = %v, want validation error", err)
	}
}

func TestProductInputValidate(t *testing.T) {
	zero := 0.0
	negative := -1.0
	top, tooBig := 9999999999.99, 1e12
	tests := []struct {
		name    string
		in      ProductInput
		wantErr bool
	}{
		{"free product", ProductInput{Name: "bike", Price: &zero}, false},
		{"missing price", ProductInput{Name: "bike"}, true},
		{"negative price", ProductInput{Name: "bike", Price: &negative}, true},
		{"short description", ProductInput{Name: "bike", Price: &zero, Description: "short"}, true},
		{"bad buyer id", ProductInput{Name: "bike", Price: &zero, BuyerID: strPtr("nope")}, true},
		{"price at column limit", ProductInput{Name: "bike", Price: &top}, false},
		{"price over column limit", ProductInput{Name: "bike", Price: &tooBig}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.IsValidation(err) {
				t.Errorf("want validation kind, got %v", errs.KindOf(err))
			}
		})
	}
}

func TestProductNameNormalized(t *testing.T) {
	price := 10.0
	p := ProductInput{Name: "  old bike ", Price: &price}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Name != "OLD BIKE" {
		t.Errorf("name = %q, want %q", p.Name, "OLD BIKE")
	}
}

func TestProductUpdatePriceLimit(t *testing.T) {
	tooBig := 1e12
	upd := ProductUpdate{Price: &tooBig}
	err := upd.Validate()
	if !errs.IsValidation(err) {
		t.Fatalf("Validate() = %v, want validation error", err)
	}
	var e *errs.Error
	if !errors.As(err, &e) || e.Fields["price"] == "" {
		t.Errorf("price field not reported: %v", err)
	}
}

func TestNewMessageLength(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"trimmed too short", "  hi  ", true},
		{"min", "hey", false},
		{"max", strings.Repeat("a", 250), false},
		{"too long", strings.Repeat("a", 251), true},
		{"multibyte counts runes", strings.Repeat("ñ", 250), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage("c", "s", "r", tt.body, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (msg.ID == "" || msg.Body != strings.TrimSpace(tt.body)) {
				t.Errorf("unexpected message %+v", msg)
			}
		})
	}
}

func TestChatCounterpart(t *testing.T) {
	c := Chat{ParticipantAID: "buyer", ParticipantBID: "seller"}
	if other, ok := c.Counterpart("buyer"); !ok || other != "seller" {
		t.Errorf("Counterpart(buyer) = %q, %v", other, ok)
	}
	if other, ok := c.Counterpart("seller"); !ok || other != "buyer" {
		t.Errorf("Counterpart(seller) = %q, %v", other, ok)
	}
	if _, ok := c.Counterpart("stranger"); ok {
		t.Error("Counterpart(stranger) should fail")
	}
	if c.HasParticipant("") {
		t.Error("empty id must not be a participant")
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query   string
		want    Page
		wantErr bool
	}{
		{"", Page{1, 10}, false},
		{"page=3&limit=5", Page{3, 5}, false},
		{"page=0", Page{}, true},
		{"limit=-2", Page{}, true},
		{"page=abc", Page{}, true},
		{"limit=100", Page{1, 100}, false},
		{"limit=101", Page{}, true},
		{"page=2&limit=9223372036854775807", Page{}, true},
		{"page=9223372036854775807&limit=2", Page{}, true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParsePage(q, 10)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePage(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePage(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestNewListPages(t *testing.T) {
	l := NewList[int](nil, 11, Page{Number: 2, Limit: 5})
	if l.TotalPages != 3 || l.CurrentPage != 2 || l.TotalItems != 11 {
		t.Errorf("unexpected envelope %+v", l)
	}
	if l.Data == nil {
		t.Error("data must serialize as an empty array")
	}

	for _, tc := range []struct {
		total, limit, want int
	}{
		{0, 5, 0},
		{10, 5, 2},
		{5, math.MaxInt, 1},
		{math.MaxInt, 2, math.MaxInt/2 + 1},
	} {
		if got := NewList[int](nil, tc.total, Page{Number: 1, Limit: tc.limit}).TotalPages; got != tc.want {
			t.Errorf("NewList(total %d, limit %d).TotalPages = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

func strPtr(s string) *string { return &s }
