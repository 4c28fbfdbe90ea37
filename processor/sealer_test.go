package processor

import (
	"bytes"
	"strings"
	"testing"
)

func TestSealOpen(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSealer(key)
	if err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"hey", "¿sigue disponible la bici?", strings.Repeat("a", 250)} {
		sealed, err := s.Seal(text)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(sealed, text) {
			t.Errorf("sealed value leaks plaintext: %q", sealed)
		}
		got, err := s.Open(sealed)
		if err != nil {
			t.Fatalf("Open() = %v", err)
		}
		if got != text {
			t.Errorf("Open() = %q, want %q", got, text)
		}
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	key, _ := GenerateKey()
	s, _ := NewSealer(key)
	a, _ := s.Seal("same text")
	b, _ := s.Seal("same text")
	if a == b {
		t.Error("two seals of the same text must differ")
	}
}

func TestOpenRejectsForeignKey(t *testing.T) {
	k1, _ := GenerateKey()
	k2, _ := GenerateKey()
	s1, _ := NewSealer(k1)
	s2, _ := NewSealer(k2)

	sealed, _ := s1.Seal("secret")
	if _, err := s2.Open(sealed); err == nil {
		t.Error("Open() with another key must fail")
	}
	if _, err := s1.Open("AAAA"); err != ErrCiphertextTooShort {
		t.Errorf("Open(short) = %v, want ErrCiphertextTooShort", err)
	}
	if _, err := s1.Open("%%%"); err == nil {
		t.Error("Open(bad base64) must fail")
	}
}

func TestParseKey(t *testing.T) {
	raw := bytes.Repeat([]byte{7}, KeySize)
	tests := map[string]bool{
		string(bytes.Repeat([]byte("k"), KeySize)): true,
		"0707070707070707070707070707070707070707070707070707070707070707": true,
		"BwcHBwcHBwcHBwcHBwcHBwcHBwcHBwcHBwcHBwcHBwc=":                     true,
		"short": false,
	}
	for in, ok := range tests {
		key, err := ParseKey(in)
		if (err == nil) != ok {
			t.Errorf("ParseKey(%q) error = %v, want ok=%v", in, err, ok)
		}
		if ok && len(key) != KeySize {
			t.Errorf("ParseKey(%q) len = %d", in, len(key))
		}
	}
	if key, _ := ParseKey("0707070707070707070707070707070707070707070707070707070707070707"); !bytes.Equal(key, raw) {
		t.Error("hex key decoded incorrectly")
	}
	if _, err := NewSealer([]byte("short")); err == nil {
		t.Error("NewSealer must reject a short key")
	}
}
