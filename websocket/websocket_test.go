package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	hub "github.com/LilVoxy/coursework_market/websocket"
	"github.com/gorilla/websocket"
)

type tokens map[string]string

func (t tokens) IdentifyToken(_ context.Context, token string) (*models.User, error) {
	id, ok := t[token]
	if !ok {
		return nil, errs.Unauthorized("unknown token")
	}
	return &models.User{ID: id}, nil
}

func startHub(t *testing.T) (*hub.Manager, string) {
	t.Helper()
	m := hub.NewManager(tokens{"tok-a": "a", "tok-b": "b"}, "*")
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(m.HandleConnections))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return m, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, m *hub.Manager, url, token, userID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", token, err)
	}
	t.Cleanup(func() { conn.Close() })
	waitFor(t, func() bool { return m.Online(userID) })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

// readEvent пропускает кадры других типов
func readEvent(t *testing.T, conn *websocket.Conn, typ string) hub.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		var e hub.Event
		if err := json.Unmarshal(data, &e); err != nil {
			t.Fatalf("bad frame %q: %v", data, err)
		}
		if e.Type == typ {
			return e
		}
	}
}

func TestRejectsBadToken(t *testing.T) {
	_, url := startHub(t)

	for _, suffix := range []string{"", "?token=nope"} {
		_, resp, err := websocket.DefaultDialer.Dial(url+suffix, nil)
		if err != websocket.ErrBadHandshake {
			t.Fatalf("%q: err = %v, want bad handshake", suffix, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%q: status = %d, want 401", suffix, resp.StatusCode)
		}
	}
}

func TestBearerHeaderAccepted(t *testing.T) {
	m, url := startHub(t)
	header := http.Header{"Authorization": []string{"Bearer tok-a"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return m.Online("a") })
}

func TestQueryTokenPreferredOverHeader(t *testing.T) {
	m, url := startHub(t)
	header := http.Header{"Authorization": []string{"Bearer tok-a"}}
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=tok-b", header)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return m.Online("b") })
	if m.Online("a") {
		t.Error("header token used instead of query token")
	}
}

func TestNotifyReachesBothParticipants(t *testing.T) {
	m, url := startHub(t)
	a := dial(t, m, url, "tok-a", "a")
	b := dial(t, m, url, "tok-b", "b")

	chat := &models.Chat{ID: "chat-1", ParticipantAID: "a", ParticipantBID: "b"}
	msg := models.Message{ID: "m1", ChatID: chat.ID, SenderID: "a", ReceiverID: "b", Body: "hello there"}
	m.NotifyMessage(chat, msg)

	for name, conn := range map[string]*websocket.Conn{"sender": a, "receiver": b} {
		e := readEvent(t, conn, hub.EventMessage)
		if e.ChatID != chat.ID || e.Message == nil || e.Message.Body != "hello there" {
			t.Errorf("%s got %+v", name, e)
		}
	}
}

func TestPingPong(t *testing.T) {
	m, url := startHub(t)
	a := dial(t, m, url, "tok-a", "a")

	if err := a.WriteJSON(hub.Event{Type: hub.EventPing}); err != nil {
		t.Fatal(err)
	}
	readEvent(t, a, hub.EventPong)
}

func TestPresenceBroadcast(t *testing.T) {
	m, url := startHub(t)
	a := dial(t, m, url, "tok-a", "a")
	b := dial(t, m, url, "tok-b", "b")

	if e := readEvent(t, a, hub.EventStatus); e.UserID != "b" || e.Status != "online" {
		t.Errorf("online event = %+v", e)
	}
	if e := readEvent(t, b, hub.EventStatus); e.UserID != "a" || e.Status != "online" {
		t.Errorf("snapshot event = %+v", e)
	}

	b.Close()
	if e := readEvent(t, a, hub.EventStatus); e.UserID != "b" || e.Status != "offline" {
		t.Errorf("offline event = %+v", e)
	}
	waitFor(t, func() bool { return !m.Online("b") })
	if st, ok := m.Status("b"); !ok || st.Online || st.LastSeen.IsZero() {
		t.Errorf("status after disconnect = %+v, %v", st, ok)
	}
}

func TestSecondConnectionReplacesFirst(t *testing.T) {
	m, url := startHub(t)
	first := dial(t, m, url, "tok-a", "a")
	second := dial(t, m, url, "tok-a", "a")

	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	m.NotifyMessage(&models.Chat{ID: "c"}, models.Message{ID: "m", ChatID: "c", SenderID: "a", ReceiverID: "b", Body: "ping"})
	readEvent(t, second, hub.EventMessage)
	if !m.Online("a") {
		t.Error("replacement marked user offline")
	}
}
