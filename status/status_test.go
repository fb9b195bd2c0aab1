package status

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestBroadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	defer a.Close()
	defer b.Close()
	waitFor(t, "clients", func() bool { return hub.Clients() == 2 })

	hub.Info("tree %s spawned", "Gorgeous Swan")
	for _, conn := range []*websocket.Conn{a, b} {
		m := readMessage(t, conn)
		if m.Type != INFO || m.Message != "tree Gorgeous Swan spawned" {
			t.Errorf("unexpected message %+v", m)
		}
	}

	hub.Publish("node_spawned", map[string]int{"depth": 2})
	m := readMessage(t, a)
	if m.Type != EVENT || m.Message != "node_spawned" {
		t.Fatalf("unexpected event %+v", m)
	}
	if data, ok := m.Data.(map[string]interface{}); !ok || data["depth"] != float64(2) {
		t.Errorf("event payload %#v", m.Data)
	}
}

func TestLastMessageReplay(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.Progress(0.5, "growing")
	waitFor(t, "last message", func() bool { return hub.Last() != nil })

	conn := dial(t, srv)
	defer conn.Close()
	m := readMessage(t, conn)
	if m.Type != PROGRESS || m.Progress != 0.5 || m.Message != "growing" {
		t.Errorf("replayed %+v", m)
	}
}

func TestProgressSanitized(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	var zero float32
	hub.Progress(zero/zero, "nan")
	waitFor(t, "last message", func() bool { return hub.Last() != nil })
	var m Message
	if err := json.Unmarshal(hub.Last(), &m); err != nil {
		t.Fatal(err)
	}
	if m.Progress != 0 {
		t.Errorf("progress %v", m.Progress)
	}
}

func TestCloseDisconnects(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitFor(t, "client", func() bool { return hub.Clients() == 1 })

	hub.Close()
	hub.Close()
	waitFor(t, "disconnect", func() bool { return hub.Clients() == 0 })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection still open after Close")
	}
	hub.Error("after close")
}
