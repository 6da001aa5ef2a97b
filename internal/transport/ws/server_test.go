package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"substrates.ai/internal/builds"
	"substrates.ai/internal/protocol"
	"substrates.ai/internal/sim/catalogs"
)

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	svc, err := builds.New(builds.Options{})
	if err != nil {
		t.Fatalf("builds: %v", err)
	}
	ts := httptest.NewServer(NewServer(svc, nil).Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv(t *testing.T, conn *websocket.Conn) (protocol.BaseMessage, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return base, msg
}

func hello(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"})
	base, msg := recv(t, conn)
	if base.Type != protocol.TypeWelcome {
		t.Fatalf("type=%s want WELCOME", base.Type)
	}
	var w protocol.WelcomeMsg
	if err := json.Unmarshal(msg, &w); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	return w
}

func TestServer_HelloWelcome(t *testing.T) {
	conn := dial(t)
	w := hello(t, conn)
	if w.SessionID == "" || w.LevelName != "sequential_gathering" {
		t.Fatalf("welcome=%+v", w)
	}
	if w.MaxPlayers != 19 {
		t.Fatalf("max_players=%d want 19", w.MaxPlayers)
	}
	static, err := catalogs.Static()
	if err != nil {
		t.Fatalf("static digests: %v", err)
	}
	if w.Digests.Map != static.Map {
		t.Fatalf("map digest mismatch")
	}
	if len(w.DefaultPlayerRoles) != 2 {
		t.Fatalf("default roles=%v", w.DefaultPlayerRoles)
	}
}

func TestServer_BuildSubstrate(t *testing.T) {
	conn := dial(t)
	hello(t, conn)

	send(t, conn, protocol.BuildMsg{Type: protocol.TypeBuild, ProtocolVersion: protocol.Version, RequestID: "r1", Roles: []string{"default", "default", "default"}})
	base, msg := recv(t, conn)
	if base.Type != protocol.TypeSubstrate {
		t.Fatalf("type=%s msg=%s", base.Type, msg)
	}
	var sub protocol.SubstrateMsg
	if err := json.Unmarshal(msg, &sub); err != nil {
		t.Fatalf("substrate: %v", err)
	}
	if sub.RequestID != "r1" || sub.BuildID == "" {
		t.Fatalf("request_id=%q build_id=%q", sub.RequestID, sub.BuildID)
	}
	if sub.Document.NumPlayers != 3 || len(sub.Document.Simulation.GameObjects) != 3 {
		t.Fatalf("players=%d avatars=%d", sub.Document.NumPlayers, len(sub.Document.Simulation.GameObjects))
	}
	if err := protocol.ValidateDocument(sub.Document); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestServer_BuildErrors(t *testing.T) {
	conn := dial(t)
	hello(t, conn)

	cases := []struct {
		msg  any
		code string
	}{
		{protocol.BuildMsg{Type: protocol.TypeBuild, ProtocolVersion: protocol.Version, RequestID: "a"}, protocol.ErrNoPlayers},
		{protocol.BuildMsg{Type: protocol.TypeBuild, ProtocolVersion: protocol.Version, RequestID: "b", Roles: builds.DefaultRoles(40)}, protocol.ErrTooManyPlayers},
		{protocol.BuildMsg{Type: protocol.TypeBuild, ProtocolVersion: "0.1", RequestID: "c", Roles: []string{"default"}}, protocol.ErrProtoVersion},
		{protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version}, protocol.ErrProtoBadRequest},
	}
	for i, c := range cases {
		send(t, conn, c.msg)
		base, msg := recv(t, conn)
		if base.Type != protocol.TypeError {
			t.Fatalf("case %d: type=%s", i, base.Type)
		}
		var e protocol.ErrorMsg
		if err := json.Unmarshal(msg, &e); err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if e.Code != c.code {
			t.Fatalf("case %d: code=%s want %s (%s)", i, e.Code, c.code, e.Message)
		}
	}
}

func TestServer_RejectsMissingHello(t *testing.T) {
	conn := dial(t)
	send(t, conn, protocol.BuildMsg{Type: protocol.TypeBuild, ProtocolVersion: protocol.Version, Roles: []string{"default"}})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close after non-HELLO first message")
	}
}

func TestServer_ShutdownClosesSessions(t *testing.T) {
	svc, err := builds.New(builds.Options{})
	if err != nil {
		t.Fatalf("builds: %v", err)
	}
	srv := NewServer(svc, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	hello(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected session closed after shutdown")
	}
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatalf("expected new sessions rejected after shutdown")
	}
}
