package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"substrates.ai/internal/builds"
	"substrates.ai/internal/persistence/indexdb"
	"substrates.ai/internal/protocol"
	"substrates.ai/internal/sim/substrate"
)

func newTestMux(t *testing.T) (*http.ServeMux, *indexdb.SQLiteIndex) {
	t.Helper()
	idx, err := indexdb.OpenSQLite(filepath.Join(t.TempDir(), "builds.sqlite"))
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	svc, err := builds.New(builds.Options{Index: idx})
	if err != nil {
		t.Fatalf("builds: %v", err)
	}
	mux, _ := buildMux(svc, idx, nil, log.New(io.Discard, "", 0), true)
	return mux, idx
}

func get(mux *http.ServeMux, target, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestMux_Substrate(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := get(mux, "/v1/substrate?players=4", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var doc substrate.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.NumPlayers != 4 || len(doc.Simulation.GameObjects) != 4 {
		t.Fatalf("players=%d avatars=%d", doc.NumPlayers, len(doc.Simulation.GameObjects))
	}
	if rec.Header().Get("X-Build-Id") == "" || rec.Header().Get("ETag") == "" {
		t.Fatalf("missing build headers: %v", rec.Header())
	}
	if err := protocol.ValidateDocumentJSON(rec.Body.Bytes()); err != nil {
		t.Fatalf("schema: %v", err)
	}

	rec = get(mux, "/v1/substrate?roles=default,,x", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("roles status=%d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil || doc.NumPlayers != 3 {
		t.Fatalf("roles players=%d err=%v", doc.NumPlayers, err)
	}

	rec = get(mux, "/v1/substrate", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil || doc.NumPlayers != 2 {
		t.Fatalf("default players=%d err=%v", doc.NumPlayers, err)
	}
}

func TestMux_SubstrateErrors(t *testing.T) {
	mux, _ := newTestMux(t)
	cases := []struct {
		target string
		code   string
	}{
		{"/v1/substrate?players=0", protocol.ErrNoPlayers},
		{"/v1/substrate?players=100", protocol.ErrTooManyPlayers},
		{"/v1/substrate?players=100000000", protocol.ErrTooManyPlayers},
		{"/v1/substrate?players=two", protocol.ErrBadRequest},
	}
	for _, c := range cases {
		rec := get(mux, c.target, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", c.target, rec.Code)
		}
		var e protocol.ErrorMsg
		if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
			t.Fatalf("%s: %v", c.target, err)
		}
		if e.Code != c.code {
			t.Fatalf("%s: code=%s want %s", c.target, e.Code, c.code)
		}
	}
}

func TestMux_ConfigAndMetrics(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := get(mux, "/v1/config", "")
	var cfg substrate.Config
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if len(cfg.ActionSet) != 7 || cfg.ValidRoles[0] != substrate.DefaultRole {
		t.Fatalf("config=%+v", cfg)
	}

	_ = get(mux, "/v1/substrate?players=2", "")
	body := get(mux, "/metrics", "").Body.String()
	if !strings.Contains(body, `substrate_builds_total{result="ok"} 1`) {
		t.Fatalf("metrics missing ok count:\n%s", body)
	}
	if !strings.Contains(body, "substrate_max_players 19") {
		t.Fatalf("metrics missing max players:\n%s", body)
	}
}

func TestMux_AdminBuildsLoopbackOnly(t *testing.T) {
	mux, _ := newTestMux(t)
	_ = get(mux, "/v1/substrate?players=2", "")

	if rec := get(mux, "/admin/v1/builds", "8.8.8.8:1234"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec := get(mux, "/admin/v1/builds?limit=5", "127.0.0.1:1234")
	if rec.Code != http.StatusOK {
		t.Fatalf("loopback status=%d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["builds"]; !ok {
		t.Fatalf("missing builds key: %s", rec.Body.String())
	}
}

func TestRolesFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/substrate?roles=a,%20b", nil)
	roles, err := rolesFromQuery(req, 19)
	if err != nil || len(roles) != 2 || roles[1] != "b" {
		t.Fatalf("roles=%v err=%v", roles, err)
	}
	req = httptest.NewRequest(http.MethodGet, "/v1/substrate?players=-1", nil)
	if _, err := rolesFromQuery(req, 19); err == nil {
		t.Fatalf("expected error for negative players")
	}
	req = httptest.NewRequest(http.MethodGet, "/v1/substrate?players=100000000", nil)
	if roles, err := rolesFromQuery(req, 19); !errors.Is(err, substrate.ErrTooManyPlayers) || roles != nil {
		t.Fatalf("huge players: roles=%d err=%v", len(roles), err)
	}
	req = httptest.NewRequest(http.MethodGet, "/v1/substrate?players=19", nil)
	if roles, err := rolesFromQuery(req, 19); err != nil || len(roles) != 19 {
		t.Fatalf("max players: roles=%d err=%v", len(roles), err)
	}
}
