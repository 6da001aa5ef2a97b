package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"substrates.ai/internal/builds"
	"substrates.ai/internal/sim/substrate"
	"substrates.ai/internal/transport/ws"
)

func TestBuildCmd_Stdout(t *testing.T) {
	var out bytes.Buffer
	if err := buildCmd([]string{"-players", "3", "-pretty=false"}, &out); err != nil {
		t.Fatalf("build: %v", err)
	}
	var doc substrate.Document
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.NumPlayers != 3 {
		t.Fatalf("players=%d want 3", doc.NumPlayers)
	}
}

func TestBuildValidateShowList(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "out", "doc.json")
	archiveDir := filepath.Join(dir, "archive")

	var out bytes.Buffer
	if err := buildCmd([]string{"-roles", "default,default", "-out", docPath, "-archive", archiveDir, "-data", dir}, &out); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out.String(), "archived ") {
		t.Fatalf("output=%s", out.String())
	}

	out.Reset()
	if err := validateCmd([]string{docPath}, &out); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), "ok (2 players)") {
		t.Fatalf("validate output=%s", out.String())
	}

	out.Reset()
	if err := showCmd([]string{docPath}, &out); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out.String(), "level:      sequential_gathering") {
		t.Fatalf("show output=%s", out.String())
	}

	out.Reset()
	if err := listCmd([]string{"-archive", archiveDir}, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Count(out.String(), "players=2") != 1 {
		t.Fatalf("list output=%s", out.String())
	}

	// The archived copy validates too.
	paths, _ := filepath.Glob(filepath.Join(archiveDir, "sequential_gathering", "*.substrate.json.zst"))
	if len(paths) != 1 {
		t.Fatalf("archived=%v", paths)
	}
	out.Reset()
	if err := validateCmd([]string{paths[0]}, &out); err != nil {
		t.Fatalf("validate archive: %v", err)
	}
}

func TestValidateCmd_RejectsBrokenDocument(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(p, []byte(`{"levelName":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := validateCmd([]string{p}, &out); err == nil {
		t.Fatalf("expected schema error")
	}
}

func TestFetchCmd(t *testing.T) {
	svc, err := builds.New(builds.Options{})
	if err != nil {
		t.Fatalf("builds: %v", err)
	}
	ts := httptest.NewServer(ws.NewServer(svc, nil).Handler())
	defer ts.Close()

	var out bytes.Buffer
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	if err := fetchCmd([]string{"-url", url, "-players", "5"}, &out); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var doc substrate.Document
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.NumPlayers != 5 {
		t.Fatalf("players=%d want 5", doc.NumPlayers)
	}

	if err := fetchCmd([]string{"-url", url, "-players", "0"}, &out); err == nil || !strings.Contains(err.Error(), "E_NO_PLAYERS") {
		t.Fatalf("err=%v want E_NO_PLAYERS", err)
	}
}

func TestConfigCmd_SpriteSizeFromSettings(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(p, []byte("sprite_size: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := configCmd([]string{"-settings", p}, &out); err != nil {
		t.Fatalf("config: %v", err)
	}
	var cfg substrate.Config
	if err := json.Unmarshal(out.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	shape := cfg.TimestepSpec.Observation["WORLD.RGB"].Shape
	if len(shape) != 3 || shape[0] != 128 || shape[1] != 240 || shape[2] != 3 {
		t.Fatalf("WORLD.RGB shape=%v want [128 240 3]", shape)
	}
}
