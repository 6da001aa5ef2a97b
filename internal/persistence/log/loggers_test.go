package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func readEntries(t *testing.T, path string) []BuildLogEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var out []BuildLogEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e BuildLogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestBuildLogger_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	l := NewBuildLogger(dir)
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	l.w.now = func() time.Time { return clock }

	if err := l.WriteBuild(BuildLogEntry{BuildID: "a", Source: "cli", Roles: []string{"default"}, NumPlayers: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.WriteBuild(BuildLogEntry{BuildID: "b", Source: "ws", NumPlayers: 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := l.WriteBuild(BuildLogEntry{Source: "ws", ErrorCode: "E_NO_PLAYERS"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	first := readEntries(t, filepath.Join(dir, "builds", "builds-2026-03-01-10.jsonl.zst"))
	if len(first) != 2 || first[0].BuildID != "a" || first[1].BuildID != "b" {
		t.Fatalf("first hour=%+v", first)
	}
	if first[0].Time == "" {
		t.Fatalf("time not filled")
	}
	second := readEntries(t, filepath.Join(dir, "builds", "builds-2026-03-01-11.jsonl.zst"))
	if len(second) != 1 || second[0].ErrorCode != "E_NO_PLAYERS" {
		t.Fatalf("second hour=%+v", second)
	}
}

func TestBuildLogger_Nil(t *testing.T) {
	var l *BuildLogger
	if err := l.WriteBuild(BuildLogEntry{}); err != nil {
		t.Fatalf("nil write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
