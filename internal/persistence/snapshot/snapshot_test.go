package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"substrates.ai/internal/sim/substrate"
)

func TestWriteReadDocument(t *testing.T) {
	doc, err := substrate.Build([]string{"default", "default", "default"}, substrate.GetConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	p := filepath.Join(t.TempDir(), "nested", "b1.substrate.json.zst")
	h := Header{BuildID: "b1", LevelName: doc.LevelName, NumPlayers: doc.NumPlayers, Digest: "abc"}
	if err := WriteDocument(p, h, doc); err != nil {
		t.Fatalf("write: %v", err)
	}

	gotH, err := ReadHeader(p)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if gotH.Version != Version || gotH.BuildID != "b1" || gotH.NumPlayers != 3 {
		t.Fatalf("header=%+v", gotH)
	}

	_, got, err := ReadDocument(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDocument_NotZstd(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plain.json")
	if err := os.WriteFile(p, []byte(`{"version":1}`+"\n{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ReadDocument(p); err == nil {
		t.Fatalf("expected error for uncompressed file")
	}
}
