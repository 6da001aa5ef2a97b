package catalogs

import (
	"testing"

	"substrates.ai/internal/sim/substrate"
)

func build(t *testing.T, n int) substrate.Document {
	t.Helper()
	roles := make([]string, n)
	for i := range roles {
		roles[i] = substrate.DefaultRole
	}
	doc, err := substrate.Build(roles, substrate.GetConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return doc
}

func TestDigest_StableAcrossBuilds(t *testing.T) {
	a, err := Digest(build(t, 2))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	b, err := Digest(build(t, 2))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if a.Document != b.Document || a.Avatars != b.Avatars {
		t.Fatalf("digests differ for equal documents: %+v vs %+v", a, b)
	}
	if len(a.Document) != 64 {
		t.Fatalf("digest length=%d want 64", len(a.Document))
	}
}

func TestDigest_PlayerCountOnlyChangesAvatars(t *testing.T) {
	two, err := Digest(build(t, 2))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	three, err := Digest(build(t, 3))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if two.Avatars == three.Avatars || two.Document == three.Document {
		t.Fatalf("expected avatar/document digests to change")
	}
	if two.Map != three.Map || two.Prefabs != three.Prefabs || two.Legend != three.Legend || two.Scene != three.Scene {
		t.Fatalf("static sections changed with player count")
	}
}

func TestStatic_MatchesBuiltDocument(t *testing.T) {
	d, err := Digest(build(t, 1))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	s, err := Static()
	if err != nil {
		t.Fatalf("static: %v", err)
	}
	empty := sha256Hex(nil)
	if s.Prefabs == empty || s.Legend == empty {
		t.Fatalf("static digests hash empty input: %+v", s)
	}
	if s.Map != d.Map || s.Prefabs != d.Prefabs || s.Legend != d.Legend {
		t.Fatalf("static=%+v built=%+v", s, d)
	}
	if len(s.PrefabNames) != 12 {
		t.Fatalf("prefab names=%v", s.PrefabNames)
	}
}
