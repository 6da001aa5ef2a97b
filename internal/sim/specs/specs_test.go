package specs

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"substrates.ai/internal/sim/asciimap"
)

func TestAction(t *testing.T) {
	a := Action(7)
	if a.NumValues != 7 || a.DType != Int64 {
		t.Fatalf("action=%+v", a)
	}
}

func TestWorldRGB(t *testing.T) {
	g := asciimap.MustParse("\nWWW\nW W\n")
	got := WorldRGB(g, 8)
	if diff := cmp.Diff([]int{16, 24, 3}, got.Shape); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
	if got.DType != Uint8 {
		t.Fatalf("dtype=%s", got.DType)
	}
}

func TestObservationSpec_Copy(t *testing.T) {
	a, err := ObservationSpec("RGB")
	if err != nil {
		t.Fatalf("rgb: %v", err)
	}
	a.Shape[0] = 1
	if Observation["RGB"].Shape[0] != 88 {
		t.Fatalf("shared spec mutated")
	}
	if _, err := ObservationSpec("NOPE"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewTimestep(t *testing.T) {
	ts := NewTimestep(map[string]Array{
		"B": Scalar("x"),
		"A": RGB(2, 2, "y"),
	})
	if diff := cmp.Diff([]string{"A", "B"}, ts.ObservationNames()); diff != "" {
		t.Fatalf("names mismatch:\n%s", diff)
	}
	if ts.Observation["B"].Name != "B" {
		t.Fatalf("observation not renamed: %q", ts.Observation["B"].Name)
	}
}
