package palette

import (
	"errors"
	"testing"
)

func TestReserve_DoesNotMutateInput(t *testing.T) {
	pool := HumanReadable()
	first := pool[0]
	self, rest, err := Reserve(pool)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if self != first {
		t.Fatalf("self=%v want %v", self, first)
	}
	if len(rest) != len(pool)-1 {
		t.Fatalf("rest len=%d want %d", len(rest), len(pool)-1)
	}
	if pool[0] != first {
		t.Fatalf("input pool mutated")
	}
	for i, c := range rest {
		if c == self {
			t.Fatalf("rest[%d] collides with reserved color", i)
		}
	}
}

func TestReserve_Empty(t *testing.T) {
	if _, _, err := Reserve(nil); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("err=%v want ErrPoolExhausted", err)
	}
}

func TestPoolAt_Exhausted(t *testing.T) {
	p := Pool{RGB(1, 2, 3)}
	if _, err := p.At(0); err != nil {
		t.Fatalf("at 0: %v", err)
	}
	if _, err := p.At(1); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("err=%v want ErrPoolExhausted", err)
	}
	if _, err := p.At(-1); err == nil {
		t.Fatalf("expected error for negative index")
	}
}

func TestHumanReadable_Distinct(t *testing.T) {
	seen := map[Color]int{}
	for i, c := range HumanReadable() {
		if j, ok := seen[c]; ok {
			t.Fatalf("color %v repeated at %d and %d", c, j, i)
		}
		seen[c] = i
	}
}

func TestForColor(t *testing.T) {
	p := ForColor(Color{100, 200, 40, 10})
	if p["*"] != (Color{100, 200, 40, 255}) {
		t.Fatalf("base=%v", p["*"])
	}
	if p["#"][1] != 250 {
		t.Fatalf("highlight green=%d want 250", p["#"][1])
	}
	if p["x"] != Transparent {
		t.Fatalf("x=%v want transparent", p["x"])
	}
}
