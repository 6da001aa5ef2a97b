package shapes

import "testing"

func TestShapes_AreEightByEight(t *testing.T) {
	all := map[string]string{
		"CuteAvatar":         CuteAvatar,
		"Wall":               Wall,
		"GrainyFloor":        GrainyFloor,
		"GrassStraight":      GrassStraight,
		"GrassStraightNEdge": GrassStraightNEdge,
		"ShadowW":            ShadowW,
		"ShadowE":            ShadowE,
		"ShadowN":            ShadowN,
		"Water1":             Water1,
		"Water2":             Water2,
		"Water3":             Water3,
		"Water4":             Water4,
		"Diamond":            Diamond,
	}
	for name, s := range all {
		w, h, err := Size(s)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if w != 8 || h != 8 {
			t.Fatalf("%s: size=%dx%d want 8x8", name, w, h)
		}
	}
}

func TestSize_Ragged(t *testing.T) {
	if _, _, err := Size("\nab\nabc\n"); err == nil {
		t.Fatalf("expected error for ragged shape")
	}
	if _, _, err := Size("\n\n"); err == nil {
		t.Fatalf("expected error for empty shape")
	}
}

func TestGlyphs(t *testing.T) {
	g := Glyphs(ShadowN)
	if len(g) != 3 || !g["~"] || !g["="] || !g["x"] {
		t.Fatalf("glyphs=%v", g)
	}
}
