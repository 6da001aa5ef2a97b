package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s != Defaults() {
		t.Fatalf("settings=%+v want defaults", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_OverridesKeepUnsetDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settings.yaml")
	yml := `
max_episode_length_frames: 2000
topology: torus
episode_ending:
  probability_termination_per_interval: 0.5
avatar_view:
  forward: 7
`
	if err := os.WriteFile(p, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.MaxEpisodeLengthFrames != 2000 {
		t.Fatalf("max frames=%d want 2000", s.MaxEpisodeLengthFrames)
	}
	if s.Topology != TopologyTorus {
		t.Fatalf("topology=%q want TORUS", s.Topology)
	}
	if s.EpisodeEnding.ProbabilityTerminationPerInterval != 0.5 || s.EpisodeEnding.IntervalLength != 100 {
		t.Fatalf("episode ending=%+v", s.EpisodeEnding)
	}
	if s.AvatarView.Forward != 7 || s.AvatarView.Left != 5 {
		t.Fatalf("view=%+v", s.AvatarView)
	}
	if s.LevelName != "sequential_gathering" {
		t.Fatalf("level=%q", s.LevelName)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"topology":    "topology: sphere\n",
		"sprite":      "sprite_size: 0\n",
		"probability": "episode_ending:\n  probability_termination_per_interval: 1.5\n",
		"minimum":     "max_episode_length_frames: 10\n",
		"yaml":        "level_name: [\n",
	}
	for name, yml := range cases {
		p := filepath.Join(t.TempDir(), "settings.yaml")
		if err := os.WriteFile(p, []byte(yml), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, err := Load(p)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.HasPrefix(err.Error(), "settings.yaml:") {
			t.Fatalf("%s: err=%v want settings.yaml prefix", name, err)
		}
	}
}
