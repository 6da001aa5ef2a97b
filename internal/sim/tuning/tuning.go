package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	TopologyBounded = "BOUNDED"
	TopologyTorus   = "TORUS"
)

type Settings struct {
	LevelName              string `yaml:"level_name" json:"level_name"`
	LevelDirectory         string `yaml:"level_directory" json:"level_directory"`
	MaxEpisodeLengthFrames int    `yaml:"max_episode_length_frames" json:"max_episode_length_frames"`
	SpriteSize             int    `yaml:"sprite_size" json:"sprite_size"`
	Topology               string `yaml:"topology" json:"topology"`

	EpisodeEnding EpisodeEnding `yaml:"episode_ending" json:"episode_ending"`
	AvatarView    AvatarView    `yaml:"avatar_view" json:"avatar_view"`
}

// EpisodeEnding parameterizes the scene's stochastic episode termination.
type EpisodeEnding struct {
	MinimumFramesPerEpisode           int     `yaml:"minimum_frames_per_episode" json:"minimum_frames_per_episode"`
	IntervalLength                    int     `yaml:"interval_length" json:"interval_length"`
	ProbabilityTerminationPerInterval float64 `yaml:"probability_termination_per_interval" json:"probability_termination_per_interval"`
}

type AvatarView struct {
	Left     int  `yaml:"left" json:"left"`
	Right    int  `yaml:"right" json:"right"`
	Forward  int  `yaml:"forward" json:"forward"`
	Backward int  `yaml:"backward" json:"backward"`
	Centered bool `yaml:"centered" json:"centered"`
}

func Defaults() Settings {
	return Settings{
		LevelName:              "sequential_gathering",
		LevelDirectory:         "meltingpot/lua/levels",
		MaxEpisodeLengthFrames: 5000,
		SpriteSize:             1,
		Topology:               TopologyBounded,
		EpisodeEnding: EpisodeEnding{
			MinimumFramesPerEpisode: 1000,
			// Matches the learner unroll length.
			IntervalLength:                    100,
			ProbabilityTerminationPerInterval: 0.2,
		},
		AvatarView: AvatarView{
			Left:     5,
			Right:    5,
			Forward:  9,
			Backward: 1,
			Centered: false,
		},
	}
}

// Load reads settings from path on top of Defaults. An empty path returns
// the defaults.
func Load(path string) (Settings, error) {
	s := Defaults()
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("settings.yaml: %w", err)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("settings.yaml: %w", err)
	}
	return s, nil
}

func (s *Settings) Normalize() {
	if s == nil {
		return
	}
	s.LevelName = strings.TrimSpace(s.LevelName)
	s.LevelDirectory = strings.TrimSpace(s.LevelDirectory)
	s.Topology = strings.ToUpper(strings.TrimSpace(s.Topology))
	if s.Topology == "" {
		s.Topology = TopologyBounded
	}
}

func (s Settings) Validate() error {
	if s.LevelName == "" {
		return fmt.Errorf("level_name must not be empty")
	}
	if s.MaxEpisodeLengthFrames <= 0 {
		return fmt.Errorf("max_episode_length_frames must be > 0")
	}
	if s.SpriteSize <= 0 {
		return fmt.Errorf("sprite_size must be > 0")
	}
	switch s.Topology {
	case TopologyBounded, TopologyTorus:
	default:
		return fmt.Errorf("topology must be %s or %s, got %q", TopologyBounded, TopologyTorus, s.Topology)
	}
	e := s.EpisodeEnding
	if e.MinimumFramesPerEpisode < 0 {
		return fmt.Errorf("episode_ending.minimum_frames_per_episode must be >= 0")
	}
	if e.MinimumFramesPerEpisode > s.MaxEpisodeLengthFrames {
		return fmt.Errorf("episode_ending.minimum_frames_per_episode exceeds max_episode_length_frames")
	}
	if e.IntervalLength <= 0 {
		return fmt.Errorf("episode_ending.interval_length must be > 0")
	}
	if e.ProbabilityTerminationPerInterval < 0 || e.ProbabilityTerminationPerInterval > 1 {
		return fmt.Errorf("episode_ending.probability_termination_per_interval must be in [0,1]")
	}
	v := s.AvatarView
	if v.Left < 0 || v.Right < 0 || v.Forward < 0 || v.Backward < 0 {
		return fmt.Errorf("avatar_view extents must be >= 0")
	}
	return nil
}
