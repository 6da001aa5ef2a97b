// Package substrate assembles the sequential_gathering level into the
// declarative document the simulation engine instantiates: map, legend,
// prefab templates, scene and one avatar per player.
package substrate

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"substrates.ai/internal/sim/asciimap"
	"substrates.ai/internal/sim/palette"
	"substrates.ai/internal/sim/tuning"
)

var (
	ErrNoPlayers      = errors.New("substrate: at least one player is required")
	ErrTooManyPlayers = errors.New("substrate: too many players")
	ErrUnknownRole    = errors.New("unknown role")
)

// Document is the engine-facing level definition.
type Document struct {
	LevelName      string `json:"levelName"`
	LevelDirectory string `json:"levelDirectory"`
	NumPlayers     int    `json:"numPlayers"`
	// Upper bound only; episodes normally end stochastically in the scene.
	MaxEpisodeLengthFrames int        `json:"maxEpisodeLengthFrames"`
	SpriteSize             int        `json:"spriteSize"`
	Topology               string     `json:"topology"`
	Simulation             Simulation `json:"simulation"`
}

type Simulation struct {
	Map           string                `json:"map"`
	GameObjects   []GameObject          `json:"gameObjects"`
	Scene         GameObject            `json:"scene"`
	Prefabs       map[string]GameObject `json:"prefabs"`
	CharPrefabMap asciimap.Legend       `json:"charPrefabMap"`
}

// Assembler builds documents. The self color is reserved from the color
// list once, when the Assembler is created; builds only read the pool.
type Assembler struct {
	settings tuning.Settings
	self     TargetSprite
	pool     palette.Pool
	spawns   int
}

// NewAssembler reserves the self color out of colors and checks that the
// level map, legend and prefab registry agree.
func NewAssembler(settings tuning.Settings, colors palette.Pool) (*Assembler, error) {
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	selfColor, rest, err := palette.Reserve(colors)
	if err != nil {
		return nil, fmt.Errorf("self sprite: %w", err)
	}
	legend := CharPrefabMap()
	if err := asciimap.CheckLegend(levelGrid, legend); err != nil {
		return nil, err
	}
	if err := asciimap.CheckPrefabs(legend, PrefabNames()); err != nil {
		return nil, err
	}
	placements, err := asciimap.Compile(levelGrid, legend)
	if err != nil {
		return nil, err
	}
	return &Assembler{
		settings: settings,
		self:     NewTargetSprite(selfColor),
		pool:     rest,
		spawns:   asciimap.CountPrefab(placements, PrefabSpawnPoint),
	}, nil
}

var defaultAssembler = sync.OnceValues(func() (*Assembler, error) {
	return NewAssembler(tuning.Defaults(), palette.HumanReadable())
})

// Default returns the process-wide assembler over the default settings and
// the human-readable colors.
func Default() (*Assembler, error) { return defaultAssembler() }

// Build assembles a document with the default assembler.
func Build(roles []string, cfg Config) (Document, error) {
	a, err := Default()
	if err != nil {
		return Document{}, err
	}
	return a.Build(roles, cfg)
}

func (a *Assembler) Settings() tuning.Settings { return a.settings }
func (a *Assembler) Self() TargetSprite        { return a.self }

// Pool returns a copy of the peer color pool.
func (a *Assembler) Pool() palette.Pool { return append(palette.Pool(nil), a.pool...) }

// MaxPlayers is the largest player count a build accepts: every player needs
// a distinct peer color and a spawn point.
func (a *Assembler) MaxPlayers() int {
	if a.spawns < len(a.pool) {
		return a.spawns
	}
	return len(a.pool)
}

// Build assembles the document for len(roles) players. Role contents and
// cfg do not influence the result.
func (a *Assembler) Build(roles []string, _ Config) (Document, error) {
	n := len(roles)
	if n == 0 {
		return Document{}, ErrNoPlayers
	}
	if n > a.MaxPlayers() {
		if n > len(a.pool) {
			return Document{}, fmt.Errorf("%w: %d players: %w (%d peer colors)", ErrTooManyPlayers, n, palette.ErrPoolExhausted, len(a.pool))
		}
		return Document{}, fmt.Errorf("%w: %d players, %d spawn points", ErrTooManyPlayers, n, a.spawns)
	}
	avatars, err := newAvatars(n, a.self, a.pool, a.settings.AvatarView)
	if err != nil {
		return Document{}, err
	}
	return Document{
		LevelName:              a.settings.LevelName,
		LevelDirectory:         a.settings.LevelDirectory,
		NumPlayers:             n,
		MaxEpisodeLengthFrames: a.settings.MaxEpisodeLengthFrames,
		SpriteSize:             a.settings.SpriteSize,
		Topology:               a.settings.Topology,
		Simulation: Simulation{
			Map:           AsciiMap,
			GameObjects:   avatars,
			Scene:         CreateScene(a.settings.EpisodeEnding),
			Prefabs:       CreatePrefabs(),
			CharPrefabMap: CharPrefabMap(),
		},
	}, nil
}

// CheckDocument verifies the cross references inside a decoded document:
// every map character has a legend entry naming a known prefab, there is
// one avatar per player and enough spawn points for them.
func CheckDocument(doc Document) error {
	g, err := asciimap.Parse(doc.Simulation.Map)
	if err != nil {
		return fmt.Errorf("map: %w", err)
	}
	legend := doc.Simulation.CharPrefabMap
	if err := asciimap.CheckLegend(g, legend); err != nil {
		return err
	}
	known := make([]string, 0, len(doc.Simulation.Prefabs))
	for name := range doc.Simulation.Prefabs {
		known = append(known, name)
	}
	sort.Strings(known)
	if err := asciimap.CheckPrefabs(legend, known); err != nil {
		return err
	}
	if got := len(doc.Simulation.GameObjects); got != doc.NumPlayers {
		return fmt.Errorf("numPlayers=%d but %d avatars", doc.NumPlayers, got)
	}
	placements, err := asciimap.Compile(g, legend)
	if err != nil {
		return err
	}
	if spawns := asciimap.CountPrefab(placements, PrefabSpawnPoint); spawns < doc.NumPlayers {
		return fmt.Errorf("%w: %d players, %d spawn points", ErrTooManyPlayers, doc.NumPlayers, spawns)
	}
	return nil
}
