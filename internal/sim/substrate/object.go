package substrate

import (
	"encoding/json"
	"fmt"

	"substrates.ai/internal/sim/palette"
)

// Component kinds understood by the engine.
const (
	KindStateManager                    = "StateManager"
	KindAppearance                      = "Appearance"
	KindTransform                       = "Transform"
	KindBeamBlocker                     = "BeamBlocker"
	KindAnimation                       = "Animation"
	KindPickUp                          = "PickUp"
	KindAvatar                          = "Avatar"
	KindAdditionalSprites               = "AdditionalSprites"
	KindSequentialCollection            = "SequentialCollection"
	KindStochasticIntervalEpisodeEnding = "StochasticIntervalEpisodeEnding"
)

// Render layers, bottom to top.
const (
	LayerLogic         = "logic"
	LayerBackground    = "background"
	LayerLowerPhysical = "lowerPhysical"
	LayerUpperPhysical = "upperPhysical"
	LayerOverlay       = "overlay"
	LayerSuperOverlay  = "superOverlay"
)

const renderASCIIShape = "ascii_shape"

// GameObject is a prefab template, the scene, or an avatar.
type GameObject struct {
	Name       string      `json:"name"`
	Components []Component `json:"components"`
}

// Component returns the first component of the given kind.
func (o GameObject) Component(kind string) (Component, bool) {
	for _, c := range o.Components {
		if c.Kind == kind {
			return c, true
		}
	}
	return Component{}, false
}

// ComponentsOf returns every component of the given kind, in order.
func (o GameObject) ComponentsOf(kind string) []Component {
	var out []Component
	for _, c := range o.Components {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Component is a component kind plus its typed keyword arguments. Kwargs is
// nil for components without arguments (Transform).
type Component struct {
	Kind   string
	Kwargs any
}

type componentJSON struct {
	Component string          `json:"component"`
	Kwargs    json.RawMessage `json:"kwargs,omitempty"`
}

func (c Component) MarshalJSON() ([]byte, error) {
	out := componentJSON{Component: c.Kind}
	if c.Kwargs != nil {
		b, err := json.Marshal(c.Kwargs)
		if err != nil {
			return nil, fmt.Errorf("%s kwargs: %w", c.Kind, err)
		}
		out.Kwargs = b
	}
	return json.Marshal(out)
}

func (c *Component) UnmarshalJSON(b []byte) error {
	var raw componentJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.Kind = raw.Component
	c.Kwargs = nil
	if len(raw.Kwargs) == 0 || string(raw.Kwargs) == "null" {
		return nil
	}
	kw, err := decodeKwargs(raw.Component, raw.Kwargs)
	if err != nil {
		return fmt.Errorf("%s kwargs: %w", raw.Component, err)
	}
	c.Kwargs = kw
	return nil
}

func decodeKwargs(kind string, b json.RawMessage) (any, error) {
	switch kind {
	case KindStateManager:
		return decodeAs[StateManager](b)
	case KindAppearance:
		return decodeAs[Appearance](b)
	case KindBeamBlocker:
		return decodeAs[BeamBlocker](b)
	case KindAnimation:
		return decodeAs[Animation](b)
	case KindPickUp:
		return decodeAs[PickUp](b)
	case KindAvatar:
		return decodeAs[Avatar](b)
	case KindAdditionalSprites:
		return decodeAs[AdditionalSprites](b)
	case KindSequentialCollection:
		return decodeAs[SequentialCollection](b)
	case KindStochasticIntervalEpisodeEnding:
		return decodeAs[StochasticIntervalEpisodeEnding](b)
	default:
		// Unknown kinds pass through untouched.
		return append(json.RawMessage(nil), b...), nil
	}
}

func decodeAs[T any](b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

type StateConfig struct {
	State   string   `json:"state"`
	Layer   string   `json:"layer,omitempty"`
	Sprite  string   `json:"sprite,omitempty"`
	Contact string   `json:"contact,omitempty"`
	Groups  []string `json:"groups,omitempty"`
}

type StateManager struct {
	InitialState string        `json:"initialState"`
	StateConfigs []StateConfig `json:"stateConfigs"`
}

// Appearance lists parallel sprite names, shapes and palettes.
type Appearance struct {
	RenderMode   string            `json:"renderMode"`
	SpriteNames  []string          `json:"spriteNames"`
	SpriteShapes []string          `json:"spriteShapes"`
	Palettes     []palette.Palette `json:"palettes"`
	NoRotates    []bool            `json:"noRotates,omitempty"`
}

type BeamBlocker struct {
	BeamType string `json:"beamType"`
}

type Animation struct {
	States                      []string `json:"states"`
	GameFramesPerAnimationFrame int      `json:"gameFramesPerAnimationFrame"`
	Loop                        bool     `json:"loop"`
	RandomStartFrame            bool     `json:"randomStartFrame"`
	Group                       string   `json:"group"`
}

// PickUp marks a sequential target. Idx is its 1-based place in the
// collection order.
type PickUp struct {
	Idx int `json:"idx"`
}

type AdditionalSprites struct {
	RenderMode         string            `json:"renderMode"`
	CustomSpriteNames  []string          `json:"customSpriteNames"`
	CustomSpriteShapes []string          `json:"customSpriteShapes"`
	CustomPalettes     []palette.Palette `json:"customPalettes"`
	CustomNoRotates    []bool            `json:"customNoRotates"`
}

type ActionRange struct {
	Default int `json:"default"`
	Min     int `json:"min"`
	Max     int `json:"max"`
}

type View struct {
	Left     int  `json:"left"`
	Right    int  `json:"right"`
	Forward  int  `json:"forward"`
	Backward int  `json:"backward"`
	Centered bool `json:"centered"`
}

// ViewerSprites selects the sprite an avatar is drawn with by viewer: Self
// in its own observation, Peer in everyone else's. The engine receives it
// as the one-entry remap {Peer: Self}.
type ViewerSprites struct {
	Self string
	Peer string
}

// For returns the sprite seen by a viewer.
func (v ViewerSprites) For(viewerIsSelf bool) string {
	if viewerIsSelf {
		return v.Self
	}
	return v.Peer
}

func (v ViewerSprites) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{v.Peer: v.Self})
}

func (v *ViewerSprites) UnmarshalJSON(b []byte) error {
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("spriteMap: want exactly one entry, got %d", len(m))
	}
	for peer, self := range m {
		v.Peer, v.Self = peer, self
	}
	return nil
}

type Avatar struct {
	Index       int                    `json:"index"`
	AliveState  string                 `json:"aliveState"`
	WaitState   string                 `json:"waitState"`
	SpawnGroup  string                 `json:"spawnGroup"`
	ActionOrder []string               `json:"actionOrder"`
	ActionSpec  map[string]ActionRange `json:"actionSpec"`
	View        View                   `json:"view"`
	SpriteMap   ViewerSprites          `json:"spriteMap"`
}

// SequentialCollection holds the 1-based PickUp indices in the order they
// must be collected.
type SequentialCollection struct {
	Sequence []int `json:"sequence"`
}

type StochasticIntervalEpisodeEnding struct {
	MinimumFramesPerEpisode           int     `json:"minimumFramesPerEpisode"`
	IntervalLength                    int     `json:"intervalLength"`
	ProbabilityTerminationPerInterval float64 `json:"probabilityTerminationPerInterval"`
}

func transform() Component { return Component{Kind: KindTransform} }
