package substrate

import (
	"fmt"

	"substrates.ai/internal/sim/palette"
	"substrates.ai/internal/sim/shapes"
	"substrates.ai/internal/sim/tuning"
)

const (
	waitState       = "playerWait"
	groupPlayers    = "players"
	groupPlayerWait = "playerWaits"
)

// CollectionOrder is the order in which targets (by PickUp idx) must be
// collected. Every avatar carries the same order.
var CollectionOrder = [NumTargets]int{1, 2, 3}

// TargetSprite is how every avatar draws itself in its own view.
type TargetSprite struct {
	Name     string          `json:"name"`
	Shape    string          `json:"shape"`
	Palette  palette.Palette `json:"palette"`
	NoRotate bool            `json:"noRotate"`
}

// NewTargetSprite builds the shared self sprite from a reserved color.
func NewTargetSprite(c palette.Color) TargetSprite {
	return TargetSprite{
		Name:     "Self",
		Shape:    shapes.CuteAvatar,
		Palette:  palette.ForColor(c),
		NoRotate: true,
	}
}

// PeerSprite is the sprite name others see for the avatar with 1-based index.
func PeerSprite(luaIndex int) string { return fmt.Sprintf("Avatar%d", luaIndex) }

// LiveState is the alive state name of the avatar with 1-based index.
func LiveState(luaIndex int) string { return fmt.Sprintf("player%d", luaIndex) }

// CreateAvatarObject builds the avatar for a zero-based player index with
// the default field of view. pool is the peer color pool, already stripped
// of the self color.
func CreateAvatarObject(playerIndex int, self TargetSprite, pool palette.Pool) (GameObject, error) {
	return newAvatar(playerIndex, self, pool, tuning.Defaults().AvatarView)
}

// CreateAvatarObjects builds avatars for player indices 0..n-1.
func CreateAvatarObjects(n int, self TargetSprite, pool palette.Pool) ([]GameObject, error) {
	return newAvatars(n, self, pool, tuning.Defaults().AvatarView)
}

func newAvatars(n int, self TargetSprite, pool palette.Pool, view tuning.AvatarView) ([]GameObject, error) {
	out := make([]GameObject, 0, n)
	for i := 0; i < n; i++ {
		o, err := newAvatar(i, self, pool, view)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func newAvatar(playerIndex int, self TargetSprite, pool palette.Pool, view tuning.AvatarView) (GameObject, error) {
	peerColor, err := pool.At(playerIndex)
	if err != nil {
		return GameObject{}, fmt.Errorf("avatar %d: %w", playerIndex, err)
	}

	// The engine counts players from 1.
	luaIndex := playerIndex + 1
	peer := PeerSprite(luaIndex)
	live := LiveState(luaIndex)

	return GameObject{
		Name: fmt.Sprintf("avatar%d", luaIndex),
		Components: []Component{
			{Kind: KindStateManager, Kwargs: StateManager{
				InitialState: live,
				StateConfigs: []StateConfig{
					{
						State:   live,
						Layer:   LayerSuperOverlay,
						Sprite:  peer,
						Contact: "avatar",
						Groups:  []string{groupPlayers},
					},
					// Zapped-out players wait here until respawn.
					{State: waitState, Groups: []string{groupPlayerWait}},
				},
			}},
			transform(),
			{Kind: KindAppearance, Kwargs: Appearance{
				RenderMode:   renderASCIIShape,
				SpriteNames:  []string{peer},
				SpriteShapes: []string{shapes.CuteAvatar},
				Palettes:     []palette.Palette{palette.ForColor(peerColor)},
				NoRotates:    []bool{true},
			}},
			{Kind: KindAdditionalSprites, Kwargs: AdditionalSprites{
				RenderMode:         renderASCIIShape,
				CustomSpriteNames:  []string{self.Name},
				CustomSpriteShapes: []string{self.Shape},
				CustomPalettes:     []palette.Palette{self.Palette.Clone()},
				CustomNoRotates:    []bool{self.NoRotate},
			}},
			{Kind: KindAvatar, Kwargs: Avatar{
				Index:       luaIndex,
				AliveState:  live,
				WaitState:   waitState,
				SpawnGroup:  GroupSpawnPoints,
				ActionOrder: []string{"move", "turn"},
				ActionSpec: map[string]ActionRange{
					"move": {Default: 0, Min: 0, Max: len(compass)},
					"turn": {Default: 0, Min: -1, Max: 1},
				},
				View: View{
					Left:     view.Left,
					Right:    view.Right,
					Forward:  view.Forward,
					Backward: view.Backward,
					Centered: view.Centered,
				},
				SpriteMap: ViewerSprites{Self: self.Name, Peer: peer},
			}},
			{Kind: KindSequentialCollection, Kwargs: SequentialCollection{
				Sequence: append([]int(nil), CollectionOrder[:]...),
			}},
		},
	}, nil
}
