package substrate

import (
	"fmt"
	"sort"

	"substrates.ai/internal/sim/palette"
	"substrates.ai/internal/sim/shapes"
)

// Prefab names registered by CreatePrefabs.
const (
	PrefabWall       = "wall"
	PrefabSand       = "sand"
	PrefabGrass      = "grass"
	PrefabGrassEdge  = "grass_edge"
	PrefabShadowW    = "shadow_w"
	PrefabShadowE    = "shadow_e"
	PrefabShadowN    = "shadow_n"
	PrefabSpawnPoint = "spawn_point"
	PrefabRiver      = "river"
	PrefabTarget0    = "target_0"
	PrefabTarget1    = "target_1"
	PrefabTarget2    = "target_2"
)

const (
	GroupSpawnPoints = "spawnPoints"
	GroupWater       = "water"
)

// NumTargets is the number of sequential pickups in the level.
const NumTargets = 3

// TargetPrefab returns the prefab name of the pickup with 1-based index idx.
func TargetPrefab(idx int) string { return fmt.Sprintf("target_%d", idx-1) }

// CreatePrefabs returns the templates the engine clones at map placements.
// Every call returns fresh values.
func CreatePrefabs() map[string]GameObject {
	prefabs := map[string]GameObject{
		PrefabWall:       wall(),
		PrefabSand:       sand(),
		PrefabGrass:      grass(),
		PrefabGrassEdge:  grassEdge(),
		PrefabShadowW:    shadow("shadow_w", "ShadowW", LayerUpperPhysical, shapes.ShadowW),
		PrefabShadowE:    shadow("shadow_e", "ShadowE", LayerUpperPhysical, shapes.ShadowE),
		PrefabShadowN:    shadow("shadow_n", "ShadowN", LayerOverlay, shapes.ShadowN),
		PrefabSpawnPoint: spawnPoint(),
		PrefabRiver:      water(),
	}
	for idx := 1; idx <= NumTargets; idx++ {
		prefabs[TargetPrefab(idx)] = sequentialPickup(idx)
	}
	return prefabs
}

// PrefabNames returns the registered prefab names, sorted.
func PrefabNames() []string {
	prefabs := CreatePrefabs()
	out := make([]string, 0, len(prefabs))
	for name := range prefabs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// singleSprite is the common shape of static terrain: one state on one
// layer drawn with one sprite.
func singleSprite(name, layer, sprite, shape string, pal palette.Palette) GameObject {
	return GameObject{
		Name: name,
		Components: []Component{
			{Kind: KindStateManager, Kwargs: StateManager{
				InitialState: name,
				StateConfigs: []StateConfig{{State: name, Layer: layer, Sprite: sprite}},
			}},
			{Kind: KindAppearance, Kwargs: Appearance{
				RenderMode:   renderASCIIShape,
				SpriteNames:  []string{sprite},
				SpriteShapes: []string{shape},
				Palettes:     []palette.Palette{pal},
				NoRotates:    []bool{false},
			}},
			transform(),
		},
	}
}

func sand() GameObject {
	return singleSprite("sand", LayerBackground, "Sand", shapes.GrainyFloor, palette.Palette{
		"+": {222, 221, 189, 255},
		"*": {219, 218, 186, 255},
	})
}

func grassPalette() palette.Palette {
	return palette.Palette{
		"*": {164, 189, 75, 255},
		"@": {182, 207, 95, 255},
		"x": palette.Transparent,
	}
}

func grass() GameObject {
	return singleSprite("grass", LayerBackground, "Grass", shapes.GrassStraight, grassPalette())
}

func grassEdge() GameObject {
	return singleSprite("grass_edge", LayerLowerPhysical, "GrassEdge", shapes.GrassStraightNEdge, grassPalette())
}

func shadow(name, sprite, layer, shape string) GameObject {
	return singleSprite(name, layer, sprite, shape, palette.Shadow())
}

func wall() GameObject {
	o := singleSprite("wall", LayerSuperOverlay, "Wall", shapes.Wall, palette.Palette{
		"*": {95, 95, 95, 255},
		"&": {100, 100, 100, 255},
		"@": {109, 109, 109, 255},
		"#": {152, 152, 152, 255},
	})
	o.Components = append(o.Components,
		Component{Kind: KindBeamBlocker, Kwargs: BeamBlocker{BeamType: "zapHit"}},
		Component{Kind: KindBeamBlocker, Kwargs: BeamBlocker{BeamType: "cleanHit"}},
	)
	return o
}

func spawnPoint() GameObject {
	return GameObject{
		Name: "spawnPoint",
		Components: []Component{
			{Kind: KindStateManager, Kwargs: StateManager{
				InitialState: "spawnPoint",
				StateConfigs: []StateConfig{{
					State:  "spawnPoint",
					Layer:  LayerLogic,
					Groups: []string{GroupSpawnPoints},
				}},
			}},
			transform(),
		},
	}
}

// water is the animated river tile. The engine advances the four frames
// every 2 game frames, starting each instance at a random frame.
func water() GameObject {
	const layer = LayerBackground
	frames := []string{"water_1", "water_2", "water_3", "water_4"}
	frameShapes := []string{shapes.Water1, shapes.Water2, shapes.Water3, shapes.Water4}

	states := make([]StateConfig, len(frames))
	palettes := make([]palette.Palette, len(frames))
	for i, f := range frames {
		states[i] = StateConfig{State: f, Layer: layer, Sprite: f, Groups: []string{GroupWater}}
		palettes[i] = palette.Palette{
			"@": {66, 173, 212, 255},
			"*": {35, 133, 168, 255},
			"o": {34, 129, 163, 255},
			"~": {33, 125, 158, 255},
		}
	}
	return GameObject{
		Name: "water_" + layer,
		Components: []Component{
			{Kind: KindStateManager, Kwargs: StateManager{
				InitialState: frames[0],
				StateConfigs: states,
			}},
			transform(),
			{Kind: KindAppearance, Kwargs: Appearance{
				RenderMode:   renderASCIIShape,
				SpriteNames:  append([]string(nil), frames...),
				SpriteShapes: frameShapes,
				Palettes:     palettes,
			}},
			{Kind: KindAnimation, Kwargs: Animation{
				States:                      append([]string(nil), frames...),
				GameFramesPerAnimationFrame: 2,
				Loop:                        true,
				RandomStartFrame:            true,
				Group:                       GroupWater,
			}},
		},
	}
}

func sequentialPickup(idx int) GameObject {
	o := singleSprite("sequential_pickup", LayerBackground, "Active", shapes.Diamond, palette.Palette{
		"x": palette.Transparent,
		"a": {252, 252, 252, 255},
		"b": {255, 0, 0, 255},
		"c": {155, 0, 0, 255},
		"d": {255, 0, 0, 255},
	})
	// The single state is named "active", not after the object.
	o.Components[0].Kwargs = StateManager{
		InitialState: "active",
		StateConfigs: []StateConfig{{State: "active", Layer: LayerBackground, Sprite: "Active"}},
	}
	o.Components = append(o.Components, Component{Kind: KindPickUp, Kwargs: PickUp{Idx: idx}})
	return o
}
