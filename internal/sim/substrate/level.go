package substrate

import "substrates.ai/internal/sim/asciimap"

// AsciiMap is the level layout. Targets a, b and c sit among the spawn
// points on the sand; the river runs down the right side.
const AsciiMap = `
WWWWWWWWWWWWWWWWWWWWWWWWWWWWWW
WHHHHHHHHHHHHHHHHHHHHHHHHHHHHW
WHHHHHHHHHHHHHHHHHHHHHHHHHHHHW
WHHHHHHHHHHHHHHHHHHHHHHHHHHHHW
W==============+~fHHHHHHf====W
W   P    P      ===+~SSf     W
W     P     P   P  <~Sf  P   W
W             P   P<~S>      W
W   P    P         <~S>   P  W
W            a  P  <~S>P     W
W     P   b       P<~S>      W
W           P c    <~S> P    W
W  P             P <~S>      W
W^T^T^T^T^T^T^T^T^T;~S,^T^T^TW
WssssssssssssssssssssssssssssW
WWWWWWWWWWWWWWWWWWWWWWWWWWWWWW
`

// SpriteSize is the number of pixels per map cell in the world render.
const SpriteSize = 1

var levelGrid = asciimap.MustParse(AsciiMap)

// Grid returns the parsed level layout.
func Grid() asciimap.Grid { return levelGrid }

// CharPrefabMap returns the legend for AsciiMap. Each call returns a fresh copy.
func CharPrefabMap() asciimap.Legend {
	return asciimap.Legend{
		'W': asciimap.Single(PrefabWall),
		' ': asciimap.Single(PrefabSand),
		'P': asciimap.Stack{PrefabSand, PrefabSpawnPoint},
		's': asciimap.Stack{PrefabGrass, PrefabShadowN},
		'+': asciimap.Stack{PrefabSand, PrefabShadowE, PrefabShadowN},
		'f': asciimap.Stack{PrefabSand, PrefabShadowW, PrefabShadowN},
		';': asciimap.Stack{PrefabSand, PrefabGrassEdge, PrefabShadowE},
		',': asciimap.Stack{PrefabSand, PrefabGrassEdge, PrefabShadowW},
		'^': asciimap.Stack{PrefabSand, PrefabGrassEdge},
		'=': asciimap.Stack{PrefabSand, PrefabShadowN},
		'>': asciimap.Stack{PrefabSand, PrefabShadowW},
		'<': asciimap.Stack{PrefabSand, PrefabShadowE},
		'~': asciimap.Stack{PrefabRiver, PrefabShadowW},
		'T': asciimap.Stack{PrefabSand, PrefabGrassEdge},
		'S': asciimap.Single(PrefabRiver),
		'H': asciimap.Stack{PrefabRiver},
		'a': asciimap.Single(PrefabTarget0),
		'b': asciimap.Single(PrefabTarget1),
		'c': asciimap.Single(PrefabTarget2),
	}
}
