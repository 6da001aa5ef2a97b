package substrate

// compass is the engine's movement convention; move codes 1..4 step
// forward, right, backward and left relative to the facing direction.
var compass = [...]string{"N", "E", "S", "W"}

// Action is one primitive action record. Move is in [0, len(compass)],
// Turn in [-1, 1].
type Action struct {
	Move    int `json:"move"`
	Turn    int `json:"turn"`
	FireZap int `json:"fireZap"`
}

var (
	Noop      = Action{Move: 0, Turn: 0}
	Forward   = Action{Move: 1, Turn: 0}
	StepRight = Action{Move: 2, Turn: 0}
	Backward  = Action{Move: 3, Turn: 0}
	StepLeft  = Action{Move: 4, Turn: 0}
	TurnLeft  = Action{Move: 0, Turn: -1}
	TurnRight = Action{Move: 0, Turn: 1}
)

// ActionNames lists the action set by policy index.
var ActionNames = [...]string{
	"NOOP",
	"FORWARD",
	"BACKWARD",
	"STEP_LEFT",
	"STEP_RIGHT",
	"TURN_LEFT",
	"TURN_RIGHT",
}

// ActionSet returns the discrete actions in policy index order.
func ActionSet() []Action {
	return []Action{
		Noop,
		Forward,
		Backward,
		StepLeft,
		StepRight,
		TurnLeft,
		TurnRight,
	}
}
