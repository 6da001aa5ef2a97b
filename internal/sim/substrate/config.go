package substrate

import (
	"fmt"

	"substrates.ai/internal/sim/naming"
	"substrates.ai/internal/sim/specs"
)

const DefaultRole = "default"

// Config is the policy-facing description of the substrate.
type Config struct {
	ActionSet                  []Action       `json:"action_set"`
	ActionNames                []string       `json:"action_names"`
	IndividualObservationNames []string       `json:"individual_observation_names"`
	GlobalObservationNames     []string       `json:"global_observation_names"`
	ActionSpec                 specs.Discrete `json:"action_spec"`
	TimestepSpec               specs.Timestep `json:"timestep_spec"`
	ValidRoles                 []string       `json:"valid_roles"`
	// DefaultPlayerRoles also fixes the default number of players.
	DefaultPlayerRoles []string `json:"default_player_roles"`
}

// GetConfig describes the substrate at the default sprite size.
func GetConfig() Config { return configFor(SpriteSize) }

// Config describes the documents this assembler builds; WORLD.RGB follows
// the configured sprite size.
func (a *Assembler) Config() Config { return configFor(a.settings.SpriteSize) }

func configFor(spriteSize int) Config {
	actions := ActionSet()
	rgb, _ := specs.ObservationSpec("RGB")
	ready, _ := specs.ObservationSpec("READY_TO_SHOOT")
	return Config{
		ActionSet:                  actions,
		ActionNames:                append([]string(nil), ActionNames[:]...),
		IndividualObservationNames: []string{"RGB"},
		GlobalObservationNames:     []string{"WORLD.RGB"},
		ActionSpec:                 specs.Action(len(actions)),
		TimestepSpec: specs.NewTimestep(map[string]specs.Array{
			"RGB":            rgb,
			"READY_TO_SHOOT": ready,
			// Global switching signal for puppeteers.
			"NUM_OTHERS_WHO_CLEANED_THIS_STEP": specs.Scalar("NUM_OTHERS_WHO_CLEANED_THIS_STEP"),
			// Debug only; not for policies.
			"WORLD.RGB": specs.WorldRGB(levelGrid, spriteSize),
		}),
		ValidRoles:         []string{DefaultRole},
		DefaultPlayerRoles: []string{DefaultRole, DefaultRole},
	}
}

// CheckRoles reports the first role outside ValidRoles. Build does not call
// it; role contents never affect the document.
func (c Config) CheckRoles(roles []string) error {
	valid := make(map[string]bool, len(c.ValidRoles))
	for _, r := range c.ValidRoles {
		valid[r] = true
	}
	for i, r := range roles {
		if !valid[r] {
			return fmt.Errorf("role %d: %w %q%s", i, ErrUnknownRole, r, naming.Hint(r, c.ValidRoles))
		}
	}
	return nil
}
