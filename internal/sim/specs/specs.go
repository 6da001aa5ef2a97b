// Package specs describes the action and observation arrays a substrate
// exchanges with policies. The engine fills them; this package only names
// their shapes and types.
package specs

import (
	"fmt"
	"sort"

	"substrates.ai/internal/sim/asciimap"
)

type DType string

const (
	Uint8   DType = "uint8"
	Int32   DType = "int32"
	Int64   DType = "int64"
	Float64 DType = "float64"
)

// Array is a fixed-shape array spec. A nil/empty Shape is a scalar.
type Array struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
	DType DType  `json:"dtype"`
}

// Discrete is a scalar integer in [0, NumValues).
type Discrete struct {
	Name      string `json:"name"`
	NumValues int    `json:"num_values"`
	DType     DType  `json:"dtype"`
}

// Action returns the discrete action spec for n actions.
func Action(n int) Discrete {
	return Discrete{Name: "action", NumValues: n, DType: Int64}
}

// RGB is an image observation of height x width pixels.
func RGB(height, width int, name string) Array {
	return Array{Name: name, Shape: []int{height, width, 3}, DType: Uint8}
}

// Scalar returns a float64 scalar spec.
func Scalar(name string) Array {
	return Array{Name: name, Shape: []int{}, DType: Float64}
}

// WorldRGB is the full-map debug render for a map drawn at spriteSize
// pixels per cell.
func WorldRGB(g asciimap.Grid, spriteSize int) Array {
	return RGB(g.Height()*spriteSize, g.Width()*spriteSize, "WORLD.RGB")
}

// Observation holds the shared per-player observation specs. The 88x88 RGB
// view is an 11x11 cell window at 8 pixels per cell.
var Observation = map[string]Array{
	"RGB":            RGB(88, 88, "RGB"),
	"READY_TO_SHOOT": Scalar("READY_TO_SHOOT"),
}

// ObservationSpec returns a copy of a shared observation spec, renamed to key.
func ObservationSpec(key string) (Array, error) {
	a, ok := Observation[key]
	if !ok {
		return Array{}, fmt.Errorf("specs: unknown observation %q", key)
	}
	a.Shape = append([]int{}, a.Shape...)
	return a, nil
}

// Timestep groups the step type, reward, discount and named observations.
type Timestep struct {
	StepType    Array            `json:"step_type"`
	Reward      Array            `json:"reward"`
	Discount    Array            `json:"discount"`
	Observation map[string]Array `json:"observation"`
}

// NewTimestep wraps the given observation specs. Keys become array names.
func NewTimestep(obs map[string]Array) Timestep {
	named := make(map[string]Array, len(obs))
	for k, v := range obs {
		v.Name = k
		named[k] = v
	}
	return Timestep{
		StepType:    Array{Name: "step_type", Shape: []int{}, DType: Int64},
		Reward:      Scalar("reward"),
		Discount:    Scalar("discount"),
		Observation: named,
	}
}

// ObservationNames returns the observation keys, sorted.
func (t Timestep) ObservationNames() []string {
	out := make([]string, 0, len(t.Observation))
	for k := range t.Observation {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
