package substrate

import "substrates.ai/internal/sim/tuning"

// CreateScene returns the non-physical object holding global logic: the
// stochastic episode ending.
func CreateScene(e tuning.EpisodeEnding) GameObject {
	return GameObject{
		Name: "scene",
		Components: []Component{
			{Kind: KindStateManager, Kwargs: StateManager{
				InitialState: "scene",
				StateConfigs: []StateConfig{{State: "scene"}},
			}},
			transform(),
			{Kind: KindStochasticIntervalEpisodeEnding, Kwargs: StochasticIntervalEpisodeEnding{
				MinimumFramesPerEpisode:           e.MinimumFramesPerEpisode,
				IntervalLength:                    e.IntervalLength,
				ProbabilityTerminationPerInterval: e.ProbabilityTerminationPerInterval,
			}},
		},
	}
}
