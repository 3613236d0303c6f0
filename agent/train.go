package agent

import (
	"context"
	"math"

	"monbattle/experiments/metrics"
	"monbattle/game"
	"monbattle/searcher"
	"monbattle/utils"

	"golang.org/x/exp/rand"
)

// Training samples its action from root visit counts for self-play diversity.
type Training struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
	metric      metrics.SearchMetric
}

// NewTraining returns a new agent for self-play during training. A temperature
// of 0 always picks the most visited action.
func NewTraining(mcts *searcher.MCTS, temperature float64, seed uint64) *Training {
	return &Training{
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *Training) ChooseAction(state *game.MatchState, side game.SideID) (game.Action, error) {
	root, metric, err := a.mcts.Simulate(context.Background(), state, side)
	if err != nil {
		return 0, err
	}
	a.metric = metric

	stats := root.Stats()
	actions := make([]game.Action, len(stats))
	visits := make(map[game.Action]int, len(stats))
	for i, stat := range stats {
		actions[i] = stat.Action
		visits[stat.Action] = stat.Visits
	}

	if a.temperature <= 0 {
		return findMax(actions, visits), nil
	}
	policy := adjustTemperature(visits, a.temperature)
	return sample(actions, policy, a.rng), nil
}

func (a *Training) LastMetric() metrics.SearchMetric {
	return a.metric
}

func adjustTemperature(visits map[game.Action]int, temperature float64) map[game.Action]float64 {
	// Compute temperature-adjusted action probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	policy := make(map[game.Action]float64, len(visits))
	for action, visit := range visits {
		prob := math.Pow(float64(visit), exponent)
		sum += prob
		policy[action] = prob
	}
	if sum == 0 {
		for action := range policy {
			policy[action] = 1.0 / float64(len(policy))
		}
		return policy
	}
	// Normalize
	for action := range policy {
		policy[action] /= sum
	}
	return policy
}

// sample draws from policy, walking actions in order so results depend only on rng.
func sample(actions []game.Action, policy map[game.Action]float64, rng *rand.Rand) game.Action {
	sampled := rng.Float64()
	cumulative := 0.0
	for _, action := range actions {
		cumulative += policy[action]
		if sampled < cumulative {
			return action
		}
	}
	return actions[len(actions)-1] // Fallback in case of rounding errors
}

func findMax(actions []game.Action, visits map[game.Action]int) game.Action {
	return utils.ArgMax(actions, func(action game.Action) float64 { return float64(visits[action]) })
}
