package experiments

import (
	"fmt"

	"monbattle/agent"
	"monbattle/evaluator"
	"monbattle/experiments/metrics"
	"monbattle/meta"
	"monbattle/searcher"
	"monbattle/valuenet"
)

// NewAgent builds the agent described by config, seeding its randomness with seed.
func NewAgent(config metrics.AgentConfig, seed uint64) (agent.Agent, error) {
	switch config.Kind {
	case "random":
		return agent.NewRandom(seed), nil
	case "greedy":
		return agent.NewGreedy(seed), nil
	case "mcts", "":
		mcts, err := NewMCTS(config, seed)
		if err != nil {
			return nil, err
		}
		return agent.NewSearch(mcts), nil
	default:
		return nil, fmt.Errorf("agent %d: unknown kind %q", config.ID, config.Kind)
	}
}

// NewMCTS builds the searcher described by config.
func NewMCTS(config metrics.AgentConfig, seed uint64) (*searcher.MCTS, error) {
	eval, err := newEvaluator(config, seed)
	if err != nil {
		return nil, err
	}

	options := []searcher.Option{
		searcher.WithEvaluator(eval),
		searcher.WithSeed(seed),
		searcher.WithMetrics(),
	}
	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}
	if config.RAVE > 0 {
		options = append(options, searcher.WithRAVE(config.RAVE))
	}
	return searcher.NewMCTS(options...), nil
}

func newEvaluator(config metrics.AgentConfig, seed uint64) (searcher.Evaluator, error) {
	cutoff := meta.WITH_CUTOFF
	if config.Cutoff > 0 {
		cutoff = config.Cutoff
	}
	var rolloutOptions []evaluator.Option
	if cutoff > 0 {
		rolloutOptions = append(rolloutOptions, evaluator.WithCutoff(cutoff))
	}

	switch config.Evaluator {
	case "rollout", "":
		return evaluator.NewRandomRollout(seed, rolloutOptions...), nil
	case "greedy-rollout":
		return evaluator.NewGreedyRollout(seed, rolloutOptions...), nil
	case "heuristic":
		return evaluator.Heuristic(), nil
	case "value":
		if config.Weights == "" {
			return nil, fmt.Errorf("agent %d: value evaluator needs weights", config.ID)
		}
		net, err := valuenet.Load(config.Weights)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", config.ID, err)
		}
		return net, nil
	default:
		return nil, fmt.Errorf("agent %d: unknown evaluator %q", config.ID, config.Evaluator)
	}
}
