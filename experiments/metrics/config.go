package metrics

// AgentConfig describes one competitor in an experiment.
type AgentConfig struct {
	ID          int     `yaml:"id"`
	Kind        string  `yaml:"kind"`      // random | greedy | mcts
	Evaluator   string  `yaml:"evaluator"` // rollout | greedy-rollout | heuristic | value
	Episodes    int     `yaml:"episodes"`
	Exploration float64 `yaml:"exploration"`
	RAVE        float64 `yaml:"rave"` // RAVE constant k, 0 disables
	Cutoff      int     `yaml:"cutoff"`
	Weights     string  `yaml:"weights"`
}
