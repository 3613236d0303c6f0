// meta/meta.go
package meta

// EPISODES defines the number of episodes for MCTS.
const EPISODES = 1000

// WITH_CUTOFF defines the rollout cutoff depth in turns, 0 plays to the end.
const WITH_CUTOFF = 0

// MAX_TURNS caps the length of a driven match.
const MAX_TURNS = 300

// SEED is the default match and search seed.
const SEED = 42

// TEMPERATURE is the self-play sampling temperature.
const TEMPERATURE = 1.0
