package selfplay

import (
	"fmt"

	"monbattle/agent"
	"monbattle/dex"
	"monbattle/engine"
	"monbattle/evaluator"
	"monbattle/game"
	"monbattle/meta"
	"monbattle/searcher"
	"monbattle/valuenet"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Sample is one position seen by one side, labelled with that side's final outcome.
type Sample struct {
	Game     int32     `parquet:"game"`
	Turn     int32     `parquet:"turn"`
	Side     string    `parquet:"side,dict"`
	Features []float32 `parquet:"features"`
	Target   float32   `parquet:"target"`
}

// AgentFactory returns the two agents playing game number i.
type AgentFactory func(i int) [2]agent.Agent

// RandomAgents pits two uniformly random agents against each other.
func RandomAgents(seed uint64) AgentFactory {
	return func(i int) [2]agent.Agent {
		base := seed + uint64(2*i)
		return [2]agent.Agent{agent.NewRandom(base), agent.NewRandom(base + 1)}
	}
}

// SearchAgents pits two search agents that sample their moves from root visit
// counts at temperature. Leaves are scored by random rollouts.
func SearchAgents(episodes int, temperature float64, seed uint64) AgentFactory {
	return func(i int) [2]agent.Agent {
		var agents [2]agent.Agent
		for side := range agents {
			base := seed + uint64(2*i+side)
			mcts := searcher.NewMCTS(
				searcher.WithEpisodes(episodes),
				searcher.WithEvaluator(evaluator.NewRandomRollout(base, evaluator.WithCutoff(meta.WITH_CUTOFF))),
				searcher.WithSeed(base),
			)
			agents[side] = agent.NewTraining(mcts, temperature, base)
		}
		return agents
	}
}

// Generate plays numGames matches between the dex's teams and records every
// non-terminal position from both sides.
func Generate(d *dex.Dex, numGames int, seed uint64, agents AgentFactory) ([]Sample, error) {
	var samples []Sample
	for i := 0; i < numGames; i++ {
		start, err := d.NewMatch(seed + uint64(i))
		if err != nil {
			return nil, err
		}

		e := engine.LocalEngine(agents(i), start)
		winner, _, _, err := e.Run()
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i, err)
		}
		if winner == game.NoWinner {
			log.Warn().Msgf("game %d hit the turn cap, labelling its positions as draws", i)
		}

		gameSamples, err := label(int32(i), start, e.History, e.State)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i, err)
		}
		samples = append(samples, gameSamples...)

		if (i+1)%100 == 0 {
			log.Info().Msgf("generated %d of %d games, %d samples", i+1, numGames, len(samples))
		}
	}
	return samples, nil
}

// label replays history from start and labels each position with the outcome of final.
func label(id int32, start *game.MatchState, history []game.JointAction, final *game.MatchState) ([]Sample, error) {
	samples := make([]Sample, 0, 2*len(history))
	state := start
	for _, joint := range history {
		for _, side := range []game.SideID{game.SideA, game.SideB} {
			samples = append(samples, Sample{
				Game:     id,
				Turn:     int32(state.Turn),
				Side:     side.String(),
				Features: valuenet.Features(state, side),
				Target:   float32(game.Outcome(final, side)),
			})
		}

		next, err := game.ResolveTurn(state, joint.A, joint.B)
		if err != nil {
			return nil, fmt.Errorf("replaying turn %d: %w", state.Turn+1, err)
		}
		state = next
	}
	return samples, nil
}

// Train runs epochs of shuffled per-sample gradient descent and returns the
// mean squared error of each epoch.
func Train(net *valuenet.Network, samples []Sample, epochs int, learningRate float64, seed uint64) []float64 {
	if len(samples) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}

	losses := make([]float64, 0, epochs)
	for epoch := 0; epoch < epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		total := 0.0
		for _, i := range order {
			total += net.TrainStep(samples[i].Features, float64(samples[i].Target), learningRate)
		}
		loss := total / float64(len(samples))
		losses = append(losses, loss)
		log.Info().Msgf("epoch %d of %d: loss=%.5f", epoch+1, epochs, loss)
	}
	return losses
}
