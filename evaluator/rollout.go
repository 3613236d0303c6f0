package evaluator

import (
	"monbattle/agent"
	"monbattle/game"
	"monbattle/meta"
	"monbattle/searcher"

	"github.com/rs/zerolog/log"
)

type Option func(r *Rollout)

// WithCutoff stops rollouts after depth turns and scores the state with the
// cutoff evaluator instead.
func WithCutoff(depth int) Option {
	return func(r *Rollout) {
		if depth > 0 {
			r.cutoff = depth
		}
	}
}

func WithCutoffEvaluator(evaluator searcher.Evaluator) Option {
	return func(r *Rollout) {
		if evaluator != nil {
			r.fallback = evaluator
		}
	}
}

// Rollout estimates a position by playing it out with fixed policies.
type Rollout struct {
	policies [2]agent.Agent
	cutoff   int
	fallback searcher.Evaluator
}

// NewRollout plays side A with policies[0] and side B with policies[1].
func NewRollout(policies [2]agent.Agent, options ...Option) *Rollout {
	r := &Rollout{
		policies: policies,
		cutoff:   meta.MAX_TURNS,
		fallback: Heuristic(),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// NewRandomRollout plays both sides uniformly at random.
func NewRandomRollout(seed uint64, options ...Option) *Rollout {
	return NewRollout([2]agent.Agent{agent.NewRandom(seed), agent.NewRandom(seed + 1)}, options...)
}

// NewGreedyRollout plays both sides by expected damage.
func NewGreedyRollout(seed uint64, options ...Option) *Rollout {
	return NewRollout([2]agent.Agent{agent.NewGreedy(seed), agent.NewGreedy(seed + 1)}, options...)
}

func (r *Rollout) Evaluate(state *game.MatchState, side game.SideID) float64 {
	value, _ := r.Trace(state, side)
	return value
}

// Trace plays out state and returns its value for side with the joint actions played.
func (r *Rollout) Trace(state *game.MatchState, side game.SideID) (float64, []game.JointAction) {
	var trace []game.JointAction
	for depth := 0; !state.Terminal; depth++ {
		if depth >= r.cutoff {
			return r.fallback.Evaluate(state, side), trace
		}

		var joint [2]game.Action
		for i, policy := range r.policies {
			action, err := policy.ChooseAction(state, game.SideID(i))
			if err != nil {
				log.Warn().Msgf("rollout policy for side %s failed: %v", game.SideID(i), err)
				return r.fallback.Evaluate(state, side), trace
			}
			joint[i] = action
		}

		next, err := game.ResolveTurn(state, joint[game.SideA], joint[game.SideB])
		if err != nil {
			log.Warn().Msgf("rollout turn %d failed: %v", state.Turn+1, err)
			return r.fallback.Evaluate(state, side), trace
		}
		trace = append(trace, game.JointAction{A: joint[game.SideA], B: joint[game.SideB]})
		state = next
	}
	return game.Outcome(state, side), trace
}
