package searcher

import (
	"context"
	"errors"
	"fmt"
	"math"

	"monbattle/experiments/metrics"
	"monbattle/game"
	"monbattle/meta"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var (
	ErrNoLegalActions = errors.New("side has no legal actions")
	ErrNoEpisodes     = errors.New("search requires at least one episode")
)

// Evaluator estimates the win probability of side in state, within [0, 1].
// Implementations must not mutate state.
type Evaluator interface {
	Evaluate(state *game.MatchState, side game.SideID) float64
}

// Tracer is an Evaluator that also reports the joint actions it played to
// reach its estimate. RAVE uses the trace to update AMAF statistics.
type Tracer interface {
	Evaluator
	Trace(state *game.MatchState, side game.SideID) (float64, []game.JointAction)
}

// EvaluatorFunc adapts a plain evaluation function to an Evaluator.
type EvaluatorFunc func(state *game.MatchState, side game.SideID) float64

func (f EvaluatorFunc) Evaluate(state *game.MatchState, side game.SideID) float64 {
	return f(state, side)
}

type Option func(m *MCTS)

// MCTS searches the joint-action tree of a simultaneous-move battle. Each call
// to Simulate builds a fresh tree. An MCTS is not safe for concurrent use.
type MCTS struct {
	episodes  int
	cSquared  float64
	raveK     float64
	evaluator Evaluator
	seed      uint64
	metrics   metrics.Collector
}

func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		m.episodes = episodes
	}
}

// WithExploration sets the UCB1 exploration weight.
func WithExploration(weight float64) Option {
	return func(m *MCTS) {
		if weight >= 0 {
			m.cSquared = weight * weight
		}
	}
}

// WithRAVE enables AMAF blending with equivalence constant k.
func WithRAVE(k float64) Option {
	return func(m *MCTS) {
		if k > 0 {
			m.raveK = k
		}
	}
}

func WithEvaluator(evaluator Evaluator) Option {
	return func(m *MCTS) {
		if evaluator != nil {
			m.evaluator = evaluator
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		episodes:  meta.EPISODES,
		cSquared:  CSquared,
		evaluator: EvaluatorFunc(game.EvaluateHP),
		metrics:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// RAVE reports whether AMAF blending is enabled.
func (m *MCTS) RAVE() bool {
	return m.raveK > 0
}

// Simulate runs the episode budget from state for side and returns the root
// statistics. A cancelled ctx stops the search between episodes.
func (m *MCTS) Simulate(ctx context.Context, state *game.MatchState, side game.SideID) (*Root, metrics.SearchMetric, error) {
	if m.episodes <= 0 {
		return nil, metrics.SearchMetric{}, ErrNoEpisodes
	}
	if state.Terminal {
		return nil, metrics.SearchMetric{}, game.ErrMatchOver
	}
	legal := game.LegalActions(state, side)
	if len(legal) == 0 {
		return nil, metrics.SearchMetric{}, fmt.Errorf("%w: side %s at turn %d", ErrNoLegalActions, side, state.Turn)
	}

	s := &search{
		MCTS: m,
		side: side,
		rng:  rand.New(rand.NewSource(m.seed ^ state.Hash() ^ uint64(side))),
	}
	s.tree = newTree(state, s.rng)

	m.metrics.Start(m.RAVE())
	for i := 0; i < m.episodes; i++ {
		if err := ctx.Err(); err != nil {
			if i == 0 {
				return nil, metrics.SearchMetric{}, err
			}
			log.Warn().Msgf("search for side %s stopped after %d of %d episodes: %v", side, i, m.episodes, err)
			break
		}
		if err := s.simulate(); err != nil {
			return nil, metrics.SearchMetric{}, err
		}
		m.metrics.AddEpisode()
	}
	metric := m.metrics.Complete()

	return &Root{tree: s.tree, side: side, legal: legal}, metric, nil
}

// search holds the state of one Simulate call.
type search struct {
	*MCTS
	side game.SideID
	rng  *rand.Rand
	tree *tree
}

func (s *search) simulate() error {
	path := []int{0}
	trajectory := []game.JointAction{}

	// Selection
	id := 0
	for n := s.tree.get(id); !n.state.Terminal && !n.expandable(); n = s.tree.get(id) {
		id = s.selectChild(id)
		path = append(path, id)
		trajectory = append(trajectory, s.tree.get(id).action)
	}

	// Expansion
	if n := s.tree.get(id); n.expandable() {
		action := s.tree.popUntried(id)
		next, err := game.ResolveTurn(n.state, action.A, action.B)
		if err != nil {
			return fmt.Errorf("expanding %s: %w", action, err)
		}
		id = s.tree.add(id, action, next, s.rng)
		path = append(path, id)
		trajectory = append(trajectory, action)
		s.metrics.AddExpansion()
	}
	s.metrics.ObserveDepth(len(path) - 1)

	// Evaluation
	value, rollout := s.evaluate(s.tree.get(id).state)
	trajectory = append(trajectory, rollout...)

	s.backup(path, value, trajectory)
	return nil
}

// selectChild picks the child of a fully expanded node maximizing UCB1, blended
// with AMAF values of the root side's actions when RAVE is enabled.
func (s *search) selectChild(id int) int {
	n := s.tree.get(id)
	if len(n.edges) == 0 {
		panic("selecting from a node without children")
	}
	policy := newUCT(s.cSquared, float64(n.visits), s.raveK)

	best, bestScore := -1, math.Inf(-1)
	for _, action := range n.edges {
		childID := n.children[action]
		child := s.tree.get(childID)
		if child.visits == 0 {
			return childID
		}

		score := policy.evaluateAMAF(child.value, float64(child.visits), n.amaf[s.side][action.Of(s.side)])
		if score > bestScore {
			best, bestScore = childID, score
		}
	}
	return best
}

// evaluate scores a leaf for the root side and returns any rollout trajectory.
func (s *search) evaluate(state *game.MatchState) (float64, []game.JointAction) {
	if state.Terminal {
		s.metrics.AddTerminalLeaf()
		return game.Outcome(state, s.side), nil
	}

	var value float64
	var trace []game.JointAction
	if tracer, ok := s.evaluator.(Tracer); ok && s.RAVE() {
		value, trace = tracer.Trace(state, s.side)
	} else {
		value = s.evaluator.Evaluate(state, s.side)
	}

	if math.IsNaN(value) {
		log.Warn().Msgf("evaluator returned NaN at turn %d, using %v", state.Turn, Even)
		s.metrics.AddClamped()
		return Even, trace
	}
	if value < Loss || value > Win {
		log.Warn().Msgf("evaluator returned %v outside [0, 1] at turn %d, clamping", value, state.Turn)
		s.metrics.AddClamped()
		value = min(Win, max(Loss, value))
	}
	return value, trace
}

// backup records value on every node of path. With RAVE, every interior node
// also records the first occurrence of each (side, action) played after its
// own outgoing edge. The leaf has no outgoing edge in the tree and is skipped.
func (s *search) backup(path []int, value float64, trajectory []game.JointAction) {
	for depth, id := range path {
		n := s.tree.get(id)
		n.visits++
		n.value += value

		if !s.RAVE() || depth == len(path)-1 {
			continue
		}
		var seen [2][game.NumActions]bool
		for _, joint := range trajectory[depth+1:] {
			for _, side := range []game.SideID{game.SideA, game.SideB} {
				action := joint.Of(side)
				if seen[side][action] {
					continue
				}
				seen[side][action] = true
				stat := &n.amaf[side][action]
				stat.count++
				stat.value += value
			}
		}
	}
}
