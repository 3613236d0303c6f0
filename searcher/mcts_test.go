package searcher

import (
	"context"
	"math"
	"testing"

	"monbattle/dex"
	"monbattle/game"
	"monbattle/meta"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type constEvaluator struct {
	value float64
	calls int
}

func (e *constEvaluator) Evaluate(state *game.MatchState, side game.SideID) float64 {
	e.calls++
	return e.value
}

type traceEvaluator struct {
	constEvaluator
	trace []game.JointAction
}

func (e *traceEvaluator) Trace(state *game.MatchState, side game.SideID) (float64, []game.JointAction) {
	return e.Evaluate(state, side), e.trace
}

// lastStand has both sides down to one combatant. A's first move knocks out B.
func lastStand() *game.MatchState {
	tap := &game.MoveSpec{Name: "Tap", Element: game.Normal, BasePower: 1, Accuracy: 100}
	finisher := &game.MoveSpec{Name: "Finisher", Element: game.Normal, BasePower: 50, Accuracy: 100}
	hero := &game.SpeciesSpec{Name: "Hero", Element: game.Normal, MaxHP: 100, Attack: 10, Defense: 10, Speed: 5, Moves: [2]*game.MoveSpec{finisher, tap}}
	foe := &game.SpeciesSpec{Name: "Foe", Element: game.Normal, MaxHP: 10, Attack: 10, Defense: 10, Speed: 9, Moves: [2]*game.MoveSpec{tap, tap}}

	a := game.NewSide([game.TeamSize]*game.SpeciesSpec{hero, hero, hero})
	b := game.NewSide([game.TeamSize]*game.SpeciesSpec{foe, foe, foe})
	for _, side := range []*game.Side{&a, &b} {
		for _, slot := range []int{1, 2} {
			side.Team[slot].HP = 0
			side.Team[slot].Fainted = true
		}
	}
	return game.NewMatchState(a, b, 1)
}

func TestSimulate(t *testing.T) {
	ctx := context.Background()

	t.Run("visits sum to the episode budget", func(t *testing.T) {
		m := NewMCTS(WithEpisodes(200), WithSeed(3), WithMetrics())
		root, metric, err := m.Simulate(ctx, dex.DefaultMatch(1), game.SideA)
		require.NoError(t, err)

		total := 0
		for _, visits := range root.Visits() {
			total += visits
		}
		require.Equal(t, 200, total, "Every episode should pass through one root child")
		require.Equal(t, 200, root.Episodes())
		require.Equal(t, 200, metric.Episodes)
		require.LessOrEqual(t, metric.Expansions, 200)
		require.Greater(t, metric.MaxDepth, 1, "Search should descend past the root children")
		require.Len(t, root.Stats(), len(game.LegalActions(dex.DefaultMatch(1), game.SideA)))
	})

	t.Run("same seed gives the same statistics", func(t *testing.T) {
		state := dex.DefaultMatch(5)
		first, _, err := NewMCTS(WithEpisodes(150), WithSeed(9)).Simulate(ctx, state, game.SideB)
		require.NoError(t, err)
		second, _, err := NewMCTS(WithEpisodes(150), WithSeed(9)).Simulate(ctx, state, game.SideB)
		require.NoError(t, err)

		require.Equal(t, first.Stats(), second.Stats())
		require.Equal(t, first.BestAction(), second.BestAction())
	})

	t.Run("does not mutate the input state", func(t *testing.T) {
		state := dex.DefaultMatch(5)
		before := *state
		_, _, err := NewMCTS(WithEpisodes(100)).Simulate(ctx, state, game.SideA)
		require.NoError(t, err)
		require.Equal(t, before, *state)
	})

	t.Run("finds the winning move", func(t *testing.T) {
		for _, rave := range []bool{false, true} {
			options := []Option{WithEpisodes(60), WithSeed(1)}
			if rave {
				options = append(options, WithRAVE(DefaultRAVE))
			}
			root, _, err := NewMCTS(options...).Simulate(ctx, lastStand(), game.SideA)
			require.NoError(t, err)
			require.Equal(t, game.Move1, root.BestAction(), "Knockout move should be chosen (rave=%v)", rave)
		}
	})

	t.Run("clamps out of range evaluations", func(t *testing.T) {
		evaluator := &constEvaluator{value: 2.5}
		m := NewMCTS(WithEpisodes(10), WithEvaluator(evaluator), WithMetrics())
		root, metric, err := m.Simulate(ctx, dex.DefaultMatch(1), game.SideA)
		require.NoError(t, err)

		require.Equal(t, 10, evaluator.calls)
		require.Equal(t, 10, metric.Clamped)
		require.InDelta(t, 1.0, root.Value(), 1e-9, "Clamped evaluations should be recorded as 1")
	})

	t.Run("uses exact outcomes at terminal leaves", func(t *testing.T) {
		evaluator := &constEvaluator{value: 0.5}
		m := NewMCTS(WithEpisodes(40), WithEvaluator(evaluator), WithMetrics())
		root, metric, err := m.Simulate(ctx, lastStand(), game.SideA)
		require.NoError(t, err)
		require.Greater(t, metric.TerminalLeaves, 0)

		for _, stat := range root.Stats() {
			if stat.Action == game.Move1 {
				require.InDelta(t, 1.0, stat.WorstCase, 1e-9, "Knockout replies should all be wins")
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := NewMCTS(WithEpisodes(0)).Simulate(ctx, dex.DefaultMatch(1), game.SideA)
		require.ErrorIs(t, err, ErrNoEpisodes)

		over := lastStand()
		over.Sides[game.SideB].Team[0].HP = 0
		over.Sides[game.SideB].Team[0].Fainted = true
		over = game.NewMatchState(over.Sides[game.SideA], over.Sides[game.SideB], 1)
		_, _, err = NewMCTS().Simulate(ctx, over, game.SideA)
		require.ErrorIs(t, err, game.ErrMatchOver)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err = NewMCTS().Simulate(cancelled, dex.DefaultMatch(1), game.SideA)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestRAVEBackup(t *testing.T) {
	newSearch := func(evaluator Evaluator) *search {
		m := NewMCTS(WithEvaluator(evaluator), WithRAVE(DefaultRAVE), WithSeed(2))
		s := &search{MCTS: m, side: game.SideA, rng: rand.New(rand.NewSource(2))}
		s.tree = newTree(dex.DefaultMatch(1), s.rng)
		return s
	}

	t.Run("rollout actions count once per simulation", func(t *testing.T) {
		s := newSearch(&traceEvaluator{
			constEvaluator: constEvaluator{value: 0.75},
			trace:          []game.JointAction{{A: game.Move1, B: game.Move2}, {A: game.Move1, B: game.Move2}},
		})
		for i := 0; i < 30; i++ {
			require.NoError(t, s.simulate())
		}

		root := s.tree.get(0)
		require.Equal(t, 30, root.amaf[game.SideA][game.Move1].count)
		require.Equal(t, 30, root.amaf[game.SideB][game.Move2].count)
		require.InDelta(t, 0.75*30, root.amaf[game.SideA][game.Move1].value, 1e-9)
	})

	t.Run("own edge is not counted", func(t *testing.T) {
		s := newSearch(&traceEvaluator{constEvaluator: constEvaluator{value: 0.75}})
		require.NoError(t, s.simulate())

		root := s.tree.get(0)
		require.Len(t, root.edges, 1)
		for _, side := range []game.SideID{game.SideA, game.SideB} {
			for action := 0; action < game.NumActions; action++ {
				require.Zero(t, root.amaf[side][action].count,
					"Nothing was played after the root edge (side %s, action %s)", side, game.Action(action))
			}
		}
	})

	t.Run("leaf receives no amaf update", func(t *testing.T) {
		s := newSearch(&traceEvaluator{
			constEvaluator: constEvaluator{value: 0.75},
			trace:          []game.JointAction{{A: game.Move2, B: game.Move1}},
		})
		require.NoError(t, s.simulate())

		root := s.tree.get(0)
		leaf := s.tree.get(root.children[root.edges[0]])
		require.Equal(t, 1, leaf.visits)
		require.Zero(t, leaf.amaf[game.SideA][game.Move2].count)
		require.Equal(t, 1, root.amaf[game.SideA][game.Move2].count, "Rollout is played after the root edge")
		require.Equal(t, 1, root.amaf[game.SideB][game.Move1].count)
	})

	t.Run("second level counts only actions below its edge", func(t *testing.T) {
		s := newSearch(&traceEvaluator{constEvaluator: constEvaluator{value: 0.5}})
		for s.tree.get(0).expandable() {
			require.NoError(t, s.simulate())
		}
		// Next simulation selects a root child and expands below it.
		require.NoError(t, s.simulate())

		root := s.tree.get(0)
		counted := 0
		for side := range root.amaf {
			for _, stat := range root.amaf[side] {
				counted += stat.count
			}
		}
		require.Equal(t, 2, counted, "Only the expanded edge below the root child is after the root edge")
	})
}

func TestSelectChild(t *testing.T) {
	state := dex.DefaultMatch(1)
	rng := rand.New(rand.NewSource(1))

	newSearch := func() *search {
		s := &search{MCTS: NewMCTS(), side: game.SideA, rng: rng}
		s.tree = newTree(state, rng)
		for s.tree.get(0).expandable() {
			action := s.tree.popUntried(0)
			next, err := game.ResolveTurn(state, action.A, action.B)
			require.NoError(t, err)
			s.tree.add(0, action, next, rng)
		}
		return s
	}

	t.Run("selects an unvisited child immediately", func(t *testing.T) {
		s := newSearch()
		root := s.tree.get(0)
		root.visits = 100
		for i, action := range root.edges {
			child := s.tree.get(root.children[action])
			if i != 3 {
				child.visits, child.value = 10, 10
			}
		}

		got := s.selectChild(0)
		require.Equal(t, root.children[root.edges[3]], got)
	})

	t.Run("selects the highest UCB child", func(t *testing.T) {
		s := newSearch()
		root := s.tree.get(0)
		root.visits = 100
		for i, action := range root.edges {
			child := s.tree.get(root.children[action])
			child.visits, child.value = 5, 1
			if i == 2 {
				child.value = 4
			}
		}

		got := s.selectChild(0)
		require.Equal(t, root.children[root.edges[2]], got)
	})

	t.Run("AMAF value steers poorly visited children", func(t *testing.T) {
		s := newSearch()
		s.raveK = DefaultRAVE
		root := s.tree.get(0)
		root.visits = 100
		for _, action := range root.edges {
			child := s.tree.get(root.children[action])
			child.visits, child.value = 2, 1
			stat := &root.amaf[game.SideA][action.A]
			stat.count, stat.value = 50, 10
		}
		favored := root.edges[0].A
		root.amaf[game.SideA][favored] = amafStat{count: 50, value: 45}

		got := s.tree.get(s.selectChild(0))
		require.Equal(t, favored, got.action.A)
	})
}

func TestBestWorstCase(t *testing.T) {
	t.Run("prefers the best worst case over the best mean", func(t *testing.T) {
		stats := []ActionStat{
			{Action: game.Move1, Visits: 90, Mean: 0.8, WorstCase: 0.2, Replies: 2},
			{Action: game.Move2, Visits: 20, Mean: 0.45, WorstCase: 0.4, Replies: 2},
		}
		require.Equal(t, game.Move2, bestWorstCase(stats))
	})

	t.Run("ties fall back to visits", func(t *testing.T) {
		stats := []ActionStat{
			{Action: game.Move1, Visits: 10, WorstCase: 0.5, Replies: 1},
			{Action: game.SwitchTo1, Visits: 30, WorstCase: 0.5, Replies: 3},
		}
		require.Equal(t, game.SwitchTo1, bestWorstCase(stats))
	})

	t.Run("unexplored actions are not candidates", func(t *testing.T) {
		stats := []ActionStat{
			{Action: game.Move1},
			{Action: game.Move2, Visits: 3, WorstCase: 0.1, Replies: 1},
		}
		require.Equal(t, game.Move2, bestWorstCase(stats))
	})

	t.Run("nothing explored picks the first action", func(t *testing.T) {
		stats := []ActionStat{{Action: game.Move2}, {Action: game.Move1}}
		require.Equal(t, game.Move2, bestWorstCase(stats))
	})

	t.Run("selected worst case dominates", func(t *testing.T) {
		rng := rand.New(rand.NewSource(11))
		for trial := 0; trial < 200; trial++ {
			stats := make([]ActionStat, 4)
			for i := range stats {
				stats[i] = ActionStat{
					Action:    game.Actions[i],
					Visits:    1 + rng.Intn(50),
					WorstCase: rng.Float64(),
					Replies:   1 + rng.Intn(4),
				}
			}

			chosen := bestWorstCase(stats)
			var chosenWorst float64
			for _, stat := range stats {
				if stat.Action == chosen {
					chosenWorst = stat.WorstCase
				}
			}
			for _, stat := range stats {
				require.GreaterOrEqual(t, chosenWorst, stat.WorstCase)
			}
		}
	})
}

func TestRootStats(t *testing.T) {
	state := dex.DefaultMatch(1)
	rng := rand.New(rand.NewSource(1))
	tr := newTree(state, rng)
	for tr.get(0).expandable() {
		action := tr.popUntried(0)
		next, err := game.ResolveTurn(state, action.A, action.B)
		require.NoError(t, err)
		tr.add(0, action, next, rng)
	}

	root := tr.get(0)
	for _, action := range root.edges {
		child := tr.get(root.children[action])
		child.visits = 4
		child.value = 2
		if action.A == game.Move1 && action.B == game.Move2 {
			child.value = 0.4
		}
	}

	r := &Root{tree: tr, side: game.SideA, legal: game.LegalActions(state, game.SideA)}
	for _, stat := range r.Stats() {
		replies := len(game.LegalActions(state, game.SideB))
		require.Equal(t, replies, stat.Replies)
		require.Equal(t, 4*replies, stat.Visits)
		if stat.Action == game.Move1 {
			require.InDelta(t, 0.1, stat.WorstCase, 1e-9)
		} else {
			require.InDelta(t, 0.5, stat.WorstCase, 1e-9)
		}
	}
	require.NotEqual(t, game.Move1, r.BestAction())
}

func TestRootStatsUnexplored(t *testing.T) {
	state := dex.DefaultMatch(1)
	rng := rand.New(rand.NewSource(1))
	tr := newTree(state, rng)
	action := tr.popUntried(0)
	next, err := game.ResolveTurn(state, action.A, action.B)
	require.NoError(t, err)
	child := tr.get(tr.add(0, action, next, rng))
	child.visits, child.value = 2, 1.5

	r := &Root{tree: tr, side: game.SideA, legal: game.LegalActions(state, game.SideA)}
	for _, stat := range r.Stats() {
		if stat.Action == action.A {
			require.Equal(t, 1, stat.Replies)
			require.InDelta(t, 0.75, stat.WorstCase, 1e-9)
			continue
		}
		require.Zero(t, stat.Replies)
		require.Zero(t, stat.WorstCase, "Unexplored actions report a zero worst case")
		require.False(t, math.IsInf(stat.WorstCase, 0))
	}
	require.Equal(t, action.A, r.BestAction())
}

func TestNewMCTSDefaults(t *testing.T) {
	m := NewMCTS()
	require.Equal(t, meta.EPISODES, m.episodes)
	require.Equal(t, CSquared, m.cSquared)
	require.False(t, m.RAVE())

	require.Equal(t, 25, NewMCTS(WithEpisodes(25)).episodes)
}
