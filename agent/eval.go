package agent

import (
	"context"

	"monbattle/experiments/metrics"
	"monbattle/game"
	"monbattle/searcher"
)

// Search plays the minimax root action of a fresh search every turn.
type Search struct {
	mcts   *searcher.MCTS
	metric metrics.SearchMetric
}

// NewSearch returns a new agent for actual game play during evaluation.
func NewSearch(mcts *searcher.MCTS) *Search {
	return &Search{mcts: mcts}
}

func (a *Search) ChooseAction(state *game.MatchState, side game.SideID) (game.Action, error) {
	return a.Decide(context.Background(), state, side)
}

// Decide is ChooseAction bounded by ctx.
func (a *Search) Decide(ctx context.Context, state *game.MatchState, side game.SideID) (game.Action, error) {
	root, metric, err := a.mcts.Simulate(ctx, state, side)
	if err != nil {
		return 0, err
	}
	a.metric = metric
	return root.BestAction(), nil
}

// LastMetric returns the metrics of the most recent search.
func (a *Search) LastMetric() metrics.SearchMetric {
	return a.metric
}
