package evaluator

import (
	"monbattle/game"
	"monbattle/searcher"
)

// Func adapts a game.Evaluate to a searcher.Evaluator.
func Func(evaluate game.Evaluate) searcher.Evaluator {
	return searcher.EvaluatorFunc(evaluate)
}

// Heuristic scores positions from material and type matchups without playing them out.
func Heuristic() searcher.Evaluator {
	return Func(game.EvaluateHP)
}
