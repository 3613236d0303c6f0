package engine

import (
	"monbattle/experiments/metrics"
	"monbattle/game"
)

type Engine interface {
	// Run plays a match till it is over or a max number of turns is reached
	Run() (winner game.Winner, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
