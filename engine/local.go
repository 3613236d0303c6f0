package engine

import (
	"fmt"
	"time"

	"monbattle/agent"
	"monbattle/experiments/metrics"
	"monbattle/game"
	"monbattle/meta"
	"monbattle/utils"

	"github.com/rs/zerolog/log"
)

// searchReporter is implemented by agents that search before acting.
type searchReporter interface {
	LastMetric() metrics.SearchMetric
}

type Local struct {
	State    *game.MatchState
	Agents   [2]agent.Agent
	MaxTurns int
	History  []game.JointAction
}

// LocalEngine drives a match between two in-process agents from state.
func LocalEngine(agents [2]agent.Agent, state *game.MatchState) *Local {
	for i, a := range agents {
		if a == nil {
			panic(fmt.Sprintf("agent %d is nil", i))
		}
	}
	return &Local{
		State:    state,
		Agents:   agents,
		MaxTurns: meta.MAX_TURNS,
	}
}

// Run executes the match loop until the match is over or MaxTurns is reached,
// in which case the winner is game.NoWinner.
func (e *Local) Run() (game.Winner, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		Seed:      e.State.Seed,
		StartTime: time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	for !e.State.Terminal && e.State.Turn < e.MaxTurns {
		var actions [2]game.Action
		for i, a := range e.Agents {
			side := game.SideID(i)
			action, err := e.chooseAction(a, side)
			if err != nil {
				return game.NoWinner, gameMetric, moveMetrics, err
			}
			actions[i] = action

			mm := metrics.MoveMetric{
				Turn:   e.State.Turn + 1,
				Side:   side.String(),
				Action: action.String(),
			}
			if reporter, ok := a.(searchReporter); ok {
				mm.SearchMetric = reporter.LastMetric()
			}
			moveMetrics = append(moveMetrics, mm)
		}

		next, err := game.ResolveTurn(e.State, actions[game.SideA], actions[game.SideB])
		if err != nil {
			return game.NoWinner, gameMetric, moveMetrics, fmt.Errorf("resolving turn %d: %w", e.State.Turn+1, err)
		}
		e.History = append(e.History, game.JointAction{A: actions[game.SideA], B: actions[game.SideB]})
		e.State = next
		log.Debug().Msgf("turn %d: A=%s B=%s", next.Turn, actions[game.SideA], actions[game.SideB])
	}

	if !e.State.Terminal {
		log.Warn().Msgf("stopped after %d turns without a winner", e.State.Turn)
	}

	gameMetric.Winner = e.State.Winner.String()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalTurns = e.State.Turn
	return e.State.Winner, gameMetric, moveMetrics, nil
}

// chooseAction asks an agent to act and replaces an illegal choice with the
// first legal action.
func (e *Local) chooseAction(a agent.Agent, side game.SideID) (game.Action, error) {
	legal := game.LegalActions(e.State, side)
	if len(legal) == 0 {
		return 0, fmt.Errorf("side %s has no legal actions at turn %d", side, e.State.Turn)
	}

	action, err := a.ChooseAction(e.State, side)
	if err != nil {
		return 0, fmt.Errorf("side %s choosing action: %w", side, err)
	}

	if !utils.Contains(legal, action) {
		log.Warn().Msgf("side %s chose illegal action %s at turn %d, forcing %s", side, action, e.State.Turn, legal[0])
		return legal[0], nil
	}
	return action, nil
}
