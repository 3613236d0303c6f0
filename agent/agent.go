package agent

import (
	"fmt"

	"monbattle/game"
	"monbattle/searcher"
	"monbattle/utils"

	"golang.org/x/exp/rand"
)

type Agent interface {
	// ChooseAction returns the action side commits to this turn
	ChooseAction(state *game.MatchState, side game.SideID) (game.Action, error)
}

// legalActions returns the legal actions of side or an error when there are none.
func legalActions(state *game.MatchState, side game.SideID) ([]game.Action, error) {
	if state.Terminal {
		return nil, game.ErrMatchOver
	}
	legal := game.LegalActions(state, side)
	if len(legal) == 0 {
		return nil, fmt.Errorf("%w: side %s at turn %d", searcher.ErrNoLegalActions, side, state.Turn)
	}
	return legal, nil
}

type random struct {
	rng *rand.Rand
}

// NewRandom returns an agent choosing uniformly among legal actions.
func NewRandom(seed uint64) Agent {
	return &random{rng: rand.New(rand.NewSource(seed))}
}

func (a *random) ChooseAction(state *game.MatchState, side game.SideID) (game.Action, error) {
	legal, err := legalActions(state, side)
	if err != nil {
		return 0, err
	}
	return legal[a.rng.Intn(len(legal))], nil
}

type greedy struct {
	rng *rand.Rand
}

// NewGreedy returns an agent that attacks with the best expected damage and
// switches at random when forced.
func NewGreedy(seed uint64) Agent {
	return &greedy{rng: rand.New(rand.NewSource(seed))}
}

func (a *greedy) ChooseAction(state *game.MatchState, side game.SideID) (game.Action, error) {
	legal, err := legalActions(state, side)
	if err != nil {
		return 0, err
	}

	own := state.Side(side).ActiveCombatant()
	opp := state.Side(side.Opponent()).ActiveCombatant()

	if attacks := utils.Filter(legal, game.Action.IsAttack); len(attacks) > 0 {
		return utils.ArgMax(attacks, func(action game.Action) float64 {
			return ExpectedDamage(own.Spec.Moves[action.MoveSlot()], own.Spec, opp.Spec)
		}), nil
	}
	return legal[a.rng.Intn(len(legal))], nil
}

// ExpectedDamage weighs damage by accuracy and penalizes half the recoil.
func ExpectedDamage(move *game.MoveSpec, attacker, defender *game.SpeciesSpec) float64 {
	damage := float64(game.Damage(move, attacker, defender))
	expected := damage * float64(move.Accuracy) / 100
	if move.RecoilPercent > 0 {
		expected -= damage * float64(move.RecoilPercent) / 100 * 0.5
	}
	return expected
}
