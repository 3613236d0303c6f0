package valuenet

import (
	"math"

	"monbattle/game"
)

// NumFeatures is the length of the vector returned by Features.
const NumFeatures = 30

const (
	statScale     = 20.0
	priorityScale = 5.0
	speedScale    = 5.0
	turnScale     = 30.0
)

// Features encodes state from side's point of view:
//
//	team HP ratios (own, then opponent)             6
//	active element one-hot (own, then opponent)     8
//	active attack, defense, speed, HP ratio (each)  8
//	element advantage, speed advantage              2
//	alive fractions                                 2
//	max move priority of each active                2
//	own share of total HP                           1
//	turn progress                                   1
func Features(state *game.MatchState, side game.SideID) []float32 {
	own := state.Side(side)
	opp := state.Side(side.Opponent())
	f := make([]float32, 0, NumFeatures)

	for _, s := range []*game.Side{own, opp} {
		for i := range s.Team {
			f = append(f, float32(s.Team[i].HPRatio()))
		}
	}

	ownActive, oppActive := own.ActiveCombatant(), opp.ActiveCombatant()
	for _, c := range []*game.Combatant{ownActive, oppActive} {
		var onehot [game.NumElements]float32
		onehot[c.Spec.Element] = 1
		f = append(f, onehot[:]...)
	}

	for _, c := range []*game.Combatant{ownActive, oppActive} {
		f = append(f,
			float32(float64(c.Spec.Attack)/statScale),
			float32(float64(c.Spec.Defense)/statScale),
			float32(float64(c.Spec.Speed)/statScale),
			float32(c.HPRatio()),
		)
	}

	advantage := (game.TypeMultiplier(ownActive.Spec.Element, oppActive.Spec.Element) -
		game.TypeMultiplier(oppActive.Spec.Element, ownActive.Spec.Element)) / 2
	speed := math.Tanh(float64(ownActive.Spec.Speed-oppActive.Spec.Speed) / speedScale)
	f = append(f, float32(advantage), float32(speed))

	f = append(f,
		float32(own.AliveCount())/game.TeamSize,
		float32(opp.AliveCount())/game.TeamSize,
	)

	f = append(f,
		float32(float64(maxPriority(ownActive.Spec))/priorityScale),
		float32(float64(maxPriority(oppActive.Spec))/priorityScale),
	)

	hpShare := 0.5
	if total := own.TotalHP() + opp.TotalHP(); total > 0 {
		hpShare = float64(own.TotalHP()) / float64(total)
	}
	f = append(f, float32(hpShare))

	f = append(f, float32(min(float64(state.Turn)/turnScale, 1)))
	return f
}

func maxPriority(spec *game.SpeciesSpec) int {
	p := spec.Moves[0].Priority
	for _, m := range spec.Moves[1:] {
		p = max(p, m.Priority)
	}
	return p
}
