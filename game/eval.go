package game

// Outcome returns the exact result of a terminal state for side: 1 win, 0 loss, 0.5 draw.
// Non-terminal states are reported as 0.5.
func Outcome(state *MatchState, side SideID) float64 {
	switch state.Winner {
	case WinnerA:
		if side == SideA {
			return 1
		}
		return 0
	case WinnerB:
		if side == SideB {
			return 1
		}
		return 0
	default:
		return 0.5
	}
}

// EvaluateHP scores a position from material alone: alive combatants and HP share
// weigh 30% each around an even 0.5, nudged by super-effective moves on the field.
func EvaluateHP(state *MatchState, side SideID) float64 {
	if state.Terminal {
		return Outcome(state, side)
	}

	own := state.Side(side)
	opp := state.Side(side.Opponent())

	aliveScore := float64(own.AliveCount()-opp.AliveCount()) / (2 * TeamSize)
	hpScore := normalize(float64(own.TotalHP()), float64(opp.TotalHP()))
	typeScore := typeAdvantage(own.ActiveCombatant(), opp.ActiveCombatant())

	return clamp01(0.5 + 0.3*aliveScore + 0.3*hpScore + typeScore)
}

func typeAdvantage(own, opp *Combatant) float64 {
	if own.Fainted || opp.Fainted {
		return 0
	}
	score := 0.0
	for _, move := range own.Spec.Moves {
		if TypeMultiplier(move.Element, opp.Spec.Element) > 1.5 {
			score += 0.05
		}
	}
	for _, move := range opp.Spec.Moves {
		if TypeMultiplier(move.Element, own.Spec.Element) > 1.5 {
			score -= 0.05
		}
	}
	return score
}

// normalize converts two values into a single score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
