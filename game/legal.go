package game

// LegalActions returns the actions side may take, attacks first then switches in
// slot order. A fainted active combatant forces a switch. Terminal states have none.
func LegalActions(state *MatchState, id SideID) []Action {
	if state.Terminal {
		return nil
	}

	side := state.Side(id)
	actions := make([]Action, 0, NumActions)
	if !side.ActiveCombatant().Fainted {
		actions = append(actions, Move1, Move2)
	}
	for i := range side.Team {
		if i != side.Active && !side.Team[i].Fainted {
			actions = append(actions, SwitchAction(i))
		}
	}
	return actions
}

// JointActions returns the cross product of both sides' legal actions, A-major.
func JointActions(state *MatchState) []JointAction {
	legalA := LegalActions(state, SideA)
	legalB := LegalActions(state, SideB)

	joint := make([]JointAction, 0, len(legalA)*len(legalB))
	for _, a := range legalA {
		for _, b := range legalB {
			joint = append(joint, JointAction{A: a, B: b})
		}
	}
	return joint
}
