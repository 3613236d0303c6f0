package game

import "math"

// typeChart[attacking][defending]; pairs not listed are neutral.
var typeChart = map[Element]map[Element]float64{
	Fire:  {Grass: 2.0, Water: 0.5},
	Water: {Fire: 2.0, Grass: 0.5},
	Grass: {Water: 2.0, Fire: 0.5},
}

// TypeMultiplier returns the effectiveness of an attacking element against a defending one.
func TypeMultiplier(attacking, defending Element) float64 {
	if row, ok := typeChart[attacking]; ok {
		if m, ok := row[defending]; ok {
			return m
		}
	}
	return 1.0
}

// Damage computes the damage move deals from attacker to defender, never less than 1.
func Damage(move *MoveSpec, attacker, defender *SpeciesSpec) int {
	multiplier := TypeMultiplier(move.Element, defender.Element)
	defense := max(defender.Defense, 1)
	raw := float64(move.BasePower) * (float64(attacker.Attack) / float64(defense)) * multiplier
	return max(int(math.Floor(raw)), 1)
}

// Recoil is the HP an attacker loses after dealing damage with move.
func Recoil(move *MoveSpec, damage int) int {
	if move.RecoilPercent <= 0 {
		return 0
	}
	return max(1, damage*move.RecoilPercent/100)
}
