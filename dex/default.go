package dex

import "monbattle/game"

func mv(name string, element game.Element, power, accuracy, priority, recoil int) *game.MoveSpec {
	return &game.MoveSpec{
		Name:          name,
		Element:       element,
		BasePower:     power,
		Accuracy:      accuracy,
		Priority:      priority,
		RecoilPercent: recoil,
	}
}

func sp(name string, element game.Element, hp, attack, defense, speed int, m1, m2 *game.MoveSpec) *game.SpeciesSpec {
	return &game.SpeciesSpec{
		Name:    name,
		Element: element,
		MaxHP:   hp,
		Attack:  attack,
		Defense: defense,
		Speed:   speed,
		Moves:   [2]*game.MoveSpec{m1, m2},
	}
}

// Default returns the built-in eight species and the default matchup.
func Default() *Dex {
	d := &Dex{species: make(map[string]*game.SpeciesSpec, 8)}
	for _, spec := range []*game.SpeciesSpec{
		sp("Flameling", game.Fire, 60, 18, 10, 14,
			mv("Ember", game.Fire, 16, 100, 0, 0),
			mv("Fire Blast", game.Fire, 24, 85, 0, 0)),
		sp("Aquaff", game.Water, 65, 16, 12, 12,
			mv("Scald", game.Water, 16, 100, 0, 0),
			mv("Hydro Pump", game.Water, 22, 80, 0, 0)),
		sp("Leaflet", game.Grass, 55, 17, 11, 13,
			mv("Razor Leaf", game.Grass, 14, 95, 0, 0),
			mv("Solar Beam", game.Grass, 26, 100, 0, 0)),
		sp("Bulkwall", game.Normal, 80, 14, 16, 8,
			mv("Body Slam", game.Normal, 17, 100, 0, 0),
			mv("Giga Impact", game.Normal, 28, 90, 0, 0)),
		sp("Sparkit", game.Fire, 50, 19, 9, 16,
			mv("Flare Blitz", game.Fire, 26, 100, 0, 33),
			mv("Quick Attack", game.Normal, 8, 100, 1, 0)),
		sp("Torrento", game.Water, 70, 15, 14, 10,
			mv("Aqua Jet", game.Water, 10, 100, 1, 0),
			mv("Waterfall", game.Water, 18, 100, 0, 0)),
		sp("Sprouty", game.Grass, 58, 16, 12, 15,
			mv("Bullet Seed", game.Grass, 12, 100, 0, 0),
			mv("Wood Hammer", game.Grass, 24, 100, 0, 33)),
		sp("Stonecub", game.Normal, 75, 15, 15, 9,
			mv("Rock Slide", game.Normal, 18, 90, 0, 0),
			mv("Mach Punch", game.Normal, 10, 100, 1, 0)),
	} {
		d.add(spec)
	}
	d.teams = defaultTeams()
	return d
}

func defaultTeams() [2][]string {
	return [2][]string{
		{"Flameling", "Leaflet", "Stonecub"},
		{"Aquaff", "Sparkit", "Bulkwall"},
	}
}

// DefaultMatch starts the default matchup from the built-in dex.
func DefaultMatch(seed uint64) *game.MatchState {
	state, err := Default().NewMatch(seed)
	if err != nil {
		panic(err)
	}
	return state
}
