package dex

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"monbattle/game"
)

// ErrUnknownSpecies is returned when a team names a species missing from the dex.
var ErrUnknownSpecies = errors.New("unknown species")

// Dex is a read-only catalogue of species plus an optional default matchup.
type Dex struct {
	species map[string]*game.SpeciesSpec
	order   []string
	teams   [2][]string
}

// Species returns the named species.
func (d *Dex) Species(name string) (*game.SpeciesSpec, bool) {
	s, ok := d.species[name]
	return s, ok
}

// Names lists species in declaration order.
func (d *Dex) Names() []string {
	return append([]string(nil), d.order...)
}

// Team builds a full-HP side from exactly game.TeamSize species names.
func (d *Dex) Team(names []string) (game.Side, error) {
	if len(names) != game.TeamSize {
		return game.Side{}, fmt.Errorf("team must have %d members, got %d", game.TeamSize, len(names))
	}
	var specs [game.TeamSize]*game.SpeciesSpec
	for i, name := range names {
		s, ok := d.species[name]
		if !ok {
			return game.Side{}, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
		}
		specs[i] = s
	}
	return game.NewSide(specs), nil
}

// Teams builds the dex's configured matchup.
func (d *Dex) Teams() (game.Side, game.Side, error) {
	a, err := d.Team(d.teams[game.SideA])
	if err != nil {
		return game.Side{}, game.Side{}, fmt.Errorf("team a: %w", err)
	}
	b, err := d.Team(d.teams[game.SideB])
	if err != nil {
		return game.Side{}, game.Side{}, fmt.Errorf("team b: %w", err)
	}
	return a, b, nil
}

// NewMatch starts a match between the configured teams.
func (d *Dex) NewMatch(seed uint64) (*game.MatchState, error) {
	a, b, err := d.Teams()
	if err != nil {
		return nil, err
	}
	return game.NewMatchState(a, b, seed), nil
}

type yamlMove struct {
	Name     string `yaml:"name"`
	Element  string `yaml:"element"`
	Power    int    `yaml:"power"`
	Accuracy int    `yaml:"accuracy"`
	Priority int    `yaml:"priority"`
	Recoil   int    `yaml:"recoil"`
}

type yamlSpecies struct {
	Name    string     `yaml:"name"`
	Element string     `yaml:"element"`
	HP      int        `yaml:"hp"`
	Attack  int        `yaml:"attack"`
	Defense int        `yaml:"defense"`
	Speed   int        `yaml:"speed"`
	Moves   []yamlMove `yaml:"moves"`
}

type yamlDex struct {
	Species []yamlSpecies `yaml:"species"`
	Teams   struct {
		A []string `yaml:"a"`
		B []string `yaml:"b"`
	} `yaml:"teams"`
}

// Load reads a YAML dex from path. When no teams are configured the default
// matchup is used if its species exist.
func Load(path string) (*Dex, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dex: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML dex document.
func Parse(data []byte) (*Dex, error) {
	var raw yamlDex
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing dex: %w", err)
	}
	if len(raw.Species) == 0 {
		return nil, errors.New("dex has no species")
	}

	d := &Dex{species: make(map[string]*game.SpeciesSpec, len(raw.Species))}
	for _, ys := range raw.Species {
		spec, err := ys.build()
		if err != nil {
			return nil, err
		}
		if _, dup := d.species[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate species %q", spec.Name)
		}
		d.add(spec)
	}

	d.teams = [2][]string{raw.Teams.A, raw.Teams.B}
	if len(raw.Teams.A) == 0 && len(raw.Teams.B) == 0 {
		d.teams = defaultTeams()
	}
	return d, nil
}

func (d *Dex) add(spec *game.SpeciesSpec) {
	d.species[spec.Name] = spec
	d.order = append(d.order, spec.Name)
}

func (ys yamlSpecies) build() (*game.SpeciesSpec, error) {
	if ys.Name == "" {
		return nil, errors.New("species without a name")
	}
	element, err := game.ParseElement(ys.Element)
	if err != nil {
		return nil, fmt.Errorf("species %q: %w", ys.Name, err)
	}
	if len(ys.Moves) != 2 {
		return nil, fmt.Errorf("species %q: needs exactly 2 moves, got %d", ys.Name, len(ys.Moves))
	}

	spec := &game.SpeciesSpec{
		Name:    ys.Name,
		Element: element,
		MaxHP:   ys.HP,
		Attack:  ys.Attack,
		Defense: ys.Defense,
		Speed:   ys.Speed,
	}
	for i, ym := range ys.Moves {
		move, err := ym.build()
		if err != nil {
			return nil, fmt.Errorf("species %q: %w", ys.Name, err)
		}
		spec.Moves[i] = move
	}
	if err := Validate(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func (ym yamlMove) build() (*game.MoveSpec, error) {
	element, err := game.ParseElement(ym.Element)
	if err != nil {
		return nil, fmt.Errorf("move %q: %w", ym.Name, err)
	}
	return &game.MoveSpec{
		Name:          ym.Name,
		Element:       element,
		BasePower:     ym.Power,
		Accuracy:      ym.Accuracy,
		Priority:      ym.Priority,
		RecoilPercent: ym.Recoil,
	}, nil
}

// Validate checks that a species has usable stats and moves.
func Validate(spec *game.SpeciesSpec) error {
	if spec.MaxHP <= 0 || spec.Attack <= 0 || spec.Defense <= 0 || spec.Speed <= 0 {
		return fmt.Errorf("species %q: stats must be positive", spec.Name)
	}
	for _, m := range spec.Moves {
		if m == nil {
			return fmt.Errorf("species %q: missing move", spec.Name)
		}
		if m.BasePower <= 0 {
			return fmt.Errorf("species %q move %q: base power must be positive", spec.Name, m.Name)
		}
		if m.Accuracy < 0 || m.Accuracy > 100 {
			return fmt.Errorf("species %q move %q: accuracy %d out of range", spec.Name, m.Name, m.Accuracy)
		}
		if m.RecoilPercent < 0 || m.RecoilPercent > 100 {
			return fmt.Errorf("species %q move %q: recoil %d out of range", spec.Name, m.Name, m.RecoilPercent)
		}
	}
	return nil
}
