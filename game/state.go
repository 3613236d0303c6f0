package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"golang.org/x/exp/rand"
)

// Side is one team: exactly TeamSize combatants and the index of the active one.
type Side struct {
	Team   [TeamSize]Combatant
	Active int
}

// NewSide builds a full-HP team with the first member active.
func NewSide(specs [TeamSize]*SpeciesSpec) Side {
	var side Side
	for i, spec := range specs {
		side.Team[i] = NewCombatant(spec)
	}
	return side
}

// ActiveCombatant returns the combatant currently on the field.
func (s *Side) ActiveCombatant() *Combatant {
	return &s.Team[s.Active]
}

// AliveCount returns the number of non-fainted combatants.
func (s *Side) AliveCount() int {
	alive := 0
	for i := range s.Team {
		if !s.Team[i].Fainted {
			alive++
		}
	}
	return alive
}

// Lost reports whether every combatant has fainted.
func (s *Side) Lost() bool {
	return s.AliveCount() == 0
}

// TotalHP sums the current HP of the team.
func (s *Side) TotalHP() int {
	total := 0
	for i := range s.Team {
		total += s.Team[i].HP
	}
	return total
}

// MatchState is a snapshot of a match. Callers treat it as immutable: ResolveTurn
// always returns a new value.
type MatchState struct {
	Sides    [2]Side
	Turn     int
	Terminal bool
	Winner   Winner
	Seed     uint64
}

// NewMatchState starts a match between two sides at turn 0.
func NewMatchState(a, b Side, seed uint64) *MatchState {
	s := &MatchState{
		Sides: [2]Side{a, b},
		Seed:  seed,
	}
	s.checkGameOver()
	return s
}

// Copy returns an independent snapshot. Species data is shared by reference.
func (s *MatchState) Copy() *MatchState {
	c := *s
	return &c
}

func (s *MatchState) Side(id SideID) *Side {
	return &s.Sides[id]
}

// Hash fingerprints the mutable parts of the state.
func (s *MatchState) Hash() uint64 {
	hasher := fnv.New64a()

	binary.Write(hasher, binary.LittleEndian, int64(s.Turn))
	binary.Write(hasher, binary.LittleEndian, s.Seed)
	binary.Write(hasher, binary.LittleEndian, int64(s.Winner))

	for i := range s.Sides {
		side := &s.Sides[i]
		binary.Write(hasher, binary.LittleEndian, int64(side.Active))
		for j := range side.Team {
			binary.Write(hasher, binary.LittleEndian, int64(side.Team[j].HP))
		}
	}

	return hasher.Sum64()
}

// ResolveTurn applies both sides' simultaneous actions and returns the next state.
// The input state is never modified.
func ResolveTurn(state *MatchState, actionA, actionB Action) (*MatchState, error) {
	if state.Terminal {
		return nil, ErrMatchOver
	}

	actions := [2]Action{actionA, actionB}
	for i, action := range actions {
		if err := state.validate(SideID(i), action); err != nil {
			return nil, err
		}
	}

	next := state.Copy()
	next.Turn++
	stream := turnStream(next.Seed, next.Turn)

	// Switches commit the turn and resolve before any attack
	for i, action := range actions {
		if action.IsSwitch() {
			next.Sides[i].Active = action.SwitchTarget()
		}
	}

	for _, side := range next.attackOrder(actions) {
		next.executeAttack(side, actions[side], stream)
	}

	next.checkGameOver()
	return next, nil
}

// turnStream derives the accuracy stream of a turn from the match seed.
func turnStream(seed uint64, turn int) *rand.Rand {
	return rand.New(rand.NewSource(seed + uint64(turn)))
}

func (s *MatchState) validate(id SideID, action Action) error {
	if !action.IsValid() {
		return fmt.Errorf("%w: side %s sent unknown action %d", ErrInvalidAction, id, uint8(action))
	}

	side := s.Side(id)
	if action.IsSwitch() {
		target := action.SwitchTarget()
		if target == side.Active {
			return fmt.Errorf("%w: side %s switched to its active slot %d", ErrInvalidAction, id, target)
		}
		if side.Team[target].Fainted {
			return fmt.Errorf("%w: side %s switched to fainted slot %d", ErrInvalidAction, id, target)
		}
		return nil
	}

	if side.ActiveCombatant().Fainted {
		return fmt.Errorf("%w: side %s attacked while forced to switch", ErrInvalidAction, id)
	}
	return nil
}

// attackOrder sorts attacking sides by move priority, then active speed, then side.
func (s *MatchState) attackOrder(actions [2]Action) []SideID {
	order := make([]SideID, 0, 2)
	for i, action := range actions {
		if action.IsAttack() {
			order = append(order, SideID(i))
		}
	}
	if len(order) == 2 && s.movesBefore(order[1], actions[order[1]], order[0], actions[order[0]]) {
		order[0], order[1] = order[1], order[0]
	}
	return order
}

// movesBefore reports whether side x acting with ax executes strictly before side y acting with ay.
func (s *MatchState) movesBefore(x SideID, ax Action, y SideID, ay Action) bool {
	cx, cy := s.Side(x).ActiveCombatant(), s.Side(y).ActiveCombatant()
	px, py := cx.Spec.Moves[ax.MoveSlot()].Priority, cy.Spec.Moves[ay.MoveSlot()].Priority
	if px != py {
		return px > py
	}
	if cx.Spec.Speed != cy.Spec.Speed {
		return cx.Spec.Speed > cy.Spec.Speed
	}
	return x < y
}

func (s *MatchState) executeAttack(id SideID, action Action, stream *rand.Rand) {
	attacker := s.Side(id).ActiveCombatant()
	defender := s.Side(id.Opponent()).ActiveCombatant()

	// Fainted earlier this turn
	if attacker.Fainted {
		return
	}

	move := attacker.Spec.Moves[action.MoveSlot()]
	if !hits(move, stream) {
		return
	}

	damage := Damage(move, attacker.Spec, defender.Spec)
	defender.takeDamage(damage)

	if recoil := Recoil(move, damage); recoil > 0 {
		attacker.takeDamage(recoil)
	}
}

// hits rolls accuracy; moves with accuracy 100 or more never consume a draw.
func hits(move *MoveSpec, stream *rand.Rand) bool {
	if move.Accuracy >= 100 {
		return true
	}
	roll := stream.Intn(100) + 1
	return roll <= move.Accuracy
}

func (s *MatchState) checkGameOver() {
	lostA := s.Sides[SideA].Lost()
	lostB := s.Sides[SideB].Lost()

	switch {
	case lostA && lostB:
		s.Terminal, s.Winner = true, Draw
	case lostA:
		s.Terminal, s.Winner = true, WinnerB
	case lostB:
		s.Terminal, s.Winner = true, WinnerA
	}
}
