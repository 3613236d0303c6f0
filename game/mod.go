package game

import (
	"errors"
	"fmt"
)

// TeamSize is the number of combatants on each side.
const TeamSize = 3

var (
	// ErrInvalidAction is returned when an action is not legal in the given state.
	ErrInvalidAction = errors.New("invalid action")
	// ErrMatchOver is returned when a turn is requested on a terminal state.
	ErrMatchOver = errors.New("match is over")
)

// SideID identifies one of the two teams.
type SideID int

const (
	SideA SideID = iota
	SideB
)

func (s SideID) Opponent() SideID {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s SideID) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Winner is the outcome of a match. NoWinner means the match is still running.
type Winner int

const (
	NoWinner Winner = iota
	WinnerA
	WinnerB
	Draw
)

func (w Winner) String() string {
	switch w {
	case NoWinner:
		return "none"
	case WinnerA:
		return "A"
	case WinnerB:
		return "B"
	case Draw:
		return "draw"
	default:
		return fmt.Sprintf("Winner(%d)", int(w))
	}
}

// Action is one side's choice for a turn.
type Action uint8

const (
	Move1 Action = iota
	Move2
	SwitchTo0
	SwitchTo1
	SwitchTo2
)

// NumActions is the size of the closed Action enumeration.
const NumActions = 5

// Actions lists every action in enumeration order.
var Actions = [NumActions]Action{Move1, Move2, SwitchTo0, SwitchTo1, SwitchTo2}

func (a Action) IsValid() bool {
	return a < NumActions
}

func (a Action) IsSwitch() bool {
	return a >= SwitchTo0 && a <= SwitchTo2
}

func (a Action) IsAttack() bool {
	return a == Move1 || a == Move2
}

// MoveSlot returns the move index (0 or 1) of an attack action.
func (a Action) MoveSlot() int {
	if !a.IsAttack() {
		panic(fmt.Sprintf("action %s is not an attack", a))
	}
	return int(a - Move1)
}

// SwitchTarget returns the team index (0..2) of a switch action.
func (a Action) SwitchTarget() int {
	if !a.IsSwitch() {
		panic(fmt.Sprintf("action %s is not a switch", a))
	}
	return int(a - SwitchTo0)
}

// SwitchAction returns the switch action targeting the given team slot.
func SwitchAction(slot int) Action {
	return SwitchTo0 + Action(slot)
}

func (a Action) String() string {
	switch a {
	case Move1:
		return "move1"
	case Move2:
		return "move2"
	case SwitchTo0:
		return "switch0"
	case SwitchTo1:
		return "switch1"
	case SwitchTo2:
		return "switch2"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// JointAction is the pair of actions both sides commit to in one turn.
type JointAction struct {
	A Action
	B Action
}

// Of returns the component chosen by the given side.
func (j JointAction) Of(side SideID) Action {
	if side == SideA {
		return j.A
	}
	return j.B
}

// Joint builds a joint action from one side's action and its opponent's.
func Joint(side SideID, own, opponent Action) JointAction {
	if side == SideA {
		return JointAction{A: own, B: opponent}
	}
	return JointAction{A: opponent, B: own}
}

func (j JointAction) String() string {
	return fmt.Sprintf("(%s,%s)", j.A, j.B)
}

// Evaluate scores a state in [0, 1] as the estimated win probability of side.
type Evaluate func(state *MatchState, side SideID) float64
