package game

import "fmt"

// Element is the elemental type of a species or move.
type Element int

const (
	Fire Element = iota
	Water
	Grass
	Normal
)

// NumElements is the size of the closed Element set.
const NumElements = 4

var elementNames = [NumElements]string{"Fire", "Water", "Grass", "Normal"}

func (e Element) String() string {
	if e < 0 || int(e) >= NumElements {
		return fmt.Sprintf("Element(%d)", int(e))
	}
	return elementNames[e]
}

// ParseElement maps a name such as "Fire" to its Element.
func ParseElement(name string) (Element, error) {
	for i, n := range elementNames {
		if n == name {
			return Element(i), nil
		}
	}
	return 0, fmt.Errorf("unknown element %q", name)
}

// MoveSpec is an immutable move template shared by every instance of a species.
type MoveSpec struct {
	Name          string
	Element       Element
	BasePower     int
	Accuracy      int // 0-100, 100 never misses
	Priority      int // Higher resolves first
	RecoilPercent int // 0-100 of damage dealt
}

// SpeciesSpec is an immutable species template.
type SpeciesSpec struct {
	Name    string
	Element Element
	MaxHP   int
	Attack  int
	Defense int
	Speed   int
	Moves   [2]*MoveSpec
}

// Combatant is a living instance of a species. Fainted holds iff HP is 0.
type Combatant struct {
	Spec    *SpeciesSpec
	HP      int
	Fainted bool
}

func NewCombatant(spec *SpeciesSpec) Combatant {
	return Combatant{Spec: spec, HP: spec.MaxHP}
}

// takeDamage subtracts amount, clamps at zero and faints the combatant at zero.
func (c *Combatant) takeDamage(amount int) {
	c.HP -= amount
	if c.HP <= 0 {
		c.HP = 0
		c.Fainted = true
	}
}

// HPRatio is the remaining fraction of max HP, 0 when fainted.
func (c *Combatant) HPRatio() float64 {
	if c.Fainted {
		return 0
	}
	return float64(c.HP) / float64(c.Spec.MaxHP)
}
