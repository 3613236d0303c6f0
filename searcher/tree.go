package searcher

import (
	"monbattle/game"

	"golang.org/x/exp/rand"
)

const noParent = -1

type amafStat struct {
	count int
	value float64
}

// amafTable is indexed by side then action
type amafTable [2][game.NumActions]amafStat

type node struct {
	parent   int
	action   game.JointAction // Edge from parent
	state    *game.MatchState
	children map[game.JointAction]int
	edges    []game.JointAction // Expansion order of children
	untried  []game.JointAction
	visits   int
	value    float64 // Sum of evaluations from the root side's perspective
	amaf     amafTable
}

func (n *node) expandable() bool {
	return !n.state.Terminal && len(n.untried) > 0
}

func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.value / float64(n.visits)
}

// tree is an arena of nodes addressed by index; index 0 is the root.
type tree struct {
	nodes []node
}

func newTree(state *game.MatchState, rng *rand.Rand) *tree {
	t := &tree{nodes: make([]node, 0, 64)}
	t.add(noParent, game.JointAction{}, state, rng)
	return t
}

func (t *tree) get(id int) *node {
	return &t.nodes[id]
}

// add appends a node for state and links it under parent. Untried joint actions
// are shuffled so that popping from the end samples uniformly.
func (t *tree) add(parent int, action game.JointAction, state *game.MatchState, rng *rand.Rand) int {
	untried := game.JointActions(state)
	rng.Shuffle(len(untried), func(i, j int) {
		untried[i], untried[j] = untried[j], untried[i]
	})

	id := len(t.nodes)
	t.nodes = append(t.nodes, node{
		parent:   parent,
		action:   action,
		state:    state,
		children: make(map[game.JointAction]int, len(untried)),
		untried:  untried,
	})

	if parent != noParent {
		p := t.get(parent)
		p.children[action] = id
		p.edges = append(p.edges, action)
	}
	return id
}

// popUntried removes and returns a random untried joint action of id.
func (t *tree) popUntried(id int) game.JointAction {
	n := t.get(id)
	last := len(n.untried) - 1
	action := n.untried[last]
	n.untried = n.untried[:last]
	return action
}
