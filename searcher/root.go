package searcher

import "monbattle/game"

// Root exposes the statistics of a finished search for the searching side.
type Root struct {
	tree  *tree
	side  game.SideID
	legal []game.Action
}

// ActionStat aggregates the root children sharing one own action.
type ActionStat struct {
	Action    game.Action
	Visits    int     // Summed over every explored opponent reply
	Mean      float64 // Visit-weighted mean value
	WorstCase float64 // Minimum mean over explored opponent replies, 0 when Replies is 0
	Replies   int     // Number of explored opponent replies
}

// Side is the side the search was run for.
func (r *Root) Side() game.SideID {
	return r.side
}

// Visits returns the total visit count per legal own action.
func (r *Root) Visits() map[game.Action]int {
	visits := make(map[game.Action]int, len(r.legal))
	for _, stat := range r.Stats() {
		visits[stat.Action] = stat.Visits
	}
	return visits
}

// Value is the mean evaluation of the whole search.
func (r *Root) Value() float64 {
	return r.tree.get(0).mean()
}

// Episodes is the number of completed simulations.
func (r *Root) Episodes() int {
	return r.tree.get(0).visits
}

// Stats returns one entry per legal own action, in legal action order.
func (r *Root) Stats() []ActionStat {
	index := make(map[game.Action]int, len(r.legal))
	stats := make([]ActionStat, len(r.legal))
	for i, action := range r.legal {
		index[action] = i
		stats[i] = ActionStat{Action: action}
	}

	root := r.tree.get(0)
	values := make([]float64, len(r.legal))
	for _, joint := range root.edges {
		child := r.tree.get(root.children[joint])
		i, ok := index[joint.Of(r.side)]
		if !ok || child.visits == 0 {
			continue
		}
		if stats[i].Replies == 0 || child.mean() < stats[i].WorstCase {
			stats[i].WorstCase = child.mean()
		}
		stats[i].Visits += child.visits
		stats[i].Replies++
		values[i] += child.value
	}

	for i := range stats {
		if stats[i].Visits > 0 {
			stats[i].Mean = values[i] / float64(stats[i].Visits)
		}
	}
	return stats
}

// BestAction picks the own action whose worst explored opponent reply is best.
// Ties and unexplored actions fall back to the greatest visit count.
func (r *Root) BestAction() game.Action {
	stats := r.Stats()
	return bestWorstCase(stats)
}

func bestWorstCase(stats []ActionStat) game.Action {
	if len(stats) == 0 {
		panic("no actions to choose from")
	}

	best := -1
	for i, stat := range stats {
		if stat.Replies == 0 {
			continue
		}
		if best == -1 ||
			stat.WorstCase > stats[best].WorstCase ||
			(stat.WorstCase == stats[best].WorstCase && stat.Visits > stats[best].Visits) {
			best = i
		}
	}
	if best != -1 {
		return stats[best].Action
	}

	// Nothing explored
	best = 0
	for i, stat := range stats {
		if stat.Visits > stats[best].Visits {
			best = i
		}
	}
	return stats[best].Action
}
