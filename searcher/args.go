package searcher

// Hyperparameters for MCTS

const CSquared = 2.0 // Exploration constant, weight sqrt(2)

const DefaultRAVE = 500 // RAVE equivalence constant k

// Evaluations are win probabilities for the searching side
const Win = 1.0
const Loss = 0.0
const Even = 0.5
