package valuenet

import (
	"fmt"
	"math"

	"monbattle/game"

	"golang.org/x/exp/rand"
)

// DefaultLayers is the input, hidden and output layer sizes.
var DefaultLayers = []int{NumFeatures, 64, 32, 1}

// Network is a small fully connected regressor: ReLU hidden layers and a
// sigmoid output estimating the win probability of the encoded side.
type Network struct {
	layers  []int
	weights [][][]float64 // weights[l][i][j] from unit i of layer l to unit j of layer l+1
	biases  [][]float64
}

// New builds a network with Xavier-uniform weights drawn from seed and zero biases.
func New(layers []int, seed uint64) (*Network, error) {
	if len(layers) < 2 || layers[len(layers)-1] != 1 {
		return nil, fmt.Errorf("invalid layer sizes %v", layers)
	}
	if layers[0] != NumFeatures {
		return nil, fmt.Errorf("input layer must have %d units, got %d", NumFeatures, layers[0])
	}

	rng := rand.New(rand.NewSource(seed))
	n := &Network{layers: append([]int(nil), layers...)}
	for l := 0; l < len(layers)-1; l++ {
		fanIn, fanOut := layers[l], layers[l+1]
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
		w := make([][]float64, fanIn)
		for i := range w {
			w[i] = make([]float64, fanOut)
			for j := range w[i] {
				w[i][j] = (rng.Float64()*2 - 1) * limit
			}
		}
		n.weights = append(n.weights, w)
		n.biases = append(n.biases, make([]float64, fanOut))
	}
	return n, nil
}

// NewDefault builds a network with DefaultLayers.
func NewDefault(seed uint64) *Network {
	n, err := New(DefaultLayers, seed)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *Network) Layers() []int {
	return append([]int(nil), n.layers...)
}

// Predict returns the network output for a feature vector.
func (n *Network) Predict(features []float32) float64 {
	activations := n.forward(features)
	return activations[len(activations)-1][0]
}

// Evaluate scores state for side, exact at terminal states.
func (n *Network) Evaluate(state *game.MatchState, side game.SideID) float64 {
	if state.Terminal {
		return game.Outcome(state, side)
	}
	return n.Predict(Features(state, side))
}

// forward returns the activations of every layer, input included.
func (n *Network) forward(features []float32) [][]float64 {
	if len(features) != n.layers[0] {
		panic(fmt.Sprintf("expected %d features, got %d", n.layers[0], len(features)))
	}

	input := make([]float64, len(features))
	for i, v := range features {
		input[i] = float64(v)
	}
	activations := [][]float64{input}

	last := len(n.weights) - 1
	for l, w := range n.weights {
		in := activations[l]
		out := append([]float64(nil), n.biases[l]...)
		for i, x := range in {
			if x == 0 {
				continue
			}
			for j, wij := range w[i] {
				out[j] += x * wij
			}
		}
		for j := range out {
			if l == last {
				out[j] = sigmoid(out[j])
			} else {
				out[j] = max(0, out[j])
			}
		}
		activations = append(activations, out)
	}
	return activations
}

// TrainStep applies one gradient descent step on the squared error against
// target and returns that error before the update.
func (n *Network) TrainStep(features []float32, target float64, learningRate float64) float64 {
	activations := n.forward(features)
	output := activations[len(activations)-1][0]
	diff := output - target

	// Output delta through the sigmoid
	delta := []float64{diff * output * (1 - output)}

	for l := len(n.weights) - 1; l >= 0; l-- {
		in := activations[l]
		w := n.weights[l]

		// Propagate before updating weights of this layer
		var prev []float64
		if l > 0 {
			prev = make([]float64, len(in))
			for i := range in {
				if in[i] <= 0 { // ReLU derivative
					continue
				}
				sum := 0.0
				for j, d := range delta {
					sum += w[i][j] * d
				}
				prev[i] = sum
			}
		}

		for i, x := range in {
			for j, d := range delta {
				w[i][j] -= learningRate * x * d
			}
		}
		for j, d := range delta {
			n.biases[l][j] -= learningRate * d
		}
		delta = prev
	}
	return diff * diff
}

func sigmoid(x float64) float64 {
	x = min(500, max(-500, x))
	return 1 / (1 + math.Exp(-x))
}
