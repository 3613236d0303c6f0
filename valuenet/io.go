package valuenet

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type weightsFile struct {
	Layers  []int         `yaml:"layers"`
	Weights [][][]float64 `yaml:"weights"`
	Biases  [][]float64   `yaml:"biases"`
}

// Save writes the network weights to path as YAML.
func (n *Network) Save(path string) error {
	data, err := yaml.Marshal(weightsFile{Layers: n.layers, Weights: n.weights, Biases: n.biases})
	if err != nil {
		return fmt.Errorf("encoding weights: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating weights file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing weights file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming weights file: %w", err)
	}
	return nil
}

// Load reads network weights saved by Save.
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weights: %w", err)
	}
	var wf weightsFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing weights: %w", err)
	}

	n := &Network{layers: wf.Layers, weights: wf.Weights, biases: wf.Biases}
	if err := n.validate(); err != nil {
		return nil, fmt.Errorf("weights %s: %w", path, err)
	}
	return n, nil
}

func (n *Network) validate() error {
	if len(n.layers) < 2 || n.layers[0] != NumFeatures || n.layers[len(n.layers)-1] != 1 {
		return fmt.Errorf("invalid layer sizes %v", n.layers)
	}
	if len(n.weights) != len(n.layers)-1 || len(n.biases) != len(n.layers)-1 {
		return fmt.Errorf("expected %d weight layers", len(n.layers)-1)
	}
	for l, w := range n.weights {
		if len(w) != n.layers[l] || len(n.biases[l]) != n.layers[l+1] {
			return fmt.Errorf("layer %d has the wrong shape", l)
		}
		for _, row := range w {
			if len(row) != n.layers[l+1] {
				return fmt.Errorf("layer %d has the wrong shape", l)
			}
		}
	}
	return nil
}
