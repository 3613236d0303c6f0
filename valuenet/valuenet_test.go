package valuenet

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"monbattle/dex"
	"monbattle/game"

	"github.com/stretchr/testify/require"
)

func TestFeatures(t *testing.T) {
	state := dex.DefaultMatch(1)

	f := Features(state, game.SideA)
	require.Len(t, f, NumFeatures)

	// Full HP teams
	for i := 0; i < 6; i++ {
		require.Equal(t, float32(1), f[i])
	}
	// Flameling is Fire, Aquaff is Water
	require.Equal(t, []float32{1, 0, 0, 0}, f[6:10])
	require.Equal(t, []float32{0, 1, 0, 0}, f[10:14])
	// Flameling attack 18 / 20
	require.InDelta(t, 0.9, f[14], 1e-6)
	// Fire into Water is 0.5, Water into Fire is 2
	require.InDelta(t, -0.75, f[22], 1e-6)
	require.InDelta(t, math.Tanh(2.0/5.0), f[23], 1e-6)
	require.Equal(t, float32(1), f[24])
	require.Equal(t, float32(0), f[26], "No priority moves on either lead")
	require.InDelta(t, 190.0/385.0, f[28], 1e-6)
	require.Equal(t, float32(0), f[29])

	mirrored := Features(state, game.SideB)
	require.Equal(t, f[0:3], mirrored[3:6], "Perspective should swap teams")
	require.InDelta(t, 0.75, mirrored[22], 1e-6)
}

func TestNetwork(t *testing.T) {
	t.Run("predicts probabilities", func(t *testing.T) {
		n := NewDefault(1)
		p := n.Predict(Features(dex.DefaultMatch(1), game.SideA))
		require.Greater(t, p, 0.0)
		require.Less(t, p, 1.0)
	})

	t.Run("same seed gives the same network", func(t *testing.T) {
		f := Features(dex.DefaultMatch(1), game.SideA)
		require.Equal(t, NewDefault(5).Predict(f), NewDefault(5).Predict(f))
		require.NotEqual(t, NewDefault(5).Predict(f), NewDefault(6).Predict(f))
	})

	t.Run("training reduces the error", func(t *testing.T) {
		n := NewDefault(2)
		f := Features(dex.DefaultMatch(1), game.SideA)

		first := n.TrainStep(f, 1.0, 0.1)
		var last float64
		for i := 0; i < 200; i++ {
			last = n.TrainStep(f, 1.0, 0.1)
		}
		require.Less(t, last, first)
		require.Greater(t, n.Predict(f), 0.8)
	})

	t.Run("terminal states are exact", func(t *testing.T) {
		state := dex.DefaultMatch(1)
		state.Terminal, state.Winner = true, game.WinnerB
		n := NewDefault(3)
		require.Equal(t, 0.0, n.Evaluate(state, game.SideA))
		require.Equal(t, 1.0, n.Evaluate(state, game.SideB))
	})

	t.Run("invalid layers", func(t *testing.T) {
		_, err := New([]int{NumFeatures, 8, 2}, 1)
		require.Error(t, err)
		_, err = New([]int{10, 1}, 1)
		require.Error(t, err)
	})
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")
	n, err := New([]int{NumFeatures, 8, 1}, 4)
	require.NoError(t, err)

	require.NoError(t, n.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	f := Features(dex.DefaultMatch(2), game.SideB)
	require.InDelta(t, n.Predict(f), loaded.Predict(f), 1e-12)
	require.Equal(t, n.Layers(), loaded.Layers())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "Temporary file should be renamed into place")

	require.NoError(t, os.WriteFile(path, []byte("layers: [30, 1]\nweights: []\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
}
