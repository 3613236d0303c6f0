package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts concurrently", func(t *testing.T) {
		c := NewCollector()
		c.Start(true)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(depth int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					c.AddEpisode()
					c.AddExpansion()
				}
				c.ObserveDepth(depth)
			}(i)
		}
		wg.Wait()
		c.AddTerminalLeaf()
		c.AddClamped()

		m := c.Complete()
		require.Equal(t, 800, m.Episodes)
		require.Equal(t, 800, m.Expansions)
		require.Equal(t, 1, m.TerminalLeaves)
		require.Equal(t, 1, m.Clamped)
		require.Equal(t, 7, m.MaxDepth)
		require.True(t, m.RAVE)
	})

	t.Run("start resets counters", func(t *testing.T) {
		c := NewCollector()
		c.Start(false)
		c.AddEpisode()
		c.Start(false)
		require.Equal(t, 0, c.Complete().Episodes)
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(true)
		c.AddEpisode()
		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "unit")
	require.NoError(t, err)

	require.NoError(t, w.WriteAgentConfigs([]AgentConfig{{ID: 1, Kind: "mcts", Episodes: 50}}))
	require.NoError(t, w.WriteGameRecords([]GameRecord{{ID: 1, Agent1: 1, Agent2: 2, GameMetric: GameMetric{Winner: "A", TotalTurns: 9}}}))
	require.NoError(t, w.WriteMoveRecords([]MoveRecord{{Game: 1, MoveMetric: MoveMetric{Turn: 1, Side: "A", Action: "move1"}}}))

	f, err := os.Open(filepath.Join(w.Dir(), "game_records.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "winner", rows[0][4])
	require.Equal(t, "A", rows[1][4])
	require.Equal(t, "9", rows[1][5])

	for _, name := range []string{"agent_configs.csv", "move_records.csv"} {
		_, err := os.Stat(filepath.Join(w.Dir(), name))
		require.NoError(t, err)
	}
}
