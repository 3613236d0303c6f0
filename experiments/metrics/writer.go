package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped folder for experiment name under root.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

// Dir is the folder the writer stores files in.
func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "kind", "evaluator", "episodes", "exploration", "rave", "cutoff", "weights"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Kind,
			config.Evaluator,
			strconv.Itoa(config.Episodes),
			strconv.FormatFloat(config.Exploration, 'f', -1, 64),
			strconv.FormatFloat(config.RAVE, 'f', -1, 64),
			strconv.Itoa(config.Cutoff),
			config.Weights,
		})
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent1", "agent2", "seed", "winner", "turns", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.FormatUint(record.Seed, 10),
			record.Winner,
			strconv.Itoa(record.TotalTurns),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "turn", "side", "action", "duration", "episodes", "expansions", "terminal_leaves", "clamped", "max_depth", "rave"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Turn),
			record.Side,
			record.Action,
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Expansions),
			strconv.Itoa(record.TerminalLeaves),
			strconv.Itoa(record.Clamped),
			strconv.Itoa(record.MaxDepth),
			strconv.FormatBool(record.RAVE),
		})
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
