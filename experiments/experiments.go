package experiments

import (
	"errors"
	"fmt"
	"os"

	"monbattle/agent"
	"monbattle/dex"
	"monbattle/engine"
	"monbattle/experiments/metrics"
	"monbattle/game"
	"monbattle/meta"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const NumGames = 30 // Per match up, when not configured

type Config struct {
	Name     string                `yaml:"name"`
	Games    int                   `yaml:"games"`
	Seed     uint64                `yaml:"seed"`
	Out      string                `yaml:"out"`
	Agents   []metrics.AgentConfig `yaml:"agents"`
	MatchUps [][2]int              `yaml:"matchups"` // Pairs of AgentConfig.ID
}

// LoadConfig reads a YAML experiment definition.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing experiment config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "experiment"
	}
	if c.Games == 0 {
		c.Games = NumGames
	}
	if c.Seed == 0 {
		c.Seed = meta.SEED
	}
	if c.Out == "" {
		c.Out = "experiments"
	}
}

func (c *Config) validate() error {
	if len(c.Agents) == 0 {
		return errors.New("experiment has no agents")
	}
	if len(c.MatchUps) == 0 {
		return errors.New("experiment has no matchups")
	}
	ids := make(map[int]bool, len(c.Agents))
	for _, a := range c.Agents {
		if ids[a.ID] {
			return fmt.Errorf("duplicate agent id %d", a.ID)
		}
		ids[a.ID] = true
	}
	for _, m := range c.MatchUps {
		for _, id := range m {
			if !ids[id] {
				return fmt.Errorf("matchup references unknown agent %d", id)
			}
		}
	}
	return nil
}

func (c *Config) agent(id int) metrics.AgentConfig {
	for _, a := range c.Agents {
		if a.ID == id {
			return a
		}
	}
	panic(fmt.Sprintf("unknown agent %d", id))
}

// Result tallies one matchup from the point of view of its first agent.
type Result struct {
	Agent1, Agent2 int
	Wins1, Wins2   int
	Draws          int
	Unfinished     int
}

// Run plays every matchup cfg.Games times, alternating which agent plays side A,
// and stores configs, games and moves as CSV under cfg.Out.
func Run(cfg *Config, d *dex.Dex) ([]Result, string, error) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	results := make([]Result, 0, len(cfg.MatchUps))

	log.Info().Msgf("starting %s experiment...", cfg.Name)

	for mi, matchup := range cfg.MatchUps {
		config1 := cfg.agent(matchup[0])
		config2 := cfg.agent(matchup[1])
		result := Result{Agent1: config1.ID, Agent2: config2.ID}

		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(cfg.MatchUps), config1, config2)

		for i := 0; i < cfg.Games; i++ {
			count++
			seed := cfg.Seed + uint64(count)
			sideA, sideB := config1, config2
			if i%2 == 1 {
				sideA, sideB = config2, config1
			}

			winner, gameMetric, moveMetrics, err := runGame(d, sideA, sideB, seed)
			if err != nil {
				return nil, "", fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}

			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     sideA.ID,
				Agent2:     sideB.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}
			result.tally(winner, i%2 == 1)

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %s", mi+1, len(cfg.MatchUps), i+1, winner)
		}
		results = append(results, result)
		log.Info().Msgf("completed matchup %d of %d: %+v", mi+1, len(cfg.MatchUps), result)
	}

	log.Info().Msgf("completed %s experiment", cfg.Name)

	// Store experiment metadata and results
	writer, err := metrics.NewWriter(cfg.Out, cfg.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(cfg.Agents); err != nil {
		return nil, "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return nil, "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return nil, "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")

	return results, writer.Dir(), nil
}

func (r *Result) tally(winner game.Winner, swapped bool) {
	switch winner {
	case game.Draw:
		r.Draws++
	case game.NoWinner:
		r.Unfinished++
	case game.WinnerA:
		if swapped {
			r.Wins2++
		} else {
			r.Wins1++
		}
	case game.WinnerB:
		if swapped {
			r.Wins1++
		} else {
			r.Wins2++
		}
	}
}

// runGame executes a single game between two agents and returns the winner
func runGame(d *dex.Dex, configA, configB metrics.AgentConfig, seed uint64) (game.Winner, metrics.GameMetric, []metrics.MoveMetric, error) {
	state, err := d.NewMatch(seed)
	if err != nil {
		return game.NoWinner, metrics.GameMetric{}, nil, err
	}

	agentA, err := NewAgent(configA, seed)
	if err != nil {
		return game.NoWinner, metrics.GameMetric{}, nil, err
	}
	agentB, err := NewAgent(configB, seed+1)
	if err != nil {
		return game.NoWinner, metrics.GameMetric{}, nil, err
	}

	e := engine.LocalEngine([2]agent.Agent{agentA, agentB}, state)
	return e.Run()
}
