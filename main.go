package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"monbattle/agent"
	"monbattle/dex"
	"monbattle/engine"
	"monbattle/experiments"
	"monbattle/experiments/metrics"
	"monbattle/meta"
	"monbattle/selfplay"
	"monbattle/valuenet"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	mode     string
	config   string
	dexPath  string
	episodes int
	seed     uint64
	games    int
	out      string
	weights  string
	agentA   string
	agentB   string
	rave     float64
	epochs   int
	rate     float64
	players  string
	temp     float64
}

func main() {
	var o options
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&o.mode, "mode", "match", "Run mode: match, experiment, selfplay or train")
	flag.StringVar(&o.config, "config", "", "Experiment definition (YAML)")
	flag.StringVar(&o.dexPath, "dex", "", "Species and teams (YAML), built-in dex when empty")
	flag.IntVar(&o.episodes, "episodes", meta.EPISODES, "Search episodes per move")
	flag.Uint64Var(&o.seed, "seed", meta.SEED, "Match and search seed")
	flag.IntVar(&o.games, "games", 100, "Number of self-play games")
	flag.StringVar(&o.out, "out", "samples.parquet", "Self-play samples file")
	flag.StringVar(&o.weights, "weights", "weights.yaml", "Value network weights file")
	flag.StringVar(&o.agentA, "a", "mcts", "Side A agent: random, greedy, mcts or value")
	flag.StringVar(&o.agentB, "b", "greedy", "Side B agent: random, greedy, mcts or value")
	flag.Float64Var(&o.rave, "rave", 0, "RAVE constant for mcts agents, 0 disables")
	flag.IntVar(&o.epochs, "epochs", 10, "Training epochs")
	flag.Float64Var(&o.rate, "lr", 0.001, "Training learning rate")
	flag.StringVar(&o.players, "selfplay-agent", "random", "Self-play agents: random or search")
	flag.Float64Var(&o.temp, "temperature", meta.TEMPERATURE, "Self-play sampling temperature for search agents")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Msgf("invalid log level %q", *logLevel)
	}
	zerolog.SetGlobalLevel(level)

	d := dex.Default()
	if o.dexPath != "" {
		d, err = dex.Load(o.dexPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load dex")
		}
	}

	switch o.mode {
	case "match":
		err = runMatch(o, d)
	case "experiment":
		err = runExperiment(o, d)
	case "selfplay":
		err = runSelfPlay(o, d)
	case "train":
		err = runTraining(o)
	default:
		err = fmt.Errorf("unknown mode %q", o.mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", o.mode)
	}
}

func agentConfig(id int, kind string, o options) metrics.AgentConfig {
	config := metrics.AgentConfig{ID: id, Kind: kind, Episodes: o.episodes, RAVE: o.rave}
	if kind == "value" {
		config.Kind = "mcts"
		config.Evaluator = "value"
		config.Weights = o.weights
	}
	return config
}

func runMatch(o options, d *dex.Dex) error {
	state, err := d.NewMatch(o.seed)
	if err != nil {
		return err
	}

	var agents [2]agent.Agent
	for i, kind := range []string{o.agentA, o.agentB} {
		agents[i], err = experiments.NewAgent(agentConfig(i+1, kind, o), o.seed+uint64(i))
		if err != nil {
			return err
		}
	}

	e := engine.LocalEngine(agents, state)
	winner, gameMetric, _, err := e.Run()
	if err != nil {
		return err
	}

	for i, joint := range e.History {
		log.Info().Msgf("turn %d: A=%s B=%s", i+1, joint.A, joint.B)
	}
	log.Info().Msgf("match over after %d turns in %s, winner: %s", gameMetric.TotalTurns, gameMetric.Duration, winner)
	return nil
}

func runExperiment(o options, d *dex.Dex) error {
	if o.config == "" {
		return errors.New("experiment mode needs -config")
	}
	cfg, err := experiments.LoadConfig(o.config)
	if err != nil {
		return err
	}

	results, dir, err := experiments.Run(cfg, d)
	if err != nil {
		return err
	}
	for _, r := range results {
		log.Info().Msgf("agent %d vs agent %d: %d-%d, %d draws, %d unfinished", r.Agent1, r.Agent2, r.Wins1, r.Wins2, r.Draws, r.Unfinished)
	}
	log.Info().Msgf("results stored in %s", dir)
	return nil
}

func runSelfPlay(o options, d *dex.Dex) error {
	var agents selfplay.AgentFactory
	switch o.players {
	case "random":
		agents = selfplay.RandomAgents(o.seed)
	case "search":
		agents = selfplay.SearchAgents(o.episodes, o.temp, o.seed)
	default:
		return fmt.Errorf("unknown self-play agent %q", o.players)
	}

	log.Info().Msgf("generating %d self-play games with %s agents...", o.games, o.players)
	samples, err := selfplay.Generate(d, o.games, o.seed, agents)
	if err != nil {
		return err
	}
	if err := selfplay.WriteParquet(o.out, samples); err != nil {
		return err
	}
	log.Info().Msgf("stored %d samples in %s", len(samples), o.out)
	return nil
}

func runTraining(o options) error {
	samples, err := selfplay.ReadParquet(o.out)
	if err != nil {
		return err
	}
	log.Info().Msgf("training on %d samples from %s", len(samples), o.out)

	net, err := valuenet.Load(o.weights)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Msgf("no weights at %s, starting from a fresh network", o.weights)
		net, err = valuenet.NewDefault(o.seed), nil
	}
	if err != nil {
		return err
	}

	losses := selfplay.Train(net, samples, o.epochs, o.rate, o.seed)
	if len(losses) > 0 {
		log.Info().Msgf("final loss %.5f", losses[len(losses)-1])
	}

	if err := os.MkdirAll(filepath.Dir(o.weights), 0o755); err != nil {
		return err
	}
	if err := net.Save(o.weights); err != nil {
		return err
	}
	log.Info().Msgf("stored weights in %s", o.weights)
	return nil
}
