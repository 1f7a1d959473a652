package main

import (
	"context"
	"flag"
	"io"

	"go.uber.org/multierr"

	"evolver/internal/config"
	"evolver/internal/logging"
	"evolver/internal/model"
	"evolver/internal/platform"
	"evolver/internal/storage"
)

type commonFlags struct {
	store     string
	dbPath    string
	logLevel  string
	logFormat string
}

func registerCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.store, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite|badger")
	fs.StringVar(&c.dbPath, "db-path", "evolver.db", "sqlite database file or badger directory")
	fs.StringVar(&c.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	fs.StringVar(&c.logFormat, "log-format", logging.FormatAuto, "log format: auto|json|console")
	return c
}

// inherit takes store and log settings from cfg unless they were given as
// flags.
func (c *commonFlags) inherit(cfg config.RunConfig, set map[string]bool) {
	if !set["store"] && cfg.Store.Kind != "" {
		c.store = cfg.Store.Kind
	}
	if !set["db-path"] && cfg.Store.Path != "" {
		c.dbPath = cfg.Store.Path
	}
	if !set["log-level"] && cfg.Log.Level != "" {
		c.logLevel = cfg.Log.Level
	}
	if !set["log-format"] && cfg.Log.Format != "" {
		c.logFormat = cfg.Log.Format
	}
}

type session struct {
	runner *platform.Runner
	logger logging.Logger
}

// open builds the logger, store and runner. onGeneration may be nil.
func (c *commonFlags) open(ctx context.Context, logOutput io.Writer, onGeneration func(string, model.GenerationDiagnostics)) (*session, error) {
	logger, err := logging.New(logging.Options{Level: c.logLevel, Format: c.logFormat, Output: logOutput})
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(c.store, c.dbPath)
	if err != nil {
		return nil, err
	}
	runner := platform.NewRunner(platform.Config{
		Store:        store,
		Logger:       logger.With("store", c.store),
		OnGeneration: onGeneration,
	})
	if err := runner.Init(ctx); err != nil {
		return nil, multierr.Append(err, runner.Close())
	}
	return &session{runner: runner, logger: logger}, nil
}

// close folds the logger sync and runner close errors into err.
func (s *session) close(err error) error {
	return multierr.Combine(err, s.logger.Sync(), s.runner.Close())
}

type runFlags struct {
	configPath string

	problem          string
	runID            string
	seed             int64
	population       int
	generations      int
	fitnessGoal      float64
	evaluationsLimit int
	recombination    float64
	recombSchedule   string
	recombFinal      float64
	selection        string
	tournamentSize   int
	mutation         float64
	mutationSchedule string
	mutationFinal    float64
	mutationRate     float64
	onlyOffspring    bool
	survivors        string
	survivorSize     int
	maxAge           int
	dimensions       int
	trapSize         int
	resumeFrom       string
	artifactsDir     string
}

// registerRunFlags shows config.Default values as flag defaults. Only flags
// that are set explicitly override a config file.
func registerRunFlags(fs *flag.FlagSet) *runFlags {
	d := config.Default()
	r := &runFlags{}
	fs.StringVar(&r.configPath, "config", "", "optional run config YAML or JSON path")
	fs.StringVar(&r.problem, "problem", d.Problem, "problem name (see problems command)")
	fs.StringVar(&r.runID, "run-id", "", "explicit run id (optional)")
	fs.Int64Var(&r.seed, "seed", d.Seed, "rng seed")
	fs.IntVar(&r.population, "pop", d.Population, "initial population size")
	fs.IntVar(&r.generations, "gens", d.Generations, "generation limit")
	fs.Float64Var(&r.fitnessGoal, "fitness-goal", 0, "stop once best fitness reaches this value (unset disables)")
	fs.IntVar(&r.evaluationsLimit, "evaluations-limit", d.EvaluationsLimit, "stop after this many evaluations (0 disables)")
	fs.Float64Var(&r.recombination, "recombination", d.Recombination.Probability, "recombination probability")
	fs.StringVar(&r.recombSchedule, "recombination-schedule", d.Recombination.Schedule, "recombination schedule: const|linear|exponential")
	fs.Float64Var(&r.recombFinal, "recombination-final", d.Recombination.Final, "recombination probability at the last generation")
	fs.StringVar(&r.selection, "selection", d.Recombination.ParentSelection, "parent selection: tournament|elite|roulette|uniform")
	fs.IntVar(&r.tournamentSize, "tournament-size", d.Recombination.TournamentSize, "tournament size")
	fs.Float64Var(&r.mutation, "mutation", d.Mutation.Probability, "mutation probability")
	fs.StringVar(&r.mutationSchedule, "mutation-schedule", d.Mutation.Schedule, "mutation schedule: const|linear|exponential")
	fs.Float64Var(&r.mutationFinal, "mutation-final", d.Mutation.Final, "mutation probability at the last generation")
	fs.Float64Var(&r.mutationRate, "mutation-rate", d.Mutation.Rate, "per-gene mutation rate (0 uses 1/dimensions)")
	fs.BoolVar(&r.onlyOffspring, "only-offspring", d.Mutation.OnlyOffspring, "mutate offspring only")
	fs.StringVar(&r.survivors, "survivors", d.Survivors.Strategy, "survivor selection: truncation|keep_best|age_limited|all")
	fs.IntVar(&r.survivorSize, "survivor-size", d.Survivors.Size, "survivors kept per generation (0 uses population)")
	fs.IntVar(&r.maxAge, "max-age", d.Survivors.MaxAge, "max survivor age for age_limited")
	fs.IntVar(&r.dimensions, "dimensions", d.Dimensions, "genotype length")
	fs.IntVar(&r.trapSize, "trap-size", d.TrapSize, "trap block size")
	fs.StringVar(&r.resumeFrom, "resume-from", "", "seed the population from a stored run's final population")
	fs.StringVar(&r.artifactsDir, "artifacts-dir", d.ArtifactsDir, "artifacts directory (empty disables)")
	return r
}

func (r *runFlags) apply(cfg *config.RunConfig, set map[string]bool) {
	for name := range set {
		switch name {
		case "problem":
			cfg.Problem = r.problem
		case "run-id":
			cfg.RunID = r.runID
		case "seed":
			cfg.Seed = r.seed
		case "pop":
			cfg.Population = r.population
		case "gens":
			cfg.Generations = r.generations
		case "fitness-goal":
			goal := r.fitnessGoal
			cfg.FitnessGoal = &goal
		case "evaluations-limit":
			cfg.EvaluationsLimit = r.evaluationsLimit
		case "recombination":
			cfg.Recombination.Probability = r.recombination
		case "recombination-schedule":
			cfg.Recombination.Schedule = r.recombSchedule
		case "recombination-final":
			cfg.Recombination.Final = r.recombFinal
		case "selection":
			cfg.Recombination.ParentSelection = r.selection
		case "tournament-size":
			cfg.Recombination.TournamentSize = r.tournamentSize
		case "mutation":
			cfg.Mutation.Probability = r.mutation
		case "mutation-schedule":
			cfg.Mutation.Schedule = r.mutationSchedule
		case "mutation-final":
			cfg.Mutation.Final = r.mutationFinal
		case "mutation-rate":
			cfg.Mutation.Rate = r.mutationRate
		case "only-offspring":
			cfg.Mutation.OnlyOffspring = r.onlyOffspring
		case "survivors":
			cfg.Survivors.Strategy = r.survivors
		case "survivor-size":
			cfg.Survivors.Size = r.survivorSize
		case "max-age":
			cfg.Survivors.MaxAge = r.maxAge
		case "dimensions":
			cfg.Dimensions = r.dimensions
		case "trap-size":
			cfg.TrapSize = r.trapSize
		case "resume-from":
			cfg.ResumeFrom = r.resumeFrom
		case "artifacts-dir":
			cfg.ArtifactsDir = r.artifactsDir
		}
	}
}
