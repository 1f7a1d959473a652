package platform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"evolver/internal/config"
	"evolver/internal/logging"
	"evolver/internal/model"
	"evolver/internal/problem"
	"evolver/internal/stats"
	"evolver/internal/storage"
)

var (
	ErrNotInitialized = errors.New("runner is not initialized")
	ErrRunNotFound    = errors.New("run not found")
	ErrRunExists      = errors.New("run already exists")
)

// Summary is what a finished run leaves behind.
type Summary = stats.RunBundle

type Config struct {
	Store            storage.Store
	Logger           logging.Logger
	ProgressInterval time.Duration
	// OnGeneration receives the diagnostics of every generation of every
	// run. Benchmark calls it from several goroutines.
	OnGeneration func(runID string, diagnostics model.GenerationDiagnostics)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Runner resolves configured problems, runs them and keeps their results in
// a store.
type Runner struct {
	store            storage.Store
	logger           logging.Logger
	progressInterval time.Duration
	onGeneration     func(string, model.GenerationDiagnostics)
	now              func() time.Time

	mu      sync.RWMutex
	started bool
}

func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		store:            cfg.Store,
		logger:           logger,
		progressInterval: cfg.ProgressInterval,
		onGeneration:     cfg.OnGeneration,
		now:              now,
	}
}

func (r *Runner) Init(ctx context.Context) error {
	if r.store == nil {
		return fmt.Errorf("store is required")
	}
	if err := r.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
	return nil
}

func (r *Runner) Close() error {
	r.mu.Lock()
	r.started = false
	r.mu.Unlock()
	return storage.CloseIfSupported(r.store)
}

func (r *Runner) ensureStarted() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.started {
		return ErrNotInitialized
	}
	return nil
}

// Run executes one configured run and persists it. A run stopped by ctx is
// still persisted with stop reason cancelled. An explicit run id must not be
// in the store yet.
func (r *Runner) Run(ctx context.Context, cfg config.RunConfig) (Summary, error) {
	if err := r.ensureStarted(); err != nil {
		return Summary{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	} else {
		_, ok, err := r.store.GetRun(ctx, cfg.RunID)
		if err != nil {
			return Summary{}, err
		}
		if ok {
			return Summary{}, fmt.Errorf("%w: %s", ErrRunExists, cfg.RunID)
		}
	}

	params := paramsFromConfig(cfg)
	if cfg.ResumeFrom != "" {
		phenotypes, err := r.finalPhenotypes(ctx, cfg.ResumeFrom)
		if err != nil {
			return Summary{}, err
		}
		params.InitialPhenotypes = phenotypes
	}
	runnable, err := problem.Resolve(cfg.Problem, params)
	if err != nil {
		return Summary{}, err
	}

	logger := r.logger.With("run_id", cfg.RunID, "problem", runnable.Name())
	logger.Info("run started", "seed", cfg.Seed, "population", cfg.Population, "generations", cfg.Generations)

	hooks := problem.Hooks{
		Logger:           logger,
		ProgressInterval: r.progressInterval,
	}
	if r.onGeneration != nil {
		runID := cfg.RunID
		hooks.OnGeneration = func(d model.GenerationDiagnostics) {
			r.onGeneration(runID, d)
		}
	}

	started := r.now()
	result, err := runnable.Run(ctx, hooks)
	if err != nil {
		return Summary{}, fmt.Errorf("run %s: %w", cfg.RunID, err)
	}
	duration := r.now().Sub(started)

	configYAML, err := cfg.Marshal()
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{
		Run: model.RunRecord{
			VersionedRecord: storage.CurrentVersion(),
			ID:              cfg.RunID,
			Problem:         runnable.Name(),
			Seed:            cfg.Seed,
			CreatedAtUTC:    started.UTC().Format(time.RFC3339Nano),
			DurationMS:      duration.Milliseconds(),
			Generations:     result.Generations,
			Evaluations:     result.Evaluations,
			BestFitness:     result.BestFitness,
			FinalSize:       len(result.Outcomes),
			StopReason:      result.StopReason,
			Config:          configYAML,
		},
		Diagnostics: result.Diagnostics,
		FinalPopulation: model.FinalPopulation{
			VersionedRecord: storage.CurrentVersion(),
			RunID:           cfg.RunID,
			Outcomes:        result.Outcomes,
		},
	}

	// persist even when the run itself was cancelled
	if err := r.persist(context.WithoutCancel(ctx), summary); err != nil {
		return Summary{}, err
	}
	logger.Info("run finished",
		"stop_reason", summary.Run.StopReason,
		"generations", summary.Run.Generations,
		"evaluations", summary.Run.Evaluations,
		"best_fitness", summary.Run.BestFitness,
		"duration_ms", summary.Run.DurationMS,
	)
	return summary, nil
}

// persist writes the run record last so a listed run is always complete. On
// failure it removes whatever was written.
func (r *Runner) persist(ctx context.Context, summary Summary) error {
	err := r.store.SaveDiagnostics(ctx, summary.Run.ID, summary.Diagnostics)
	if err == nil {
		err = r.store.SaveFinalPopulation(ctx, summary.FinalPopulation)
	}
	if err == nil {
		err = r.store.SaveRun(ctx, summary.Run)
	}
	if err != nil {
		err = multierr.Append(fmt.Errorf("persist run %s: %w", summary.Run.ID, err), r.store.DeleteRun(ctx, summary.Run.ID))
	}
	return err
}

func (r *Runner) finalPhenotypes(ctx context.Context, runID string) ([]string, error) {
	final, ok, err := r.store.GetFinalPopulation(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	phenotypes := make([]string, 0, len(final.Outcomes))
	for _, outcome := range final.Outcomes {
		phenotypes = append(phenotypes, outcome.Phenotype)
	}
	return phenotypes, nil
}

// Benchmark runs cfg once per seed, at most workers at a time, and
// aggregates the results. Empty seeds fall back to cfg.Seeds.
func (r *Runner) Benchmark(ctx context.Context, cfg config.RunConfig, seeds []int64, workers int) (stats.BenchmarkReport, error) {
	if err := r.ensureStarted(); err != nil {
		return stats.BenchmarkReport{}, err
	}
	if len(seeds) == 0 {
		seeds = cfg.Seeds
	}
	if len(seeds) == 0 {
		return stats.BenchmarkReport{}, fmt.Errorf("%w: benchmark needs at least one seed", config.ErrInvalidConfig)
	}
	if workers <= 0 {
		workers = 1
	}
	if err := cfg.Validate(); err != nil {
		return stats.BenchmarkReport{}, err
	}

	id := uuid.NewString()
	r.logger.Info("benchmark started", "benchmark_id", id, "problem", cfg.Problem, "runs", len(seeds), "workers", workers)

	records := make([]model.RunRecord, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seed := range seeds {
		runCfg := cfg
		runCfg.RunID = fmt.Sprintf("%s-%d", id, i)
		runCfg.Seed = seed
		g.Go(func() error {
			summary, err := r.Run(gctx, runCfg)
			if err != nil {
				return err
			}
			records[i] = summary.Run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats.BenchmarkReport{}, fmt.Errorf("benchmark %s: %w", id, err)
	}

	report := stats.BuildBenchmarkReport(id, problem.Normalize(cfg.Problem), records, cfg.FitnessGoal)
	report.GeneratedAtUTC = r.now().UTC().Format(time.RFC3339Nano)
	r.logger.Info("benchmark finished",
		"benchmark_id", id,
		"success_rate", report.SuccessRate,
		"mean_best", report.MeanBest,
		"max_best", report.MaxBest,
	)
	return report, nil
}

// Runs lists stored runs newest first. limit <= 0 lists all of them.
func (r *Runner) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if err := r.ensureStarted(); err != nil {
		return nil, err
	}
	runs, err := r.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (r *Runner) Show(ctx context.Context, id string) (Summary, error) {
	if err := r.ensureStarted(); err != nil {
		return Summary{}, err
	}
	run, ok, err := r.store.GetRun(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	if !ok {
		return Summary{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	diagnostics, _, err := r.store.GetDiagnostics(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	final, _, err := r.store.GetFinalPopulation(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Run: run, Diagnostics: diagnostics, FinalPopulation: final}, nil
}

func (r *Runner) Delete(ctx context.Context, id string) error {
	if err := r.ensureStarted(); err != nil {
		return err
	}
	_, ok, err := r.store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err := r.store.DeleteRun(ctx, id); err != nil {
		return err
	}
	r.logger.Info("run deleted", "run_id", id)
	return nil
}

// Export writes the stored run as artifacts under dir and returns the run
// directory.
func (r *Runner) Export(ctx context.Context, id, dir string) (string, error) {
	summary, err := r.Show(ctx, id)
	if err != nil {
		return "", err
	}
	return stats.ExportRun(dir, summary)
}
