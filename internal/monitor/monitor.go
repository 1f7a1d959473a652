package monitor

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"evolver/internal/evo"
	"evolver/internal/logging"
	"evolver/internal/model"
	"evolver/pkg/evolver"
)

const defaultProgressInterval = 2 * time.Second

type Options[E any] struct {
	// Fitness reads the fitness out of an evaluation. Required.
	Fitness func(E) float64
	Logger  logging.Logger
	// ProgressInterval bounds how often progress is logged at info level.
	ProgressInterval time.Duration
	// OnGeneration is called after every generation with its diagnostics.
	OnGeneration func(model.GenerationDiagnostics)
}

type Report struct {
	Generations int
	Evaluations int
	BestFitness float64
	StopReason  model.StopReason
	Diagnostics []model.GenerationDiagnostics
}

// Monitor decorates an Algorithm with bookkeeping. It satisfies
// evolver.Algorithm itself, so the driver sees it as the problem. The only
// behaviour it adds is stopping early once its context is done.
type Monitor[G, P, E any] struct {
	ctx   context.Context
	inner evolver.Algorithm[G, P, E]
	opts  Options[E]

	progress rate.Sometimes

	evaluations int
	generation  int
	offspring   int
	mutants     int
	best        float64
	evaluated   bool
	stopReason  model.StopReason
	diagnostics []model.GenerationDiagnostics
}

func Wrap[G, P, E any](ctx context.Context, inner evolver.Algorithm[G, P, E], opts Options[E]) *Monitor[G, P, E] {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = defaultProgressInterval
	}
	return &Monitor[G, P, E]{
		ctx:      ctx,
		inner:    inner,
		opts:     opts,
		progress: rate.Sometimes{Interval: interval},
	}
}

func (m *Monitor[G, P, E]) Report() Report {
	diagnostics := make([]model.GenerationDiagnostics, len(m.diagnostics))
	copy(diagnostics, m.diagnostics)
	return Report{
		Generations: m.generation,
		Evaluations: m.evaluations,
		BestFitness: m.best,
		StopReason:  m.stopReason,
		Diagnostics: diagnostics,
	}
}

func (m *Monitor[G, P, E]) InitialPopulationSize() int {
	return m.inner.InitialPopulationSize()
}

func (m *Monitor[G, P, E]) GenerateInitialGenotype() G {
	return m.inner.GenerateInitialGenotype()
}

func (m *Monitor[G, P, E]) PhenotypeFrom(genotype G) P {
	return m.inner.PhenotypeFrom(genotype)
}

func (m *Monitor[G, P, E]) GenotypeFrom(phenotype P) G {
	return m.inner.GenotypeFrom(phenotype)
}

func (m *Monitor[G, P, E]) Evaluate(genotype G) E {
	evaluation := m.inner.Evaluate(genotype)
	m.evaluations++
	fitness := m.opts.Fitness(evaluation)
	if !m.evaluated || fitness > m.best {
		m.best = fitness
		m.evaluated = true
	}
	return evaluation
}

func (m *Monitor[G, P, E]) ShouldTerminate() bool {
	if m.stopReason != "" {
		return true
	}
	if err := m.ctx.Err(); err != nil {
		m.stopReason = model.StopReasonCancelled
		m.opts.Logger.Warn("evolution cancelled", "generation", m.generation, "error", err)
		return true
	}
	if m.inner.ShouldTerminate() {
		m.stopReason = model.StopReasonCompleted
		m.opts.Logger.Debug("evolution terminated", "generations", m.generation, "evaluations", m.evaluations)
		return true
	}
	return false
}

func (m *Monitor[G, P, E]) RecombinationProbability() float64 {
	return m.inner.RecombinationProbability()
}

func (m *Monitor[G, P, E]) SelectParents(population []evolver.Individual[G, E]) []evolver.Individual[G, E] {
	return m.inner.SelectParents(population)
}

func (m *Monitor[G, P, E]) Recombine(parents []evolver.Individual[G, E], probability float64) []G {
	offspring := m.inner.Recombine(parents, probability)
	m.offspring = len(offspring)
	return offspring
}

func (m *Monitor[G, P, E]) MutationProbability() float64 {
	return m.inner.MutationProbability()
}

func (m *Monitor[G, P, E]) OnlyMutateOffspring() bool {
	return m.inner.OnlyMutateOffspring()
}

func (m *Monitor[G, P, E]) Mutate(candidates []evolver.Individual[G, E], probability float64) []G {
	mutants := m.inner.Mutate(candidates, probability)
	m.mutants = len(mutants)
	return mutants
}

func (m *Monitor[G, P, E]) SelectNextGeneration(evolved []evolver.Individual[G, E]) []evolver.Individual[G, E] {
	next := m.inner.SelectNextGeneration(evolved)
	m.generation++

	fitness := make([]float64, len(next))
	for i, individual := range next {
		fitness[i] = m.opts.Fitness(individual.Evaluation)
	}
	summary := evo.Summarize(fitness)
	diag := model.GenerationDiagnostics{
		Generation:  m.generation,
		Evaluations: m.evaluations,
		Offspring:   m.offspring,
		Mutants:     m.mutants,
		Evolved:     len(evolved),
		Survivors:   len(next),
		BestFitness: summary.Best,
		MeanFitness: summary.Mean,
		MinFitness:  summary.Min,
		StdDev:      summary.StdDev,
	}
	m.diagnostics = append(m.diagnostics, diag)
	m.offspring, m.mutants = 0, 0

	m.opts.Logger.Debug("generation complete",
		"generation", diag.Generation,
		"survivors", diag.Survivors,
		"best_fitness", diag.BestFitness,
	)
	m.progress.Do(func() {
		m.opts.Logger.Info("evolution progress",
			"generation", diag.Generation,
			"evaluations", diag.Evaluations,
			"best_fitness", m.best,
			"mean_fitness", diag.MeanFitness,
		)
	})
	if m.opts.OnGeneration != nil {
		m.opts.OnGeneration(diag)
	}
	return next
}
