// Package problem holds the catalogue of benchmark problems that can be run
// through the evolver driver.
package problem

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"evolver/internal/evo"
	"evolver/internal/logging"
	"evolver/internal/model"
	"evolver/internal/monitor"
	"evolver/pkg/evolver"
)

var ErrInvalidParams = errors.New("invalid problem params")

// OperatorParams configure how an operator probability moves over a run.
type OperatorParams struct {
	Probability float64
	// Final is the probability reached after the last generation. Ignored by
	// the const schedule.
	Final    float64
	Schedule string
}

type Params struct {
	Population  int
	Generations int
	Seed        int64
	// FitnessGoal stops the run once reached. Nil disables it.
	FitnessGoal      *float64
	EvaluationsLimit int

	Recombination   OperatorParams
	ParentSelection string
	TournamentSize  int

	Mutation            OperatorParams
	OnlyMutateOffspring bool
	// MutationRate is the per-gene mutation rate. Zero picks 1/dimensions.
	MutationRate float64

	Survivors    string
	SurvivorSize int
	MaxAge       int

	Dimensions int
	TrapSize   int

	// InitialPhenotypes seed the initial population before random genotypes
	// are generated.
	InitialPhenotypes []string
}

type Hooks struct {
	Logger           logging.Logger
	ProgressInterval time.Duration
	OnGeneration     func(model.GenerationDiagnostics)
}

type Result struct {
	monitor.Report
	Outcomes []model.Outcome
}

// Runnable is one configured problem, ready to run. Runs are deterministic
// for a given seed and a Runnable may be run more than once.
type Runnable interface {
	Name() string
	Run(ctx context.Context, hooks Hooks) (Result, error)
}

// engine carries the parts of the Algorithm contract that every catalogue
// problem shares: population sizing, probability schedules, selection and
// termination. Problems embed it and add genotype handling.
type engine[G any] struct {
	params        Params
	rng           *rand.Rand
	parents       evo.ParentSelector
	survivors     evo.SurvivorSelector
	recombination evo.Schedule
	mutation      evo.Schedule
	termination   evo.Termination
	progress      evo.Progress
	seeded        int
}

func newEngine[G any](params Params) (*engine[G], error) {
	if params.Population < 0 {
		return nil, fmt.Errorf("%w: population must be >= 0", ErrInvalidParams)
	}
	if params.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be > 0", ErrInvalidParams)
	}
	parents, err := evo.NewParentSelector(params.ParentSelection, params.TournamentSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	survivors, err := evo.NewSurvivorSelector(params.Survivors, survivorSize(params), params.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	recombination, err := evo.NewSchedule(params.Recombination.Schedule, params.Recombination.Probability, params.Recombination.Final, params.Generations)
	if err != nil {
		return nil, fmt.Errorf("%w: recombination: %v", ErrInvalidParams, err)
	}
	mutation, err := evo.NewSchedule(params.Mutation.Schedule, params.Mutation.Probability, params.Mutation.Final, params.Generations)
	if err != nil {
		return nil, fmt.Errorf("%w: mutation: %v", ErrInvalidParams, err)
	}

	termination := evo.AnyOf{
		evo.GenerationLimit{Max: params.Generations},
		evo.EvaluationsLimit{Max: params.EvaluationsLimit},
	}
	if params.FitnessGoal != nil {
		termination = append(termination, evo.FitnessGoal{Goal: *params.FitnessGoal})
	}

	e := &engine[G]{
		params:        params,
		parents:       parents,
		survivors:     survivors,
		recombination: recombination,
		mutation:      mutation,
		termination:   termination,
	}
	e.reset()
	return e, nil
}

func survivorSize(params Params) int {
	if params.SurvivorSize > 0 {
		return params.SurvivorSize
	}
	return params.Population
}

func (e *engine[G]) reset() {
	e.rng = rand.New(rand.NewSource(e.params.Seed))
	e.progress = evo.Progress{}
	e.seeded = 0
}

// nextSeed returns the next unused initial phenotype, if any.
func (e *engine[G]) nextSeed() (string, bool) {
	if e.seeded >= len(e.params.InitialPhenotypes) {
		return "", false
	}
	phenotype := e.params.InitialPhenotypes[e.seeded]
	e.seeded++
	return phenotype, true
}

// score records a fresh evaluation. It is the only place fitness is written.
func (e *engine[G]) score(fitness float64) evo.Score {
	e.progress.Evaluations++
	if !e.progress.Evaluated || fitness > e.progress.BestFitness {
		e.progress.BestFitness = fitness
		e.progress.Evaluated = true
	}
	return evo.Score{Fitness: fitness}
}

func (e *engine[G]) mutationRate() float64 {
	if e.params.MutationRate > 0 {
		return e.params.MutationRate
	}
	return 1 / float64(e.params.Dimensions)
}

func (e *engine[G]) InitialPopulationSize() int {
	return e.params.Population
}

func (e *engine[G]) ShouldTerminate() bool {
	return e.termination.Done(e.progress)
}

func (e *engine[G]) RecombinationProbability() float64 {
	return e.recombination.Probability(e.progress.Generation)
}

func (e *engine[G]) SelectParents(population []evolver.Individual[G, evo.Score]) []evolver.Individual[G, evo.Score] {
	return evo.SelectParents(e.parents, e.rng, population, 0)
}

func (e *engine[G]) MutationProbability() float64 {
	return e.mutation.Probability(e.progress.Generation)
}

func (e *engine[G]) OnlyMutateOffspring() bool {
	return e.params.OnlyMutateOffspring
}

func (e *engine[G]) SelectNextGeneration(evolved []evolver.Individual[G, evo.Score]) []evolver.Individual[G, evo.Score] {
	e.progress.Generation++
	return evo.NextGeneration(e.survivors, evolved)
}

// pairs calls fn for each consecutive pair of parents that passes the
// recombination draw. An odd parent out is ignored.
func (e *engine[G]) pairs(parents []evolver.Individual[G, evo.Score], probability float64, fn func(a, b G)) {
	for i := 0; i+1 < len(parents); i += 2 {
		if e.rng.Float64() < probability {
			fn(parents[i].Genotype, parents[i+1].Genotype)
		}
	}
}

// candidates calls fn for each candidate that passes the mutation draw.
func (e *engine[G]) candidates(candidates []evolver.Individual[G, evo.Score], probability float64, fn func(g G)) {
	for _, candidate := range candidates {
		if e.rng.Float64() < probability {
			fn(candidate.Genotype)
		}
	}
}

// run drives alg through the monitor and converts the survivors into
// storable outcomes.
func run[G any](ctx context.Context, alg evolver.Algorithm[G, string, evo.Score], hooks Hooks) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	m := monitor.Wrap(ctx, alg, monitor.Options[evo.Score]{
		Fitness:          func(s evo.Score) float64 { return s.Fitness },
		Logger:           hooks.Logger,
		ProgressInterval: hooks.ProgressInterval,
		OnGeneration:     hooks.OnGeneration,
	})
	final := evolver.Evolve[G, string, evo.Score](m)

	outcomes := make([]model.Outcome, 0, len(final))
	for _, outcome := range final {
		outcomes = append(outcomes, model.Outcome{
			Phenotype: outcome.Phenotype,
			Fitness:   outcome.Evaluation.Fitness,
			Age:       outcome.Evaluation.Age,
		})
	}
	return Result{Report: m.Report(), Outcomes: outcomes}, nil
}
