package problem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolver/internal/model"
)

func testParams() Params {
	return Params{
		Population:          20,
		Generations:         25,
		Seed:                7,
		Recombination:       OperatorParams{Probability: 0.9},
		ParentSelection:     "tournament",
		TournamentSize:      3,
		Mutation:            OperatorParams{Probability: 0.3},
		OnlyMutateOffspring: false,
		Survivors:           "truncation",
		Dimensions:          16,
		TrapSize:            4,
	}
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	runnable, err := Resolve("onemax", testParams())
	require.NoError(t, err)

	first, err := runnable.Run(context.Background(), Hooks{})
	require.NoError(t, err)
	second, err := runnable.Run(context.Background(), Hooks{})
	require.NoError(t, err)

	assert.Equal(t, first.Outcomes, second.Outcomes)
	assert.Equal(t, first.Evaluations, second.Evaluations)
}

func TestRunReportsGenerations(t *testing.T) {
	params := testParams()
	runnable, err := Resolve("onemax", params)
	require.NoError(t, err)

	var seen int
	result, err := runnable.Run(context.Background(), Hooks{
		OnGeneration: func(model.GenerationDiagnostics) { seen++ },
	})
	require.NoError(t, err)

	assert.Equal(t, model.StopReasonCompleted, result.StopReason)
	assert.Equal(t, params.Generations, result.Generations)
	assert.Equal(t, params.Generations, seen)
	require.Len(t, result.Diagnostics, params.Generations)
	assert.Len(t, result.Outcomes, params.Population)

	// truncation never drops the current best
	first := result.Diagnostics[0].BestFitness
	last := result.Diagnostics[len(result.Diagnostics)-1].BestFitness
	assert.GreaterOrEqual(t, last, first)
	for _, outcome := range result.Outcomes {
		assert.GreaterOrEqual(t, outcome.Age, 1)
		assert.Len(t, outcome.Phenotype, params.Dimensions)
	}
}

func TestFitnessGoalReachedByInitialPopulation(t *testing.T) {
	params := testParams()
	params.Dimensions = 8
	goal := 8.0
	params.FitnessGoal = &goal
	params.InitialPhenotypes = []string{"11111111"}

	runnable, err := Resolve("onemax", params)
	require.NoError(t, err)
	result, err := runnable.Run(context.Background(), Hooks{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Generations)
	assert.Equal(t, params.Population, result.Evaluations)
	require.Len(t, result.Outcomes, params.Population)
	assert.Equal(t, "11111111", result.Outcomes[0].Phenotype)
	assert.Equal(t, 8.0, result.Outcomes[0].Fitness)
	assert.Equal(t, 0, result.Outcomes[0].Age)
}

func TestEvaluationsLimit(t *testing.T) {
	params := testParams()
	params.EvaluationsLimit = params.Population

	runnable, err := Resolve("sphere", params)
	require.NoError(t, err)
	result, err := runnable.Run(context.Background(), Hooks{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Generations)
	assert.Equal(t, params.Population, result.Evaluations)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	params := testParams()
	params.Generations = 1000

	runnable, err := Resolve("rastrigin", params)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	result, err := runnable.Run(ctx, Hooks{
		OnGeneration: func(d model.GenerationDiagnostics) {
			if d.Generation == 2 {
				cancel()
			}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StopReasonCancelled, result.StopReason)
	assert.Equal(t, 2, result.Generations)
	assert.Len(t, result.Outcomes, params.Population)
}

func TestRunRejectsDoneContext(t *testing.T) {
	runnable, err := Resolve("onemax", testParams())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runnable.Run(ctx, Hooks{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidParams(t *testing.T) {
	cases := map[string]func(*Params){
		"dimensions":  func(p *Params) { p.Dimensions = 0 },
		"population":  func(p *Params) { p.Population = -1 },
		"survivors":   func(p *Params) { p.Survivors = "lucky" },
		"schedule":    func(p *Params) { p.Mutation.Schedule = "sawtooth" },
		"exponential": func(p *Params) { p.Recombination = OperatorParams{Schedule: "exponential", Probability: 0, Final: 0.5} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			params := testParams()
			mutate(&params)
			_, err := Resolve("onemax", params)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}
