package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolver/internal/model"
	"evolver/pkg/evolver"
)

// doubling keeps every individual and adds one offspring per parent, so the
// population doubles each generation.
type doubling struct {
	limit  int
	checks int
	value  float64
}

func (d *doubling) InitialPopulationSize() int { return 2 }
func (d *doubling) GenerateInitialGenotype() float64 { d.value++; return d.value }
func (d *doubling) PhenotypeFrom(g float64) float64 { return g }
func (d *doubling) GenotypeFrom(p float64) float64 { return p }
func (d *doubling) Evaluate(g float64) float64 { return g }
func (d *doubling) RecombinationProbability() float64 { return 1 }
func (d *doubling) MutationProbability() float64 { return 0.5 }
func (d *doubling) OnlyMutateOffspring() bool { return true }

func (d *doubling) ShouldTerminate() bool {
	d.checks++
	return d.checks > d.limit
}

func (d *doubling) SelectParents(p []evolver.Individual[float64, float64]) []evolver.Individual[float64, float64] {
	return p
}

func (d *doubling) Recombine(parents []evolver.Individual[float64, float64], _ float64) []float64 {
	out := make([]float64, len(parents))
	for i, parent := range parents {
		out[i] = parent.Genotype + 10
	}
	return out
}

func (d *doubling) Mutate(candidates []evolver.Individual[float64, float64], _ float64) []float64 {
	if len(candidates) == 0 {
		return nil
	}
	return []float64{-candidates[0].Genotype}
}

func (d *doubling) SelectNextGeneration(evolved []evolver.Individual[float64, float64]) []evolver.Individual[float64, float64] {
	return evolved[:len(evolved)-1]
}

func identity(v float64) float64 { return v }

func TestMonitorRecordsDiagnostics(t *testing.T) {
	var seen []int
	m := Wrap[float64, float64, float64](context.Background(), &doubling{limit: 2}, Options[float64]{
		Fitness: identity,
		OnGeneration: func(d model.GenerationDiagnostics) {
			seen = append(seen, d.Generation)
		},
	})

	outcomes := evolver.Evolve[float64, float64, float64](m)
	report := m.Report()

	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, model.StopReasonCompleted, report.StopReason)
	assert.Equal(t, 2, report.Generations)
	// 2 initial + (2 offspring + 1 mutant) + (4 offspring + 1 mutant)
	assert.Equal(t, 10, report.Evaluations)
	require.Len(t, report.Diagnostics, 2)

	first := report.Diagnostics[0]
	assert.Equal(t, 2, first.Offspring)
	assert.Equal(t, 1, first.Mutants)
	assert.Equal(t, 5, first.Evolved)
	assert.Equal(t, 4, first.Survivors)
	assert.Equal(t, 12.0, first.BestFitness)
	assert.Equal(t, 1.0, first.MinFitness)

	assert.Equal(t, 8, report.Diagnostics[1].Survivors)
	assert.Equal(t, 22.0, report.BestFitness)
	assert.Len(t, outcomes, 8)
}

func TestMonitorStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inner := &doubling{limit: 1000}
	m := Wrap[float64, float64, float64](ctx, inner, Options[float64]{
		Fitness: identity,
		OnGeneration: func(d model.GenerationDiagnostics) {
			if d.Generation == 3 {
				cancel()
			}
		},
	})

	evolver.Evolve[float64, float64, float64](m)
	report := m.Report()

	assert.Equal(t, model.StopReasonCancelled, report.StopReason)
	assert.Equal(t, 3, report.Generations)
	assert.Equal(t, 3, inner.checks, "inner termination must not be consulted after cancellation")
}

func TestMonitorReportIsACopy(t *testing.T) {
	m := Wrap[float64, float64, float64](context.Background(), &doubling{limit: 1}, Options[float64]{Fitness: identity})
	evolver.Evolve[float64, float64, float64](m)

	report := m.Report()
	report.Diagnostics[0].Generation = 99
	assert.Equal(t, 1, m.Report().Diagnostics[0].Generation)
}
