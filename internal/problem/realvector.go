package problem

import (
	"context"
	"math"
	"strconv"
	"strings"

	"evolver/internal/evo"
	"evolver/pkg/evolver"
)

const rastriginBound = 5.12

// realVector problems minimise a function over [-bound, bound]^n. Fitness is
// the negated objective so higher stays better.
type realVector struct {
	*engine[[]float64]
	name      string
	bound     float64
	objective func([]float64) float64
}

func newRealVector(name string, params Params, objective func([]float64) float64) (*realVector, error) {
	e, err := newEngine[[]float64](params)
	if err != nil {
		return nil, err
	}
	return &realVector{engine: e, name: name, bound: rastriginBound, objective: objective}, nil
}

func newSphere(params Params) (Runnable, error) {
	p, err := newRealVector("sphere", params, sphere)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newRastrigin(params Params) (Runnable, error) {
	p, err := newRealVector("rastrigin", params, rastrigin)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *realVector) Name() string {
	return r.name
}

func (r *realVector) Run(ctx context.Context, hooks Hooks) (Result, error) {
	r.reset()
	return run[[]float64](ctx, r, hooks)
}

func (r *realVector) GenerateInitialGenotype() []float64 {
	if phenotype, ok := r.nextSeed(); ok {
		return r.GenotypeFrom(phenotype)
	}
	x := make([]float64, r.params.Dimensions)
	for i := range x {
		x[i] = (r.rng.Float64()*2 - 1) * r.bound
	}
	return x
}

func (r *realVector) PhenotypeFrom(genotype []float64) string {
	parts := make([]string, len(genotype))
	for i, v := range genotype {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// GenotypeFrom reads comma separated values. Missing or unparsable values
// read as 0 and extra values are dropped.
func (r *realVector) GenotypeFrom(phenotype string) []float64 {
	x := make([]float64, r.params.Dimensions)
	if phenotype == "" {
		return x
	}
	for i, part := range strings.Split(phenotype, ",") {
		if i >= len(x) {
			break
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
			x[i] = r.clamp(v)
		}
	}
	return x
}

func (r *realVector) Evaluate(genotype []float64) evo.Score {
	return r.score(-r.objective(genotype))
}

// Recombine uses blend crossover: each child gene is drawn between the
// parents' genes, extended by half their distance on both sides.
func (r *realVector) Recombine(parents []evolver.Individual[[]float64, evo.Score], probability float64) [][]float64 {
	const alpha = 0.5
	var offspring [][]float64
	r.pairs(parents, probability, func(x, y []float64) {
		n := min(len(x), len(y))
		c1 := make([]float64, n)
		c2 := make([]float64, n)
		for i := 0; i < n; i++ {
			lo, hi := math.Min(x[i], y[i]), math.Max(x[i], y[i])
			spread := (hi - lo) * alpha
			c1[i] = r.clamp(lo - spread + r.rng.Float64()*(hi-lo+2*spread))
			c2[i] = r.clamp(lo - spread + r.rng.Float64()*(hi-lo+2*spread))
		}
		offspring = append(offspring, c1, c2)
	})
	return offspring
}

// Mutate adds gaussian noise scaled to a tenth of the domain to each gene
// that passes the per-gene rate.
func (r *realVector) Mutate(candidates []evolver.Individual[[]float64, evo.Score], probability float64) [][]float64 {
	rate := r.mutationRate()
	sigma := r.bound / 10
	var mutants [][]float64
	r.candidates(candidates, probability, func(g []float64) {
		mutant := make([]float64, len(g))
		copy(mutant, g)
		for i := range mutant {
			if r.rng.Float64() < rate {
				mutant[i] = r.clamp(mutant[i] + r.rng.NormFloat64()*sigma)
			}
		}
		mutants = append(mutants, mutant)
	})
	return mutants
}

func (r *realVector) clamp(v float64) float64 {
	return math.Max(-r.bound, math.Min(r.bound, v))
}

func sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func rastrigin(x []float64) float64 {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}
