package problem

import (
	"context"
	"fmt"
	"strings"

	"evolver/internal/evo"
	"evolver/pkg/evolver"
)

// bitstring problems evolve fixed-length bit vectors with uniform crossover
// and bit-flip mutation.
type bitstring struct {
	*engine[[]bool]
	name    string
	fitness func([]bool) float64
}

func newBitstring(name string, params Params, fitness func([]bool) float64) (*bitstring, error) {
	e, err := newEngine[[]bool](params)
	if err != nil {
		return nil, err
	}
	return &bitstring{engine: e, name: name, fitness: fitness}, nil
}

func newOneMax(params Params) (Runnable, error) {
	p, err := newBitstring("onemax", params, oneMax)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newTrap(params Params) (Runnable, error) {
	k := params.TrapSize
	if k <= 0 {
		return nil, fmt.Errorf("%w: trap size must be > 0", ErrInvalidParams)
	}
	if params.Dimensions%k != 0 {
		return nil, fmt.Errorf("%w: dimensions %d not a multiple of trap size %d", ErrInvalidParams, params.Dimensions, k)
	}
	p, err := newBitstring("trap", params, func(bits []bool) float64 {
		return deceptiveTrap(bits, k)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (b *bitstring) Name() string {
	return b.name
}

func (b *bitstring) Run(ctx context.Context, hooks Hooks) (Result, error) {
	b.reset()
	return run[[]bool](ctx, b, hooks)
}

func (b *bitstring) GenerateInitialGenotype() []bool {
	if phenotype, ok := b.nextSeed(); ok {
		return b.GenotypeFrom(phenotype)
	}
	bits := make([]bool, b.params.Dimensions)
	for i := range bits {
		bits[i] = b.rng.Intn(2) == 1
	}
	return bits
}

func (b *bitstring) PhenotypeFrom(genotype []bool) string {
	var sb strings.Builder
	sb.Grow(len(genotype))
	for _, bit := range genotype {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// GenotypeFrom reads a string of 0s and 1s. The result is padded or cut to
// the configured dimensions; any character other than '1' reads as 0.
func (b *bitstring) GenotypeFrom(phenotype string) []bool {
	bits := make([]bool, b.params.Dimensions)
	for i := 0; i < len(bits) && i < len(phenotype); i++ {
		bits[i] = phenotype[i] == '1'
	}
	return bits
}

func (b *bitstring) Evaluate(genotype []bool) evo.Score {
	return b.score(b.fitness(genotype))
}

func (b *bitstring) Recombine(parents []evolver.Individual[[]bool, evo.Score], probability float64) [][]bool {
	var offspring [][]bool
	b.pairs(parents, probability, func(x, y []bool) {
		c1 := make([]bool, len(x))
		c2 := make([]bool, len(y))
		copy(c1, x)
		copy(c2, y)
		for i := 0; i < len(c1) && i < len(c2); i++ {
			if b.rng.Intn(2) == 1 {
				c1[i], c2[i] = c2[i], c1[i]
			}
		}
		offspring = append(offspring, c1, c2)
	})
	return offspring
}

func (b *bitstring) Mutate(candidates []evolver.Individual[[]bool, evo.Score], probability float64) [][]bool {
	rate := b.mutationRate()
	var mutants [][]bool
	b.candidates(candidates, probability, func(g []bool) {
		mutant := make([]bool, len(g))
		copy(mutant, g)
		for i := range mutant {
			if b.rng.Float64() < rate {
				mutant[i] = !mutant[i]
			}
		}
		mutants = append(mutants, mutant)
	})
	return mutants
}

func oneMax(bits []bool) float64 {
	ones := 0
	for _, bit := range bits {
		if bit {
			ones++
		}
	}
	return float64(ones)
}

// deceptiveTrap sums k-bit traps. A block scores k when all ones and
// k-1-ones otherwise, so every block pulls toward all zeros.
func deceptiveTrap(bits []bool, k int) float64 {
	var fitness float64
	for block := 0; block+k <= len(bits); block += k {
		ones := int(oneMax(bits[block : block+k]))
		if ones == k {
			fitness += float64(k)
		} else {
			fitness += float64(k - ones - 1)
		}
	}
	return fitness
}
