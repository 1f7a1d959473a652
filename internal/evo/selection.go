package evo

import (
	"fmt"
	"math/rand"
	"sort"

	"evolver/pkg/evolver"
)

// ParentSelector chooses parent indices from a population's fitness values.
// The same index may be chosen more than once.
type ParentSelector interface {
	Name() string
	Pick(rng *rand.Rand, fitness []float64, picks int) []int
}

// SelectParents applies selector to population. picks <= 0 selects as many
// parents as there are individuals.
func SelectParents[G any](selector ParentSelector, rng *rand.Rand, population []evolver.Individual[G, Score], picks int) []evolver.Individual[G, Score] {
	if len(population) == 0 {
		return nil
	}
	if picks <= 0 {
		picks = len(population)
	}
	return pick(population, selector.Pick(rng, Fitnesses(population), picks))
}

func NewParentSelector(name string, tournamentSize int) (ParentSelector, error) {
	switch name {
	case "", "tournament":
		return TournamentSelector{Size: tournamentSize}, nil
	case "elite":
		return EliteSelector{}, nil
	case "roulette":
		return RouletteSelector{}, nil
	case "uniform":
		return UniformSelector{}, nil
	default:
		return nil, fmt.Errorf("unsupported parent selection: %s", name)
	}
}

// EliteSelector picks uniformly from the Count fittest individuals. A
// non-positive Count uses the top half.
type EliteSelector struct {
	Count int
}

func (EliteSelector) Name() string {
	return "elite"
}

func (s EliteSelector) Pick(rng *rand.Rand, fitness []float64, picks int) []int {
	if len(fitness) == 0 {
		return nil
	}
	ranked := rankDescending(fitness)
	count := s.Count
	if count <= 0 {
		count = max(1, len(ranked)/2)
	}
	count = min(count, len(ranked))

	out := make([]int, picks)
	for i := range out {
		out[i] = ranked[rng.Intn(count)]
	}
	return out
}

// TournamentSelector runs one tournament of Size random entrants per pick
// and keeps the fittest entrant.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) Pick(rng *rand.Rand, fitness []float64, picks int) []int {
	if len(fitness) == 0 {
		return nil
	}
	size := s.Size
	if size <= 0 {
		size = 3
	}

	out := make([]int, picks)
	for i := range out {
		best := rng.Intn(len(fitness))
		for j := 1; j < size; j++ {
			candidate := rng.Intn(len(fitness))
			if fitness[candidate] > fitness[best] {
				best = candidate
			}
		}
		out[i] = best
	}
	return out
}

// RouletteSelector picks with probability proportional to fitness shifted so
// the worst individual still has a small positive weight.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return "roulette"
}

func (RouletteSelector) Pick(rng *rand.Rand, fitness []float64, picks int) []int {
	if len(fitness) == 0 {
		return nil
	}
	worst, _ := Worst(fitness)
	best, _ := Best(fitness)
	offset := (best-worst)*0.01 + 1e-9

	weights := make([]float64, len(fitness))
	total := 0.0
	for i, f := range fitness {
		weights[i] = f - worst + offset
		total += weights[i]
	}

	out := make([]int, picks)
	for i := range out {
		target := rng.Float64() * total
		idx := len(weights) - 1
		for j, w := range weights {
			if target < w {
				idx = j
				break
			}
			target -= w
		}
		out[i] = idx
	}
	return out
}

// UniformSelector ignores fitness.
type UniformSelector struct{}

func (UniformSelector) Name() string {
	return "uniform"
}

func (UniformSelector) Pick(rng *rand.Rand, fitness []float64, picks int) []int {
	if len(fitness) == 0 {
		return nil
	}
	out := make([]int, picks)
	for i := range out {
		out[i] = rng.Intn(len(fitness))
	}
	return out
}

// rankDescending returns indices ordered by fitness, best first. Ties keep
// their original order.
func rankDescending(fitness []float64) []int {
	ranked := make([]int, len(fitness))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return fitness[ranked[i]] > fitness[ranked[j]]
	})
	return ranked
}
