package evo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolver/pkg/evolver"
)

func population(fitness ...float64) []evolver.Individual[string, Score] {
	out := make([]evolver.Individual[string, Score], len(fitness))
	for i, f := range fitness {
		out[i] = evolver.Individual[string, Score]{
			Genotype:   string(rune('a' + i)),
			Evaluation: Score{Fitness: f},
		}
	}
	return out
}

func TestEliteSelectorPicksOnlyFromTop(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	parents := SelectParents(EliteSelector{Count: 2}, rng, population(0.1, 0.9, 0.5, 0.8), 50)

	require.Len(t, parents, 50)
	for _, parent := range parents {
		assert.Contains(t, []string{"b", "d"}, parent.Genotype)
	}
}

func TestTournamentSelectorFavoursFitter(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	counts := map[int]int{}
	for _, idx := range (TournamentSelector{Size: 3}).Pick(rng, []float64{0, 1, 2, 3}, 1000) {
		counts[idx]++
	}
	assert.Greater(t, counts[3], counts[0])
	assert.Greater(t, counts[3], counts[1])
}

func TestTournamentSizeOneIsUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	seen := map[int]bool{}
	for _, idx := range (TournamentSelector{Size: 1}).Pick(rng, []float64{5, 1, 0}, 200) {
		seen[idx] = true
	}
	assert.Len(t, seen, 3)
}

func TestRouletteSelectorHandlesNegativeFitness(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	counts := map[int]int{}
	for _, idx := range (RouletteSelector{}).Pick(rng, []float64{-10, -5, -1}, 2000) {
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 3)
		counts[idx]++
	}
	assert.Greater(t, counts[2], counts[0])
}

func TestSelectParentsDefaultsToPopulationSize(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Len(t, SelectParents(UniformSelector{}, rng, population(1, 2, 3), 0), 3)
	assert.Empty(t, SelectParents(UniformSelector{}, rng, population(), 4))
}

func TestNewParentSelector(t *testing.T) {
	for _, name := range []string{"", "tournament", "elite", "roulette", "uniform"} {
		selector, err := NewParentSelector(name, 2)
		require.NoError(t, err, name)
		assert.NotEmpty(t, selector.Name())
	}
	_, err := NewParentSelector("lottery", 0)
	assert.Error(t, err)
}
