package evo

import (
	"fmt"

	"evolver/pkg/evolver"
)

// SurvivorSelector picks the indices of the individuals that make up the next
// generation. Selectors must not change fitness values.
type SurvivorSelector interface {
	Name() string
	Survivors(scores []Score) []int
}

// NextGeneration applies selector to the evolved population and ages every
// survivor by one generation.
func NextGeneration[G any](selector SurvivorSelector, evolved []evolver.Individual[G, Score]) []evolver.Individual[G, Score] {
	scores := make([]Score, len(evolved))
	for i, individual := range evolved {
		scores[i] = individual.Evaluation
	}
	survivors := pick(evolved, selector.Survivors(scores))
	for i := range survivors {
		survivors[i].Evaluation.Age++
	}
	return survivors
}

func NewSurvivorSelector(name string, size, maxAge int) (SurvivorSelector, error) {
	switch name {
	case "", "truncation":
		return Truncation{Size: size}, nil
	case "keep_best":
		return KeepBest{}, nil
	case "age_limited":
		return AgeLimited{Size: size, MaxAge: maxAge}, nil
	case "all":
		return KeepAll{}, nil
	default:
		return nil, fmt.Errorf("unsupported survivor selection: %s", name)
	}
}

// Truncation keeps the Size fittest individuals. Ties keep evolved order and a
// non-positive Size keeps everyone, ranked.
type Truncation struct {
	Size int
}

func (Truncation) Name() string {
	return "truncation"
}

func (s Truncation) Survivors(scores []Score) []int {
	ranked := rankDescending(fitnessOf(scores))
	if s.Size > 0 && len(ranked) > s.Size {
		ranked = ranked[:s.Size]
	}
	return ranked
}

// KeepBest keeps every individual sharing the maximal fitness, in order.
type KeepBest struct{}

func (KeepBest) Name() string {
	return "keep_best"
}

func (KeepBest) Survivors(scores []Score) []int {
	best, ok := Best(fitnessOf(scores))
	if !ok {
		return nil
	}
	var out []int
	for i, score := range scores {
		if score.Fitness == best {
			out = append(out, i)
		}
	}
	return out
}

// KeepAll never discards anyone, so the population grows every generation.
type KeepAll struct{}

func (KeepAll) Name() string {
	return "all"
}

func (KeepAll) Survivors(scores []Score) []int {
	out := make([]int, len(scores))
	for i := range out {
		out[i] = i
	}
	return out
}

// AgeLimited drops individuals that reached MaxAge and truncates the rest to
// Size. When everyone is too old the youngest cohort is kept instead.
type AgeLimited struct {
	Size   int
	MaxAge int
}

func (AgeLimited) Name() string {
	return "age_limited"
}

func (s AgeLimited) Survivors(scores []Score) []int {
	eligible := make([]int, 0, len(scores))
	for i, score := range scores {
		if s.MaxAge <= 0 || score.Age < s.MaxAge {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 && len(scores) > 0 {
		youngest := scores[0].Age
		for _, score := range scores[1:] {
			youngest = min(youngest, score.Age)
		}
		for i, score := range scores {
			if score.Age == youngest {
				eligible = append(eligible, i)
			}
		}
	}

	fitness := make([]float64, len(eligible))
	for i, idx := range eligible {
		fitness[i] = scores[idx].Fitness
	}
	ranked := rankDescending(fitness)
	if s.Size > 0 && len(ranked) > s.Size {
		ranked = ranked[:s.Size]
	}
	out := make([]int, len(ranked))
	for i, r := range ranked {
		out[i] = eligible[r]
	}
	return out
}

func fitnessOf(scores []Score) []float64 {
	out := make([]float64, len(scores))
	for i, score := range scores {
		out[i] = score.Fitness
	}
	return out
}
