package evo

import "evolver/pkg/evolver"

// Score is the evaluation carried by catalogue problems. Fitness is written
// once by Evaluate and higher is better; Age counts generations survived and
// is advanced by NextGeneration.
type Score struct {
	Fitness float64 `json:"fitness"`
	Age     int     `json:"age"`
}

// Fitnesses extracts the fitness of each individual, preserving order.
func Fitnesses[G any](population []evolver.Individual[G, Score]) []float64 {
	out := make([]float64, len(population))
	for i, individual := range population {
		out[i] = individual.Evaluation.Fitness
	}
	return out
}

func pick[G any](population []evolver.Individual[G, Score], indices []int) []evolver.Individual[G, Score] {
	out := make([]evolver.Individual[G, Score], 0, len(indices))
	for _, idx := range indices {
		out = append(out, population[idx])
	}
	return out
}
