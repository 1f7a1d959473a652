package evolver

// Evolve runs alg until ShouldTerminate reports true and returns the final
// population mapped to phenotype space. Evolve never samples probabilities
// itself; it only decides whether the operators run at all.
func Evolve[G, P, E any](alg Algorithm[G, P, E]) []Outcome[P, E] {
	size := alg.InitialPopulationSize()
	population := make([]Individual[G, E], 0, max(size, 0))
	for i := 0; i < size; i++ {
		population = append(population, evaluated(alg, alg.GenerateInitialGenotype()))
	}

	for !alg.ShouldTerminate() {
		var offspring []Individual[G, E]
		if p := alg.RecombinationProbability(); p > 0 {
			parents := alg.SelectParents(population)
			offspring = evaluateAll(alg, alg.Recombine(parents, clampProbability(p)))
		}

		var mutants []Individual[G, E]
		if p := alg.MutationProbability(); p > 0 {
			candidates := offspring
			if !alg.OnlyMutateOffspring() {
				candidates = concat(population, offspring)
			}
			mutants = evaluateAll(alg, alg.Mutate(candidates, clampProbability(p)))
		}

		population = alg.SelectNextGeneration(concat(population, offspring, mutants))
	}

	outcomes := make([]Outcome[P, E], 0, len(population))
	for _, individual := range population {
		outcomes = append(outcomes, Outcome[P, E]{
			Phenotype:  alg.PhenotypeFrom(individual.Genotype),
			Evaluation: individual.Evaluation,
		})
	}
	return outcomes
}

func evaluated[G, P, E any](alg Algorithm[G, P, E], genotype G) Individual[G, E] {
	return Individual[G, E]{Genotype: genotype, Evaluation: alg.Evaluate(genotype)}
}

func evaluateAll[G, P, E any](alg Algorithm[G, P, E], genotypes []G) []Individual[G, E] {
	out := make([]Individual[G, E], 0, len(genotypes))
	for _, genotype := range genotypes {
		out = append(out, evaluated(alg, genotype))
	}
	return out
}

// concat always allocates so operators never share a backing array with the
// population handed to them earlier.
func concat[G, E any](parts ...[]Individual[G, E]) []Individual[G, E] {
	n := 0
	for _, part := range parts {
		n += len(part)
	}
	out := make([]Individual[G, E], 0, n)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

func clampProbability(p float64) float64 {
	return min(p, 1.0)
}
