// Package evolver drives population-based evolutionary search over a
// problem-supplied Algorithm. The package owns sequencing only: genotype,
// phenotype and evaluation representations, operators and stopping rules all
// belong to the Algorithm implementation.
package evolver

// Individual pairs a genotype with the evaluation computed when it was created.
type Individual[G, E any] struct {
	Genotype   G
	Evaluation E
}

// Outcome is a surviving individual expressed in phenotype space.
type Outcome[P, E any] struct {
	Phenotype  P
	Evaluation E
}

// Algorithm is implemented by a search problem. G is the genotype, P the
// phenotype and E the evaluation type.
type Algorithm[G, P, E any] interface {
	// InitialPopulationSize returns how many genotypes seed the search.
	InitialPopulationSize() int

	// GenerateInitialGenotype is called InitialPopulationSize times before the
	// first generation.
	GenerateInitialGenotype() G

	PhenotypeFrom(genotype G) P
	GenotypeFrom(phenotype P) G

	// Evaluate is the fitness function. Every genotype is evaluated exactly
	// once, immediately after it is created. E may carry more than fitness
	// (an age counter, say); the implementation may update such metadata later
	// but must never rewrite the fitness it computed here.
	Evaluate(genotype G) E

	// ShouldTerminate is checked once before every generational step,
	// including the first.
	ShouldTerminate() bool

	// RecombinationProbability is expected in [0, 1]. Values above 1 are
	// passed on as 1; values <= 0 skip recombination for the generation.
	RecombinationProbability() float64

	// SelectParents is only called when recombination is enabled.
	SelectParents(population []Individual[G, E]) []Individual[G, E]

	// Recombine is only called when recombination is enabled.
	Recombine(parents []Individual[G, E], probability float64) []G

	// MutationProbability follows the same rules as RecombinationProbability.
	MutationProbability() float64

	// OnlyMutateOffspring restricts mutation candidates to the offspring of
	// the current generation. Otherwise the current population is included.
	OnlyMutateOffspring() bool

	// Mutate is only called when mutation is enabled.
	Mutate(candidates []Individual[G, E], probability float64) []G

	// SelectNextGeneration picks the survivors from the population followed
	// by this generation's offspring and mutants, in that order. The size of
	// the result is up to the implementation.
	SelectNextGeneration(evolved []Individual[G, E]) []Individual[G, E]
}
