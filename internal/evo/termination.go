package evo

import "strings"

// Progress is what a problem knows about its own run when it decides whether
// to stop.
type Progress struct {
	// Generation counts completed generational steps.
	Generation  int
	Evaluations int
	BestFitness float64
	// Evaluated is false until at least one genotype has been evaluated, so
	// BestFitness is meaningless before then.
	Evaluated bool
}

type Termination interface {
	Name() string
	Done(progress Progress) bool
}

type GenerationLimit struct {
	Max int
}

func (GenerationLimit) Name() string {
	return "generation_limit"
}

func (t GenerationLimit) Done(progress Progress) bool {
	return progress.Generation >= t.Max
}

// EvaluationsLimit stops once Max evaluations have been spent. Max <= 0
// disables it.
type EvaluationsLimit struct {
	Max int
}

func (EvaluationsLimit) Name() string {
	return "evaluations_limit"
}

func (t EvaluationsLimit) Done(progress Progress) bool {
	return t.Max > 0 && progress.Evaluations >= t.Max
}

type FitnessGoal struct {
	Goal float64
}

func (FitnessGoal) Name() string {
	return "fitness_goal"
}

func (t FitnessGoal) Done(progress Progress) bool {
	return progress.Evaluated && progress.BestFitness >= t.Goal
}

// AnyOf stops as soon as one of its members does.
type AnyOf []Termination

func (a AnyOf) Name() string {
	names := make([]string, 0, len(a))
	for _, t := range a {
		names = append(names, t.Name())
	}
	return strings.Join(names, "|")
}

func (a AnyOf) Done(progress Progress) bool {
	for _, t := range a {
		if t.Done(progress) {
			return true
		}
	}
	return false
}
