package platform

import (
	"evolver/internal/config"
	"evolver/internal/problem"
)

func paramsFromConfig(cfg config.RunConfig) problem.Params {
	return problem.Params{
		Population:       cfg.Population,
		Generations:      cfg.Generations,
		Seed:             cfg.Seed,
		FitnessGoal:      cfg.FitnessGoal,
		EvaluationsLimit: cfg.EvaluationsLimit,
		Recombination: problem.OperatorParams{
			Probability: cfg.Recombination.Probability,
			Final:       cfg.Recombination.Final,
			Schedule:    cfg.Recombination.Schedule,
		},
		ParentSelection: cfg.Recombination.ParentSelection,
		TournamentSize:  cfg.Recombination.TournamentSize,
		Mutation: problem.OperatorParams{
			Probability: cfg.Mutation.Probability,
			Final:       cfg.Mutation.Final,
			Schedule:    cfg.Mutation.Schedule,
		},
		OnlyMutateOffspring: cfg.Mutation.OnlyOffspring,
		MutationRate:        cfg.Mutation.Rate,
		Survivors:           cfg.Survivors.Strategy,
		SurvivorSize:        cfg.Survivors.Size,
		MaxAge:              cfg.Survivors.MaxAge,
		Dimensions:          cfg.Dimensions,
		TrapSize:            cfg.TrapSize,
	}
}
