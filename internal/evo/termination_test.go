package evo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerationLimit(t *testing.T) {
	limit := GenerationLimit{Max: 3}
	assert.False(t, limit.Done(Progress{Generation: 2}))
	assert.True(t, limit.Done(Progress{Generation: 3}))
	assert.True(t, GenerationLimit{}.Done(Progress{}))
}

func TestEvaluationsLimitDisabledWhenZero(t *testing.T) {
	assert.False(t, EvaluationsLimit{}.Done(Progress{Evaluations: 1e6}))
	assert.True(t, EvaluationsLimit{Max: 10}.Done(Progress{Evaluations: 10}))
}

func TestFitnessGoalWaitsForEvaluation(t *testing.T) {
	goal := FitnessGoal{Goal: 0}
	assert.False(t, goal.Done(Progress{}))
	assert.True(t, goal.Done(Progress{Evaluated: true, BestFitness: 0}))
	assert.False(t, goal.Done(Progress{Evaluated: true, BestFitness: -0.1}))
}

func TestAnyOf(t *testing.T) {
	policy := AnyOf{GenerationLimit{Max: 10}, FitnessGoal{Goal: 1}}
	assert.Equal(t, "generation_limit|fitness_goal", policy.Name())
	assert.False(t, policy.Done(Progress{Generation: 1, Evaluated: true, BestFitness: 0.5}))
	assert.True(t, policy.Done(Progress{Generation: 1, Evaluated: true, BestFitness: 1}))
	assert.True(t, policy.Done(Progress{Generation: 10}))
	assert.False(t, AnyOf{}.Done(Progress{}))
}
