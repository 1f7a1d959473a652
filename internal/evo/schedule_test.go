package evo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearSchedule(t *testing.T) {
	s := LinearSchedule{Start: 0.5, End: 0.1, Span: 4}
	assert.InDelta(t, 0.5, s.Probability(0), 1e-12)
	assert.InDelta(t, 0.3, s.Probability(2), 1e-12)
	assert.InDelta(t, 0.1, s.Probability(4), 1e-12)
	assert.InDelta(t, 0.1, s.Probability(40), 1e-12)
}

func TestExponentialScheduleReachesEnd(t *testing.T) {
	s, err := NewSchedule("exponential", 0.8, 0.05, 10)
	require.NoError(t, err)

	assert.InDelta(t, 0.8, s.Probability(0), 1e-9)
	assert.InDelta(t, 0.05, s.Probability(10), 1e-9)
	assert.InDelta(t, 0.05, s.Probability(100), 1e-9)
	assert.Less(t, s.Probability(5), s.Probability(4))
}

func TestNewScheduleValidation(t *testing.T) {
	s, err := NewSchedule("", 0.7, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.7, s.Probability(12))

	_, err = NewSchedule("linear", 1, 0, 0)
	assert.Error(t, err)
	_, err = NewSchedule("exponential", 0, 0.1, 5)
	assert.Error(t, err)
	_, err = NewSchedule("cosine", 1, 0, 5)
	assert.Error(t, err)
}
