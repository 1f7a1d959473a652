package evo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.Size)
	assert.Equal(t, 9.0, s.Best)
	assert.Equal(t, 2.0, s.Min)
	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.138089935, s.StdDev, 1e-6)
}

func TestSummarizeDegenerate(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{Size: 1, Best: 3, Mean: 3, Min: 3}, Summarize([]float64{3}))
}

func TestBestWorst(t *testing.T) {
	best, ok := Best([]int{3, 9, -1})
	assert.True(t, ok)
	assert.Equal(t, 9, best)

	worst, ok := Worst([]string{"b", "a", "c"})
	assert.True(t, ok)
	assert.Equal(t, "a", worst)

	_, ok = Best[float64](nil)
	assert.False(t, ok)
}
