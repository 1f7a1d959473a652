package evo

import (
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Size   int
	Best   float64
	Mean   float64
	Min    float64
	StdDev float64
}

// Summarize describes a set of fitness values. An empty set yields a zero
// Summary.
func Summarize(fitness []float64) Summary {
	if len(fitness) == 0 {
		return Summary{}
	}
	summary := Summary{
		Size: len(fitness),
		Best: floats.Max(fitness),
		Min:  floats.Min(fitness),
	}
	if len(fitness) == 1 {
		summary.Mean = fitness[0]
		return summary
	}
	summary.Mean, summary.StdDev = stat.MeanStdDev(fitness, nil)
	return summary
}

func Best[T constraints.Ordered](values []T) (T, bool) {
	var best T
	if len(values) == 0 {
		return best, false
	}
	best = values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best, true
}

func Worst[T constraints.Ordered](values []T) (T, bool) {
	var worst T
	if len(values) == 0 {
		return worst, false
	}
	worst = values[0]
	for _, v := range values[1:] {
		if v < worst {
			worst = v
		}
	}
	return worst, true
}
