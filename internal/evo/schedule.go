package evo

import (
	"fmt"
	"math"
)

// Schedule yields an operator probability for a generation. Problems re-read
// it every generation, which is how rates anneal over a run.
type Schedule interface {
	Name() string
	Probability(generation int) float64
}

func NewSchedule(name string, start, end float64, span int) (Schedule, error) {
	switch name {
	case "", "const":
		return ConstSchedule{Value: start}, nil
	case "linear":
		if span <= 0 {
			return nil, fmt.Errorf("linear schedule span must be > 0")
		}
		return LinearSchedule{Start: start, End: end, Span: span}, nil
	case "exponential":
		if span <= 0 {
			return nil, fmt.Errorf("exponential schedule span must be > 0")
		}
		if start <= 0 || end <= 0 {
			return nil, fmt.Errorf("exponential schedule bounds must be > 0")
		}
		return ExponentialSchedule{
			Start:  start,
			Factor: math.Pow(end/start, 1/float64(span)),
			Floor:  min(start, end),
			Cap:    max(start, end),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported schedule: %s", name)
	}
}

type ConstSchedule struct {
	Value float64
}

func (ConstSchedule) Name() string {
	return "const"
}

func (s ConstSchedule) Probability(_ int) float64 {
	return s.Value
}

// LinearSchedule moves from Start to End over Span generations and then holds
// End.
type LinearSchedule struct {
	Start float64
	End   float64
	Span  int
}

func (LinearSchedule) Name() string {
	return "linear"
}

func (s LinearSchedule) Probability(generation int) float64 {
	if s.Span <= 0 || generation >= s.Span {
		return s.End
	}
	if generation <= 0 {
		return s.Start
	}
	t := float64(generation) / float64(s.Span)
	return s.Start + (s.End-s.Start)*t
}

// ExponentialSchedule multiplies Start by Factor every generation, bounded by
// [Floor, Cap] when those are set.
type ExponentialSchedule struct {
	Start  float64
	Factor float64
	Floor  float64
	Cap    float64
}

func (ExponentialSchedule) Name() string {
	return "exponential"
}

func (s ExponentialSchedule) Probability(generation int) float64 {
	p := s.Start * math.Pow(s.Factor, float64(max(generation, 0)))
	if s.Floor > 0 && p < s.Floor {
		p = s.Floor
	}
	if s.Cap > 0 && p > s.Cap {
		p = s.Cap
	}
	return p
}
