package model

import (
	"errors"
	"math"
)

// Classify picks the most probable class and reports it as a percentage
// rounded to two decimals.
func Classify(probs []float32) (Prediction, error) {
	if len(probs) == 0 {
		return Prediction{}, errors.New("model returned no probabilities")
	}

	maxIdx := 0
	maxVal := probs[0]
	for i, val := range probs {
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}

	label, ok := Labels[maxIdx]
	if !ok {
		label = UnknownLabel
	}

	return Prediction{
		Class:      label,
		Confidence: round2(float64(maxVal) * 100),
	}, nil
}

// round2 rounds half to even, as Python's round does.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
