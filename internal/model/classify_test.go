package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		probs      []float32
		class      string
		confidence float64
	}{
		{"benign", []float32{0.9, 0.1}, "Benign", 90},
		{"malignant", []float32{0.123456, 0.876544}, "Malignant", 87.65},
		{"single sigmoid unit", []float32{0.3}, "Benign", 30},
		{"index outside table", []float32{0.1, 0.2, 0.7}, UnknownLabel, 70},
		{"tie keeps first", []float32{0.5, 0.5}, "Benign", 50},
		{"certain", []float32{0, 1}, "Malignant", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Classify(tt.probs)
			require.NoError(t, err)
			assert.Equal(t, tt.class, p.Class)
			assert.InDelta(t, tt.confidence, p.Confidence, 1e-9)
		})
	}
}

func TestClassifyRoundsToTwoDecimals(t *testing.T) {
	p, err := Classify([]float32{0.333333, 0.666667})
	require.NoError(t, err)

	assert.Equal(t, "Malignant", p.Class)
	assert.Equal(t, p.Confidence, round2(p.Confidence))
	assert.InDelta(t, 66.67, p.Confidence, 1e-9)
	assert.GreaterOrEqual(t, p.Confidence, 0.0)
	assert.LessOrEqual(t, p.Confidence, 100.0)
}

func TestClassifyEmpty(t *testing.T) {
	_, err := Classify(nil)
	assert.Error(t, err)
}

func TestRound2HalfToEven(t *testing.T) {
	// 12.125 and 12.375 are exact in binary, so these are true ties.
	assert.Equal(t, 12.12, round2(12.125))
	assert.Equal(t, 12.38, round2(12.375))
	assert.Equal(t, 87.65, round2(87.654399))
}
