package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetModelLoaded(t *testing.T) {
	SetModelLoaded(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(ModelLoaded))

	SetModelLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(ModelLoaded))
}

func TestPredictionsCounter(t *testing.T) {
	before := testutil.ToFloat64(Predictions.WithLabelValues("Benign"))

	Predictions.WithLabelValues("Benign").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(Predictions.WithLabelValues("Benign")))
}
