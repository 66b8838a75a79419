package predictor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiahewang/smart-irrigation/internal/model"
	"github.com/jiahewang/smart-irrigation/internal/predictor"
)

func TestPredictStaysInDryDownBand(t *testing.T) {
	h := predictor.NewHeuristicSeeded(1)

	for i := 0; i < 100; i++ {
		got, err := h.Predict(model.PredictionInput{SoilMoisture: 60})
		require.NoError(t, err)
		// 3% relative loss plus up to 2 points of disturbance
		require.GreaterOrEqual(t, got, 60*0.97-2)
		require.LessOrEqual(t, got, 60*0.97)
	}
}

func TestPredictClampsAtZero(t *testing.T) {
	h := predictor.NewHeuristicSeeded(1)

	for i := 0; i < 100; i++ {
		got, err := h.Predict(model.PredictionInput{SoilMoisture: 0.5})
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, 0.0)
	}
}

func TestPredictIsDeterministicPerSeed(t *testing.T) {
	a := predictor.NewHeuristicSeeded(42)
	b := predictor.NewHeuristicSeeded(42)

	for i := 0; i < 10; i++ {
		va, err := a.Predict(model.PredictionInput{SoilMoisture: 50})
		require.NoError(t, err)
		vb, err := b.Predict(model.PredictionInput{SoilMoisture: 50})
		require.NoError(t, err)
		require.Equal(t, va, vb)
	}
}
