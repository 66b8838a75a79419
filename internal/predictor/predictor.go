// Package predictor estimates near-future soil moisture. The Predictor
// interface keeps the concrete estimator pluggable; anything from the
// damped-trend heuristic below to a trained regression model can sit behind
// it without touching the engine or scheduler.
package predictor

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jiahewang/smart-irrigation/internal/model"
)

type Predictor interface {
	Predict(in model.PredictionInput) (float64, error)
}

// Heuristic forecasts a slow dry-down: 3% relative loss plus a small random
// disturbance, clamped to [0,100]. It stands in for a real model during
// development and in simulation deployments.
type Heuristic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewHeuristic() *Heuristic {
	return &Heuristic{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewHeuristicSeeded fixes the disturbance sequence; used by tests.
func NewHeuristicSeeded(seed int64) *Heuristic {
	return &Heuristic{rng: rand.New(rand.NewSource(seed))}
}

func (h *Heuristic) Predict(in model.PredictionInput) (float64, error) {
	h.mu.Lock()
	jitter := h.rng.Float64() * 2
	h.mu.Unlock()

	predicted := in.SoilMoisture*0.97 - jitter
	if predicted < 0 {
		predicted = 0
	}
	if predicted > 100 {
		predicted = 100
	}
	return predicted, nil
}
