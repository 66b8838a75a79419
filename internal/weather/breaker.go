package weather

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jiahewang/smart-irrigation/internal/model"
)

// BreakerSource wraps a Source with a circuit breaker so a flapping weather
// API stops eating a request timeout out of every cycle.
type BreakerSource struct {
	inner Source
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerSource(inner Source) *BreakerSource {
	return &BreakerSource{
		inner: inner,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "weather-api",
			Interval: time.Minute,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (b *BreakerSource) Fetch(ctx context.Context, location string) (model.WeatherSnapshot, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Fetch(ctx, location)
	})
	if err != nil {
		if _, ok := err.(*model.WeatherError); ok {
			return model.WeatherSnapshot{}, err
		}
		// breaker-open and friends
		return model.WeatherSnapshot{}, &model.WeatherError{Location: location, Err: err}
	}
	return res.(model.WeatherSnapshot), nil
}
