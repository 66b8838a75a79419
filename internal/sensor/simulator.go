package sensor

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jiahewang/smart-irrigation/internal/model"
)

// Plausible probe ranges.
const (
	moistureMin, moistureMax = 10.0, 90.0
	tempMin, tempMax         = 5.0, 35.0
	lightMin, lightMax       = 100.0, 900.0
	rainMax                  = 5.0
)

// Simulator keeps per-sensor internal state and drifts it between reads, so
// consecutive cycles look like a real probe instead of white noise.
type Simulator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	ids     []string
	next    int
	state   map[string]*probeState
	nowFunc func() time.Time
}

type probeState struct {
	moisture float64
	temp     float64
	light    float64
}

func NewSimulator(sensorIDs []string) *Simulator {
	return newSimulator(sensorIDs, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSimulatorSeeded fixes the random sequence; used by tests.
func NewSimulatorSeeded(sensorIDs []string, seed int64) *Simulator {
	return newSimulator(sensorIDs, rand.New(rand.NewSource(seed)))
}

func newSimulator(sensorIDs []string, rng *rand.Rand) *Simulator {
	s := &Simulator{
		rng:     rng,
		ids:     sensorIDs,
		state:   make(map[string]*probeState, len(sensorIDs)),
		nowFunc: time.Now,
	}
	for _, id := range sensorIDs {
		s.state[id] = &probeState{
			moisture: moistureMin + rng.Float64()*(moistureMax-moistureMin),
			temp:     tempMin + rng.Float64()*(tempMax-tempMin),
			light:    lightMin + rng.Float64()*(lightMax-lightMin),
		}
	}
	return s
}

// Read rotates through the configured sensors and returns the next probe's
// drifted reading.
func (s *Simulator) Read(_ context.Context) (model.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ids) == 0 {
		return model.SensorReading{}, &model.SensorError{Reason: "no sensors configured"}
	}
	id := s.ids[s.next%len(s.ids)]
	s.next++

	st := s.state[id]
	// slow dry-down with occasional rain events pushing moisture back up
	rain := 0.0
	if s.rng.Float64() < 0.1 {
		rain = round2(s.rng.Float64() * rainMax)
	}
	st.moisture = clamp(st.moisture+s.rng.Float64()*0.5-1.0+rain*1.5, moistureMin, moistureMax)
	st.temp = clamp(st.temp+s.rng.Float64()*1.6-0.8, tempMin, tempMax)
	st.light = clamp(st.light+s.rng.Float64()*120-60, lightMin, lightMax)

	return model.SensorReading{
		SensorID:       id,
		SoilMoisture:   round2(st.moisture),
		Temperature:    round2(st.temp),
		LightIntensity: round2(st.light),
		Rainfall:       rain,
		Timestamp:      s.nowFunc(),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
