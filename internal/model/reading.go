package model

import "time"

// SensorReading is one sample from a soil/environment probe. Immutable once
// produced; a new reading is created each cycle.
type SensorReading struct {
	SensorID       string    `json:"sensor_id"`
	SoilMoisture   float64   `json:"soil_moisture"`   // percent, 0..100
	Temperature    float64   `json:"temperature"`     // Celsius
	LightIntensity float64   `json:"light_intensity"` // lux
	Rainfall       float64   `json:"rainfall"`        // mm
	Timestamp      time.Time `json:"timestamp"`
}

// Normalize returns a copy with soil moisture clamped to [0,100] and a
// timestamp filled in when the producer left it zero. Other fields pass
// through; missing numerics decode as 0 which is already the gap default.
func (r SensorReading) Normalize(now time.Time) SensorReading {
	out := r
	if out.SoilMoisture < 0 {
		out.SoilMoisture = 0
	}
	if out.SoilMoisture > 100 {
		out.SoilMoisture = 100
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = now
	}
	return out
}
