package model

import "fmt"

// The error taxonomy of the control loop. Sensor, weather and prediction
// failures are non-fatal to a cycle; an ActuationError is fatal to the start
// or stop call that caused it and leaves the device in the error state.

// SensorError reports a bad or missing reading.
type SensorError struct {
	Reason string
	Err    error
}

func (e *SensorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sensor: %s: %v", e.Reason, e.Err)
	}
	return "sensor: " + e.Reason
}

func (e *SensorError) Unwrap() error { return e.Err }

// WeatherError reports an unavailable or unusable weather upstream.
type WeatherError struct {
	Location string
	Err      error
}

func (e *WeatherError) Error() string {
	return fmt.Sprintf("weather %q: %v", e.Location, e.Err)
}

func (e *WeatherError) Unwrap() error { return e.Err }

// PredictionError reports a failed moisture forecast. Callers degrade to a
// current-value-only decision.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string { return fmt.Sprintf("prediction: %v", e.Err) }

func (e *PredictionError) Unwrap() error { return e.Err }

// ActuationError reports a failed start or stop. Op is "start" or "stop".
type ActuationError struct {
	Op  string
	Err error
}

func (e *ActuationError) Error() string { return fmt.Sprintf("device %s: %v", e.Op, e.Err) }

func (e *ActuationError) Unwrap() error { return e.Err }
