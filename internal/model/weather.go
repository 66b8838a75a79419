package model

import "time"

// WeatherSnapshot holds current conditions for the configured location.
// Optional everywhere it is consumed: a missing snapshot never blocks a
// decision.
type WeatherSnapshot struct {
	Temperature   float64   `json:"temperature"` // Celsius
	Humidity      float64   `json:"humidity"`    // percent
	Condition     string    `json:"condition"`
	Precipitation float64   `json:"precipitation"` // mm, last hour
	FetchedAt     time.Time `json:"fetched_at"`
}
