package model

// Weather feature defaults used when no snapshot is available.
const (
	defaultWeatherHumidity = 50.0
)

// PredictionInput is the flat feature view handed to a Predictor. Built
// fresh each cycle, never persisted.
type PredictionInput struct {
	SoilMoisture       float64 `json:"soil_moisture"`
	Temperature        float64 `json:"temperature"`
	LightIntensity     float64 `json:"light_intensity"`
	Rainfall           float64 `json:"rainfall"`
	WeatherTemperature float64 `json:"weather_temperature"`
	WeatherHumidity    float64 `json:"weather_humidity"`
}

// NewPredictionInput combines a reading with an optional weather snapshot.
// Absent weather falls back to the probe temperature and a neutral humidity.
func NewPredictionInput(r SensorReading, w *WeatherSnapshot) PredictionInput {
	in := PredictionInput{
		SoilMoisture:       r.SoilMoisture,
		Temperature:        r.Temperature,
		LightIntensity:     r.LightIntensity,
		Rainfall:           r.Rainfall,
		WeatherTemperature: r.Temperature,
		WeatherHumidity:    defaultWeatherHumidity,
	}
	if w != nil {
		in.WeatherTemperature = w.Temperature
		in.WeatherHumidity = w.Humidity
	}
	return in
}
