// Package config loads daemon settings from a YAML file with environment
// overrides. Components receive the values they need at construction; there
// is no process-global configuration object.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type MQTTConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
}

type SensorConfig struct {
	// Source selects where readings come from: "simulated" or "mqtt".
	Source            string   `yaml:"source"`
	IDs               []string `yaml:"ids"`
	Topic             string   `yaml:"topic"`               // mqtt source subscription
	StaleAfterMinutes int      `yaml:"stale_after_minutes"` // mqtt source freshness bound
}

type WeatherConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Location  string `yaml:"location"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

type InfluxConfig struct {
	URL    string `yaml:"url"` // empty disables the Influx sink
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

type IrrigationConfig struct {
	SoilMoistureThreshold     float64 `yaml:"soil_moisture_threshold"`
	DefaultDurationMinutes    int     `yaml:"default_duration_minutes"`
	CollectionIntervalMinutes int     `yaml:"collection_interval_minutes"`
}

type AlarmConfig struct {
	Enabled               bool    `yaml:"enabled"`
	SoilMoistureThreshold float64 `yaml:"soil_moisture_threshold"`
}

type ActuatorConfig struct {
	// Kind selects the actuator: "simulated" or "mqtt".
	Kind  string `yaml:"kind"`
	Topic string `yaml:"topic"` // state-change topic for the mqtt actuator
}

type Config struct {
	LogLevel   string           `yaml:"log_level"`
	HTTPPort   int              `yaml:"http_port"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Sensor     SensorConfig     `yaml:"sensor"`
	Weather    WeatherConfig    `yaml:"weather"`
	Influx     InfluxConfig     `yaml:"influx"`
	Irrigation IrrigationConfig `yaml:"irrigation"`
	Alarm      AlarmConfig      `yaml:"alarm"`
	Actuator   ActuatorConfig   `yaml:"actuator"`
	EventTopic string           `yaml:"event_topic"` // empty disables the MQTT event sink
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		HTTPPort: 8080,
		MQTT: MQTTConfig{
			Host:     "localhost",
			Port:     1883,
			Username: "guest",
			Password: "guest",
			ClientID: "irrigationd",
		},
		Sensor: SensorConfig{
			Source:            "simulated",
			IDs:               []string{"sensor_001", "sensor_002"},
			Topic:             "sensor/data/#",
			StaleAfterMinutes: 15,
		},
		Weather: WeatherConfig{
			BaseURL:   "https://api.openweathermap.org/data/2.5/weather",
			Location:  "Beijing",
			TimeoutMS: 10000,
		},
		Irrigation: IrrigationConfig{
			SoilMoistureThreshold:     30.0,
			DefaultDurationMinutes:    30,
			CollectionIntervalMinutes: 5,
		},
		Alarm: AlarmConfig{
			Enabled:               true,
			SoilMoistureThreshold: 25.0,
		},
		Actuator: ActuatorConfig{
			Kind:  "simulated",
			Topic: "event/StateChange/{sensor}",
		},
		EventTopic: "event/{type}/{sensor}",
	}
}

// Load reads path (optional), applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		contents, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv maps the environment variables the deployment scripts set onto
// the config. Unset variables leave file/default values intact.
func applyEnv(cfg *Config) {
	envStr("MQTT_HOST", &cfg.MQTT.Host)
	envInt("MQTT_PORT", &cfg.MQTT.Port)
	envStr("MQTT_USER", &cfg.MQTT.Username)
	envStr("MQTT_PASSWORD", &cfg.MQTT.Password)
	envStr("MQTT_CLIENT_ID", &cfg.MQTT.ClientID)

	envStr("WEATHER_API_KEY", &cfg.Weather.APIKey)
	envStr("WEATHER_BASE_URL", &cfg.Weather.BaseURL)
	envStr("WEATHER_LOCATION", &cfg.Weather.Location)

	envStr("INFLUX_URL", &cfg.Influx.URL)
	envStr("INFLUX_TOKEN", &cfg.Influx.Token)
	envStr("INFLUX_ORG", &cfg.Influx.Org)
	envStr("INFLUX_BUCKET", &cfg.Influx.Bucket)

	envFloat("SOIL_MOISTURE_THRESHOLD", &cfg.Irrigation.SoilMoistureThreshold)
	envInt("DEFAULT_IRRIGATION_DURATION", &cfg.Irrigation.DefaultDurationMinutes)
	envInt("DATA_COLLECTION_INTERVAL", &cfg.Irrigation.CollectionIntervalMinutes)

	envFloat("ALARM_THRESHOLD", &cfg.Alarm.SoilMoistureThreshold)
	if v := strings.TrimSpace(os.Getenv("ALARM_ENABLED")); v != "" {
		cfg.Alarm.Enabled = strings.EqualFold(v, "true") || v == "1"
	}

	envStr("LOG_LEVEL", &cfg.LogLevel)
	envInt("HTTP_PORT", &cfg.HTTPPort)
}

// Validate rejects configurations the control loop cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is not set")
	}
	if t := cfg.Irrigation.SoilMoistureThreshold; t < 0 || t > 100 {
		return fmt.Errorf("irrigation threshold %.1f out of range [0,100]", t)
	}
	if t := cfg.Alarm.SoilMoistureThreshold; t < 0 || t > 100 {
		return fmt.Errorf("alarm threshold %.1f out of range [0,100]", t)
	}
	if cfg.Irrigation.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("default irrigation duration must be positive")
	}
	if cfg.Irrigation.CollectionIntervalMinutes <= 0 {
		return fmt.Errorf("collection interval must be positive")
	}
	switch cfg.Sensor.Source {
	case "simulated", "mqtt":
	default:
		return fmt.Errorf("unknown sensor source %q", cfg.Sensor.Source)
	}
	switch cfg.Actuator.Kind {
	case "simulated", "mqtt":
	default:
		return fmt.Errorf("unknown actuator kind %q", cfg.Actuator.Kind)
	}
	if cfg.Sensor.Source == "simulated" && len(cfg.Sensor.IDs) == 0 {
		return fmt.Errorf("simulated sensor source needs at least one sensor id")
	}
	return nil
}

// NeedsMQTT reports whether any configured component talks to the broker.
func (c *Config) NeedsMQTT() bool {
	return c.Sensor.Source == "mqtt" || c.Actuator.Kind == "mqtt" || strings.TrimSpace(c.EventTopic) != ""
}

func envStr(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64); err == nil {
			*dst = f
		}
	}
}
