// Package weather fetches current conditions for the decision loop. Weather
// is advisory: every failure here is non-fatal to a cycle.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jiahewang/smart-irrigation/internal/model"
)

// Source returns current conditions for a location.
type Source interface {
	Fetch(ctx context.Context, location string) (model.WeatherSnapshot, error)
}

type owmCurrent struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

// OpenWeatherClient calls the OpenWeather current-weather API.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewOpenWeatherClient(apiKey, baseURL string, timeout time.Duration) *OpenWeatherClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *OpenWeatherClient) Fetch(ctx context.Context, location string) (model.WeatherSnapshot, error) {
	if c.apiKey == "" {
		return model.WeatherSnapshot{}, &model.WeatherError{Location: location, Err: fmt.Errorf("missing api key")}
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return model.WeatherSnapshot{}, &model.WeatherError{Location: location, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.WeatherSnapshot{}, &model.WeatherError{Location: location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return model.WeatherSnapshot{}, &model.WeatherError{
			Location: location,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var out owmCurrent
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.WeatherSnapshot{}, &model.WeatherError{Location: location, Err: err}
	}

	snap := model.WeatherSnapshot{
		Temperature:   out.Main.Temp,
		Humidity:      out.Main.Humidity,
		Precipitation: out.Rain.OneHour,
		FetchedAt:     time.Now(),
	}
	if len(out.Weather) > 0 {
		snap.Condition = out.Weather[0].Description
	}
	return snap, nil
}
