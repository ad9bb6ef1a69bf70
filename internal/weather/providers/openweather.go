package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/tbourn/emoto-backend/internal/weather"
)

// DefaultOpenWeatherURL is the current-weather endpoint.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// iconURLFormat expands an OpenWeatherMap icon code to its image.
const iconURLFormat = "https://openweathermap.org/img/wn/%s@2x.png"

var errNoAPIKey = errors.New("openweather api key is not configured")

// OpenWeatherConfig configures an OpenWeatherProvider. Zero values fall back
// to the defaults noted per field.
type OpenWeatherConfig struct {
	APIKey     string
	BaseURL    string // DefaultOpenWeatherURL
	Units      string // "imperial"
	MaxRetries int
	Client     *http.Client // http.DefaultClient
}

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap's
// current-weather-by-coordinates API.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	units   string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)

// NewOpenWeatherProvider builds a provider with its own circuit breaker.
func NewOpenWeatherProvider(cfg OpenWeatherConfig) *OpenWeatherProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenWeatherURL
	}
	if cfg.Units == "" {
		cfg.Units = "imperial"
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		units:   cfg.Units,
		httpCfg: HTTPClientConfig{
			Client: cfg.Client,
			Backoff: BackoffConfig{
				MaxRetries:      cfg.MaxRetries,
				InitialInterval: 250 * time.Millisecond,
				MaxInterval:     2 * time.Second,
			},
		},
		circuit: cb,
	}
}

// Name identifies the provider in logs.
func (p *OpenWeatherProvider) Name() string { return "openweathermap" }

type owmPayload struct {
	Name     string `json:"name"`
	Timezone *int   `json:"timezone"`
	Main     struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
		Icon string `json:"icon"`
	} `json:"weather"`
}

// Lookup fetches current conditions at (lat, lon).
func (p *OpenWeatherProvider) Lookup(ctx context.Context, lat, lon decimal.Decimal) (weather.Report, error) {
	if p.apiKey == "" {
		return weather.Report{}, errNoAPIKey
	}

	build := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", p.units)
		values.Set("lat", lat.String())
		values.Set("lon", lon.String())
		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, build)
	if err != nil {
		return weather.Report{}, fmt.Errorf("openweather: %w", err)
	}
	defer resp.Body.Close()

	var payload owmPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Report{}, fmt.Errorf("openweather: decode: %w", err)
	}
	return payload.report(), nil
}

func (pl owmPayload) report() weather.Report {
	var r weather.Report
	r.City = pl.Name
	if pl.Timezone != nil {
		r.TimeZone = formatOffset(*pl.Timezone)
	}
	if pl.Main.Temp != nil {
		r.Temperature = int(math.Round(*pl.Main.Temp))
	}
	if len(pl.Weather) > 0 {
		r.Weather = pl.Weather[0].Main
		if pl.Weather[0].Icon != "" {
			r.IconURL = fmt.Sprintf(iconURLFormat, pl.Weather[0].Icon)
		}
	}
	return r
}

// formatOffset renders a UTC offset in seconds as "UTC±hh:mm".
func formatOffset(sec int) string {
	sign := '+'
	if sec < 0 {
		sign = '-'
		sec = -sec
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, sec/3600, (sec%3600)/60)
}
