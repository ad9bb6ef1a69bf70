// Package weather implements the per-profile weather cache. A profile's
// WeatherSnapshot is served as-is while it is fresh and refreshed from a
// Provider, on the request path, once it is older than the configured
// threshold. A failed refresh never surfaces to the caller: the previous
// snapshot is kept and the next read tries again.
package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/tbourn/emoto-backend/internal/domain"
)

// DefaultTimeout bounds a single provider lookup when no timeout is set.
const DefaultTimeout = 5 * time.Second

var (
	// ErrEmptyReport is recorded when the provider answered without data.
	ErrEmptyReport = errors.New("weather provider returned an empty report")
	// ErrNoProvider is recorded when the cache has no provider configured.
	ErrNoProvider = errors.New("weather provider not configured")
	// ErrUnknownField is returned by Read and ParseField for unknown names.
	ErrUnknownField = errors.New("unknown weather field")
)

// Field names one readable attribute of a WeatherSnapshot.
type Field int

const (
	FieldCity Field = iota
	FieldWeather
	FieldTimeZone
	FieldTemperature
	FieldIconURL
)

var fieldNames = [...]string{
	FieldCity:        "city",
	FieldWeather:     "weather",
	FieldTimeZone:    "timeZone",
	FieldTemperature: "temperature",
	FieldIconURL:     "weatherIconUrl",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField maps a field name (case-insensitive) to a Field.
func ParseField(s string) (Field, error) {
	for i, n := range fieldNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Cache applies the read-with-refresh policy to profile weather snapshots.
// It holds no snapshots itself: state lives on the Profile and persisting a
// refreshed snapshot is the caller's job. A Cache is safe for concurrent use.
type Cache struct {
	provider  Provider
	threshold time.Duration
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger

	group singleflight.Group
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTimeout bounds each provider lookup. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the sink for refresh diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// New returns a Cache that refreshes snapshots older than threshold.
func New(p Provider, threshold time.Duration, opts ...Option) *Cache {
	c := &Cache{
		provider:  p,
		threshold: threshold,
		timeout:   DefaultTimeout,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured expiration threshold.
func (c *Cache) Threshold() time.Duration { return c.threshold }

// Expired reports whether s is older than the threshold. A snapshot that was
// never fetched is always expired.
func (c *Cache) Expired(s domain.WeatherSnapshot) bool {
	if s.FetchedAt.IsZero() {
		return true
	}
	return c.now().Sub(s.FetchedAt) > c.threshold
}

// Snapshot returns p's weather, refreshing it first when expired. The second
// result reports whether p.Weather was replaced and should be persisted.
func (c *Cache) Snapshot(ctx context.Context, p *domain.Profile) (domain.WeatherSnapshot, bool) {
	refreshed := false
	if c.Expired(p.Weather) {
		refreshed = c.Refresh(ctx, p)
	}
	return p.Weather, refreshed
}

// Read returns one field of p's weather under the same policy as Snapshot.
// Temperature is returned as an int, every other field as a string.
func (c *Cache) Read(ctx context.Context, p *domain.Profile, f Field) (any, error) {
	if f < 0 || int(f) >= len(fieldNames) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	s, _ := c.Snapshot(ctx, p)
	switch f {
	case FieldCity:
		return s.City, nil
	case FieldWeather:
		return s.Description, nil
	case FieldTimeZone:
		return s.TimeZone, nil
	case FieldTemperature:
		return s.Temperature, nil
	default:
		return s.IconURL, nil
	}
}

// City is Read(ctx, p, FieldCity) typed.
func (c *Cache) City(ctx context.Context, p *domain.Profile) string {
	s, _ := c.Snapshot(ctx, p)
	return s.City
}

// Temperature is Read(ctx, p, FieldTemperature) typed.
func (c *Cache) Temperature(ctx context.Context, p *domain.Profile) int {
	s, _ := c.Snapshot(ctx, p)
	return s.Temperature
}

// Refresh looks up p's coordinates and, on success, replaces all of
// p.Weather at once with FetchedAt set to now at second precision. On
// failure p.Weather is left untouched, a warning is logged, and false is
// returned.
//
// Concurrent refreshes for the same profile and coordinates share one
// provider call. The shared call is detached from the caller's cancellation
// and bounded by the cache timeout instead.
func (c *Cache) Refresh(ctx context.Context, p *domain.Profile) bool {
	tr := otel.Tracer("weather/Cache")
	ctx, span := tr.Start(ctx, "Refresh",
		trace.WithAttributes(
			attribute.String("profile.username", p.Username),
			attribute.String("geo.lat", p.Latitude.String()),
			attribute.String("geo.lon", p.Longitude.String()),
		),
	)
	defer span.End()

	lat, lon := p.Latitude, p.Longitude
	key := p.Username + "|" + lat.String() + "," + lon.String()

	v, err, shared := c.group.Do(key, func() (any, error) {
		if c.provider == nil {
			return nil, ErrNoProvider
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		start := time.Now()
		r, err := c.provider.Lookup(lctx, lat, lon)
		providerDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		if r.Empty() {
			return nil, ErrEmptyReport
		}
		return r, nil
	})
	span.SetAttributes(attribute.Bool("weather.shared", shared))

	if err != nil {
		refreshTotal.WithLabelValues(outcomeFailure).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "weather lookup failed")
		c.log.Warn().
			Err(err).
			Str("username", p.Username).
			Str("lat", lat.String()).
			Str("lon", lon.String()).
			Msg("weather lookup failed")
		return false
	}

	r := v.(Report)
	p.Weather = domain.WeatherSnapshot{
		City:        r.City,
		Description: r.Weather,
		TimeZone:    r.TimeZone,
		Temperature: r.Temperature,
		IconURL:     r.IconURL,
		FetchedAt:   c.now().UTC().Truncate(time.Second),
	}
	refreshTotal.WithLabelValues(outcomeSuccess).Inc()
	return true
}
