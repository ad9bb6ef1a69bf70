package weather

import (
	"context"

	"github.com/shopspring/decimal"
)

// Report is a single provider answer for a coordinate pair.
type Report struct {
	City        string
	Weather     string
	TimeZone    string
	Temperature int
	IconURL     string
}

// Empty reports whether r carries no data at all. An empty report is treated
// as a failed lookup.
func (r Report) Empty() bool {
	return r == Report{}
}

// Provider resolves current conditions for a location. Implementations must
// honour ctx cancellation.
type Provider interface {
	Lookup(ctx context.Context, lat, lon decimal.Decimal) (Report, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, lat, lon decimal.Decimal) (Report, error)

// Lookup calls f(ctx, lat, lon).
func (f ProviderFunc) Lookup(ctx context.Context, lat, lon decimal.Decimal) (Report, error) {
	return f(ctx, lat, lon)
}
