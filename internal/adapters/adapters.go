package adapters

import (
	"context"
)

// RateClient fetches the latest rate table from an external source.
type RateClient interface {
	GetLatestRates(ctx context.Context) (map[string]float64, error)
}
