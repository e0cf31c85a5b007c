package oracle

import (
	"context"

	"github.com/shopspring/decimal"
)

// IOracle looks up the reference-currency rate of a settlement token.
type IOracle interface {
	// GetAssetRate returns how much reference currency one unit of the
	// token is worth right now.
	GetAssetRate(ctx context.Context, token, currency string) (decimal.Decimal, error)

	// GetCachedAssetRate answers from the cache when it is fresh enough,
	// falling back to a live lookup.
	GetCachedAssetRate(ctx context.Context, token, currency string) (decimal.Decimal, error)
}
