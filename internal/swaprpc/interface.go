package swaprpc

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Route is an intent-based quote: amount in, expected amount out, and an
// opaque route id the solver network fulfills. How the route is assembled
// is the collaborator's business.
type Route struct {
	ID          string          `json:"id"`
	FromToken   string          `json:"from_token"`
	ToAsset     string          `json:"to_asset"`
	AmountIn    decimal.Decimal `json:"amount_in"`
	ExpectedOut decimal.Decimal `json:"expected_out"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

type ExecuteResult struct {
	TxHash    string          `json:"tx_hash"`
	AmountOut decimal.Decimal `json:"amount_out"`
}

type ISwapRPC interface {
	Quote(ctx context.Context, fromToken string, amountIn decimal.Decimal, toAsset string) (*Route, error)

	// Execute commits the quoted route. Once this call is in flight the
	// funds are committed on-chain; there is no cancel.
	Execute(ctx context.Context, route *Route) (*ExecuteResult, error)
}
