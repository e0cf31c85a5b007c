package walletrpc

import (
	"context"

	"github.com/shopspring/decimal"
)

type WalletKind string

const (
	KindInjected      WalletKind = "injected"
	KindWalletConnect WalletKind = "walletconnect"
	KindHardware      WalletKind = "hardware"
)

// Session is what the connector hands back on a successful connect.
type Session struct {
	Address string     `json:"address"`
	Kind    WalletKind `json:"kind"`
	ChainID int64      `json:"chain_id"`
}

// IWalletRPC is the narrow capability surface of the wallet connector:
// connect/disconnect, balance query, and approval signing. Provider
// internals stay behind the bridge.
type IWalletRPC interface {
	// Connect establishes a wallet session. forceAccountSelection makes
	// the bridge skip session restoration and present a fresh account
	// picker, so a cached session cannot silently reconnect.
	Connect(ctx context.Context, kind WalletKind, forceAccountSelection bool) (*Session, error)

	Disconnect(ctx context.Context) error

	Balance(ctx context.Context, token string) (decimal.Decimal, error)

	// Approve asks the wallet to sign a token approval for the given
	// amount and returns the approval transaction hash.
	Approve(ctx context.Context, token string, amount decimal.Decimal) (string, error)
}
