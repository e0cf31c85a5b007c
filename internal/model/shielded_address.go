package model

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Human-readable parts of shielded payment addresses.
const (
	shieldedHRPMainnet = "zs"
	shieldedHRPTestnet = "ztestsapling"
)

// IsShieldedAddress reports whether addr is a well-formed shielded payment
// address. Shielded addresses are bech32-encoded and exceed the standard
// 90-character limit, hence DecodeNoLimit.
func IsShieldedAddress(addr string) bool {
	hrp, _, err := bech32.DecodeNoLimit(strings.ToLower(addr))
	if err != nil {
		return false
	}

	return hrp == shieldedHRPMainnet || hrp == shieldedHRPTestnet
}
