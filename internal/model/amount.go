package model

import (
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/consts"
)

// IsValidTxHash reports whether s is a canonical network transaction hash:
// exactly 64 hexadecimal characters, no prefix.
func IsValidTxHash(s string) bool {
	if len(s) != consts.TX_HASH_HEX_LENGTH {
		return false
	}

	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}

	return true
}

// FormatAssetAmount renders an amount at the settlement asset's resolution.
func FormatAssetAmount(amount decimal.Decimal) string {
	return amount.StringFixed(consts.ASSET_DECIMALS)
}

// CalculateReferenceValue converts an asset amount into the reference
// currency at the given rate, rounded to reference-currency resolution.
func CalculateReferenceValue(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(consts.REFERENCE_DECIMALS)
}
