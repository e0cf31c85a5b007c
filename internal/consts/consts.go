package consts

const (
	// Decimal places of the shielded settlement asset (zatoshi resolution).
	ASSET_DECIMALS = 8

	// Decimal places of the reference (fiat) currency.
	REFERENCE_DECIMALS = 2

	// Length of a canonical network transaction hash in hex characters.
	TX_HASH_HEX_LENGTH = 64

	// Upper bound on tip memo size in bytes.
	MEMO_MAX_BYTES = 512
)
