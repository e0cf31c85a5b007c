package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/store/tiptransaction"
)

// LogTransactionInput carries everything needed to record a tip attempt.
type LogTransactionInput struct {
	CreatorID        *uuid.UUID
	SenderAddress    *string
	RecipientAddress string
	AmountAsset      decimal.Decimal
	AmountReference  *decimal.Decimal
	TxHash           *string
	Memo             *string
	SourcePlatform   model.SourcePlatform
	SourceURL        *string
	Metadata         model.JSONB
}

// StatusUpdate mutates an existing record. Nil optional fields are left
// untouched; Metadata is merged shallowly over the stored map.
type StatusUpdate struct {
	Status        model.TransactionStatus
	Confirmations *int
	TxHash        *string
	ConfirmedAt   *time.Time
	Metadata      model.JSONB
}

// CreatorStats aggregates a creator's confirmed tips. All fields are zero
// when the creator has no confirmed records.
type CreatorStats struct {
	TotalTips            int64           `json:"total_tips"`
	TotalAssetVolume     decimal.Decimal `json:"total_asset_volume"`
	TotalReferenceVolume decimal.Decimal `json:"total_reference_volume"`
	TipsLast24Hours      int64           `json:"tips_last_24_hours"`
	TipsLast7Days        int64           `json:"tips_last_7_days"`
	TipsLast30Days       int64           `json:"tips_last_30_days"`
	AverageTipAsset      decimal.Decimal `json:"average_tip_asset"`
	LargestTipAsset      decimal.Decimal `json:"largest_tip_asset"`
}

type ILedger interface {
	// LogTransaction validates and inserts a new pending record. When the
	// supplied tx hash is already recorded, the existing record is
	// returned instead of a duplicate being created.
	LogTransaction(input LogTransactionInput) (*model.TipTransaction, error)

	// UpdateTransactionStatus applies a forward-only status change.
	// Returns (nil, nil) when the id does not exist; callers branch on
	// that rather than treat it as a failure.
	UpdateTransactionStatus(id uuid.UUID, update StatusUpdate) (*model.TipTransaction, error)

	GetTransactions(filter tiptransaction.ListFilter) ([]*model.TipTransaction, int64, error)

	// GetTransactionByID and GetTransactionByHash return (nil, nil) when
	// no record matches.
	GetTransactionByID(id uuid.UUID) (*model.TipTransaction, error)
	GetTransactionByHash(txHash string) (*model.TipTransaction, error)

	GetCreatorStats(creatorID uuid.UUID) (*CreatorStats, error)
}
