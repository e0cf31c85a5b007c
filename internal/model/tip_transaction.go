package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// CanTransitionTo enforces forward-only status movement. A record never
// leaves a terminal status, and nothing transitions back into pending.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s == next {
		return true
	}

	switch s {
	case TransactionStatusPending:
		return next == TransactionStatusConfirmed || next == TransactionStatusFailed
	default:
		return false
	}
}

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusConfirmed || s == TransactionStatusFailed
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusConfirmed, TransactionStatusFailed:
		return true
	}
	return false
}

type SourcePlatform string

const (
	SourcePlatformWeb       SourcePlatform = "web"
	SourcePlatformExtension SourcePlatform = "extension"
	SourcePlatformAPI       SourcePlatform = "api"
	SourcePlatformWidget    SourcePlatform = "widget"
)

// JSONB is the metadata bag persisted as a jsonb column. Updates merge keys
// shallowly over the existing map; nested values are overwritten whole.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = JSONB{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.Errorf("unsupported jsonb source type %T", value)
	}

	if len(raw) == 0 {
		*j = JSONB{}
		return nil
	}

	return json.Unmarshal(raw, j)
}

// Merge overlays other onto a copy of j, key by key. This is a shallow
// merge: a colliding key is replaced wholesale even when both values are
// maps.
func (j JSONB) Merge(other JSONB) JSONB {
	merged := JSONB{}
	for k, v := range j {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// TipTransaction is the ledger's unit of record. Rows are appended and
// updated, never deleted.
type TipTransaction struct {
	ID               uuid.UUID         `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	CreatorID        *uuid.UUID        `json:"creator_id" gorm:"column:creator_id;type:uuid;index"`
	SenderAddress    *string           `json:"sender_address" gorm:"column:sender_address"`
	RecipientAddress string            `json:"recipient_address" gorm:"column:recipient_address;not null"`
	AmountAsset      decimal.Decimal   `json:"amount_asset" gorm:"column:amount_asset;type:decimal(18,8);not null"`
	AmountReference  *decimal.Decimal  `json:"amount_reference" gorm:"column:amount_reference;type:decimal(10,2)"`
	TxHash           *string           `json:"tx_hash" gorm:"column:tx_hash;uniqueIndex"`
	Status           TransactionStatus `json:"status" gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
	Confirmations    int               `json:"confirmations" gorm:"column:confirmations;default:0"`
	Memo             *string           `json:"memo" gorm:"column:memo"`
	SourcePlatform   SourcePlatform    `json:"source_platform" gorm:"column:source_platform;type:varchar(50);not null"`
	SourceURL        *string           `json:"source_url" gorm:"column:source_url"`
	CreatedAt        time.Time         `json:"created_at" gorm:"column:created_at;not null;index:idx_tip_transactions_created_at,sort:desc"`
	ConfirmedAt      *time.Time        `json:"confirmed_at" gorm:"column:confirmed_at"`
	Metadata         JSONB             `json:"metadata" gorm:"column:metadata;type:jsonb;default:'{}'"`
}

func (TipTransaction) TableName() string {
	return "tip_transactions"
}
