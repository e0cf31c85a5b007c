package tiptransaction

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shieldtip/shieldtip-backend/internal/model"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	CreatorID      *uuid.UUID
	Status         model.TransactionStatus
	SourcePlatform model.SourcePlatform
	StartTime      *time.Time
	EndTime        *time.Time
	Limit          int
	Offset         int
}

type IStore interface {
	Create(db *gorm.DB, transaction *model.TipTransaction) (*model.TipTransaction, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*model.TipTransaction, error)
	GetByHash(db *gorm.DB, txHash string) (*model.TipTransaction, error)

	// List returns matching records ordered by created_at descending,
	// alongside the total match count before pagination.
	List(db *gorm.DB, filter ListFilter) ([]*model.TipTransaction, int64, error)

	Update(db *gorm.DB, transaction *model.TipTransaction) (*model.TipTransaction, error)

	ListConfirmedByCreator(db *gorm.DB, creatorID uuid.UUID) ([]*model.TipTransaction, error)
	ListPendingOlderThan(db *gorm.DB, cutoff time.Time) ([]*model.TipTransaction, error)
}
