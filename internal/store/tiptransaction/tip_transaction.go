package tiptransaction

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shieldtip/shieldtip-backend/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) Create(db *gorm.DB, transaction *model.TipTransaction) (*model.TipTransaction, error) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}
	if transaction.Metadata == nil {
		transaction.Metadata = model.JSONB{}
	}

	return transaction, db.Create(transaction).Error
}

func (s *store) GetByID(db *gorm.DB, id uuid.UUID) (*model.TipTransaction, error) {
	var transaction model.TipTransaction
	err := db.Where("id = ?", id).First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (s *store) GetByHash(db *gorm.DB, txHash string) (*model.TipTransaction, error) {
	var transaction model.TipTransaction
	err := db.Where("tx_hash = ?", txHash).First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (s *store) List(db *gorm.DB, filter ListFilter) ([]*model.TipTransaction, int64, error) {
	query := db.Model(&model.TipTransaction{})

	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SourcePlatform != "" {
		query = query.Where("source_platform = ?", filter.SourcePlatform)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var transactions []*model.TipTransaction
	err := query.Order("created_at DESC").Find(&transactions).Error
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (s *store) Update(db *gorm.DB, transaction *model.TipTransaction) (*model.TipTransaction, error) {
	return transaction, db.Save(transaction).Error
}

func (s *store) ListConfirmedByCreator(db *gorm.DB, creatorID uuid.UUID) ([]*model.TipTransaction, error) {
	var transactions []*model.TipTransaction
	err := db.
		Where("creator_id = ?", creatorID).
		Where("status = ?", model.TransactionStatusConfirmed).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *store) ListPendingOlderThan(db *gorm.DB, cutoff time.Time) ([]*model.TipTransaction, error) {
	var transactions []*model.TipTransaction
	err := db.
		Where("status = ?", model.TransactionStatusPending).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
