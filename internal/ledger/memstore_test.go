package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/store"
	"github.com/shieldtip/shieldtip-backend/internal/store/tiptransaction"
	"github.com/shieldtip/shieldtip-backend/internal/types/environments"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

// memStore is an in-memory tiptransaction.IStore. It mirrors the postgres
// store's behavior: generated ids, created_at stamping, unique tx hashes,
// rows returned as copies.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.TipTransaction

	createCalls int
	getCalls    int

	// failuresLeft makes the next N calls of any operation fail with failErr.
	failuresLeft int
	failErr      error
}

func newMemStore() *memStore {
	return &memStore{records: map[uuid.UUID]*model.TipTransaction{}}
}

func newTestLedger(ms *memStore) *Ledger {
	return &Ledger{
		store:      &store.Store{TipTransaction: ms},
		logger:     logger.New(environments.Test),
		retryDelay: 0,
	}
}

func (s *memStore) shouldFail() bool {
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return true
	}
	return false
}

func cloneTx(t *model.TipTransaction) *model.TipTransaction {
	clone := *t
	clone.Metadata = model.JSONB{}.Merge(t.Metadata)
	return &clone
}

func (s *memStore) Create(_ *gorm.DB, transaction *model.TipTransaction) (*model.TipTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createCalls++
	if s.shouldFail() {
		return nil, s.failErr
	}

	if transaction.TxHash != nil {
		for _, existing := range s.records {
			if existing.TxHash != nil && *existing.TxHash == *transaction.TxHash {
				return nil, gorm.ErrDuplicatedKey
			}
		}
	}

	stored := cloneTx(transaction)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.records[stored.ID] = stored

	return cloneTx(stored), nil
}

func (s *memStore) GetByID(_ *gorm.DB, id uuid.UUID) (*model.TipTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.shouldFail() {
		return nil, s.failErr
	}

	record, ok := s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneTx(record), nil
}

func (s *memStore) GetByHash(_ *gorm.DB, txHash string) (*model.TipTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.shouldFail() {
		return nil, s.failErr
	}

	for _, record := range s.records {
		if record.TxHash != nil && *record.TxHash == txHash {
			return cloneTx(record), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) List(_ *gorm.DB, filter tiptransaction.ListFilter) ([]*model.TipTransaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shouldFail() {
		return nil, 0, s.failErr
	}

	var matched []*model.TipTransaction
	for _, record := range s.records {
		if filter.CreatorID != nil && (record.CreatorID == nil || *record.CreatorID != *filter.CreatorID) {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.SourcePlatform != "" && record.SourcePlatform != filter.SourcePlatform {
			continue
		}
		if filter.StartTime != nil && record.CreatedAt.Before(*filter.StartTime) {
			continue
		}
		if filter.EndTime != nil && record.CreatedAt.After(*filter.EndTime) {
			continue
		}
		matched = append(matched, cloneTx(record))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func (s *memStore) Update(_ *gorm.DB, transaction *model.TipTransaction) (*model.TipTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shouldFail() {
		return nil, s.failErr
	}

	if _, ok := s.records[transaction.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}

	if transaction.TxHash != nil {
		for id, existing := range s.records {
			if id != transaction.ID && existing.TxHash != nil && *existing.TxHash == *transaction.TxHash {
				return nil, gorm.ErrDuplicatedKey
			}
		}
	}

	s.records[transaction.ID] = cloneTx(transaction)
	return cloneTx(transaction), nil
}

func (s *memStore) ListConfirmedByCreator(_ *gorm.DB, creatorID uuid.UUID) ([]*model.TipTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shouldFail() {
		return nil, s.failErr
	}

	var matched []*model.TipTransaction
	for _, record := range s.records {
		if record.Status != model.TransactionStatusConfirmed {
			continue
		}
		if record.CreatorID == nil || *record.CreatorID != creatorID {
			continue
		}
		matched = append(matched, cloneTx(record))
	}
	return matched, nil
}

func (s *memStore) ListPendingOlderThan(_ *gorm.DB, cutoff time.Time) ([]*model.TipTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shouldFail() {
		return nil, s.failErr
	}

	var matched []*model.TipTransaction
	for _, record := range s.records {
		if record.Status == model.TransactionStatusPending && record.CreatedAt.Before(cutoff) {
			matched = append(matched, cloneTx(record))
		}
	}
	return matched, nil
}
