package ledger

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/shieldtip/shieldtip-backend/internal/consts"
	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/store"
	"github.com/shieldtip/shieldtip-backend/internal/store/tiptransaction"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

const maxRetries = 3

type Ledger struct {
	db     *gorm.DB
	store  *store.Store
	logger *logger.Logger

	// retryDelay spaces store retries; tests shrink it to zero.
	retryDelay time.Duration
}

func New(db *gorm.DB, store *store.Store, logger *logger.Logger) ILedger {
	return &Ledger{
		db:         db,
		store:      store,
		logger:     logger,
		retryDelay: 200 * time.Millisecond,
	}
}

func (l *Ledger) LogTransaction(input LogTransactionInput) (*model.TipTransaction, error) {
	if err := validateLogInput(input); err != nil {
		return nil, err
	}

	// At-most-one record per network transaction: a known hash resolves to
	// the existing row.
	if input.TxHash != nil {
		existing, err := l.GetTransactionByHash(*input.TxHash)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	metadata := input.Metadata
	if metadata == nil {
		metadata = model.JSONB{}
	}

	record := &model.TipTransaction{
		CreatorID:        input.CreatorID,
		SenderAddress:    input.SenderAddress,
		RecipientAddress: input.RecipientAddress,
		AmountAsset:      input.AmountAsset,
		AmountReference:  input.AmountReference,
		TxHash:           input.TxHash,
		Status:           model.TransactionStatusPending,
		Confirmations:    0,
		Memo:             input.Memo,
		SourcePlatform:   input.SourcePlatform,
		SourceURL:        input.SourceURL,
		Metadata:         metadata,
	}

	var created *model.TipTransaction
	err := l.withRetry("log transaction", func() error {
		var createErr error
		created, createErr = l.store.TipTransaction.Create(l.db, record)
		return createErr
	})
	if err != nil {
		// Two writers raced on the same hash: the unique constraint broke
		// the tie, and the loser observes the winner's row.
		if errors.Is(err, gorm.ErrDuplicatedKey) && input.TxHash != nil {
			return l.GetTransactionByHash(*input.TxHash)
		}
		return nil, err
	}

	l.logger.Info("tip transaction recorded", map[string]string{
		"id":        created.ID.String(),
		"recipient": created.RecipientAddress,
		"amount":    model.FormatAssetAmount(created.AmountAsset),
	})

	return created, nil
}

func (l *Ledger) UpdateTransactionStatus(id uuid.UUID, update StatusUpdate) (*model.TipTransaction, error) {
	if !update.Status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "unknown status " + string(update.Status)}
	}
	if update.TxHash != nil && !model.IsValidTxHash(*update.TxHash) {
		return nil, &ValidationError{Field: "tx_hash", Reason: "must be exactly 64 hex characters"}
	}
	if update.Confirmations != nil && *update.Confirmations < 0 {
		return nil, &ValidationError{Field: "confirmations", Reason: "must not be negative"}
	}

	// Read, validate against current state, and write under one transaction
	// so concurrent updaters cannot interleave between read and write.
	var updated *model.TipTransaction
	err := l.withRetry("update transaction status", func() error {
		return l.inTx(func(tx *gorm.DB) error {
			record, err := l.store.TipTransaction.GetByID(tx, id)
			if err != nil {
				return err
			}
			if err := applyStatusUpdate(record, update); err != nil {
				return err
			}

			updated, err = l.store.TipTransaction.Update(tx, record)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ValidationError{Field: "tx_hash", Reason: "already recorded for another transaction"}
		}
		return nil, err
	}

	return updated, nil
}

// applyStatusUpdate mutates record in place per the update, enforcing the
// forward-only transition rules.
func applyStatusUpdate(record *model.TipTransaction, update StatusUpdate) error {
	if !record.Status.CanTransitionTo(update.Status) {
		return &TransitionError{From: record.Status, To: update.Status}
	}

	if update.Confirmations != nil {
		if *update.Confirmations < record.Confirmations && update.Status != model.TransactionStatusFailed {
			return &ValidationError{Field: "confirmations", Reason: "must not decrease"}
		}
		record.Confirmations = *update.Confirmations
	}

	if update.TxHash != nil {
		if record.TxHash != nil && *record.TxHash != *update.TxHash {
			return &ValidationError{Field: "tx_hash", Reason: "already recorded for this transaction"}
		}
		record.TxHash = update.TxHash
	}

	if update.Status == model.TransactionStatusConfirmed && record.ConfirmedAt == nil {
		confirmedAt := time.Now()
		if update.ConfirmedAt != nil {
			confirmedAt = *update.ConfirmedAt
		}
		record.ConfirmedAt = &confirmedAt
	}
	record.Status = update.Status

	if len(update.Metadata) > 0 {
		record.Metadata = record.Metadata.Merge(update.Metadata)
	}

	return nil
}

func (l *Ledger) GetTransactions(filter tiptransaction.ListFilter) ([]*model.TipTransaction, int64, error) {
	var (
		transactions []*model.TipTransaction
		total        int64
	)
	err := l.withRetry("list transactions", func() error {
		var listErr error
		transactions, total, listErr = l.store.TipTransaction.List(l.db, filter)
		return listErr
	})
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (l *Ledger) GetTransactionByID(id uuid.UUID) (*model.TipTransaction, error) {
	var record *model.TipTransaction
	err := l.withRetry("get transaction by id", func() error {
		var getErr error
		record, getErr = l.store.TipTransaction.GetByID(l.db, id)
		return getErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return record, nil
}

func (l *Ledger) GetTransactionByHash(txHash string) (*model.TipTransaction, error) {
	// A malformed hash can never match; skip the store round trip.
	if !model.IsValidTxHash(txHash) {
		return nil, nil
	}

	var record *model.TipTransaction
	err := l.withRetry("get transaction by hash", func() error {
		var getErr error
		record, getErr = l.store.TipTransaction.GetByHash(l.db, txHash)
		return getErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return record, nil
}

func validateLogInput(input LogTransactionInput) error {
	if input.RecipientAddress == "" {
		return &ValidationError{Field: "recipient_address", Reason: "must not be empty"}
	}
	if !input.AmountAsset.IsPositive() {
		return &ValidationError{Field: "amount_asset", Reason: "must be greater than zero"}
	}
	if input.SourcePlatform == "" {
		return &ValidationError{Field: "source_platform", Reason: "must be set"}
	}
	if input.TxHash != nil && !model.IsValidTxHash(*input.TxHash) {
		return &ValidationError{Field: "tx_hash", Reason: "must be exactly 64 hex characters"}
	}
	if input.Memo != nil && len(*input.Memo) > consts.MEMO_MAX_BYTES {
		return &ValidationError{Field: "memo", Reason: "exceeds maximum size"}
	}
	if input.AmountReference != nil && input.AmountReference.IsNegative() {
		return &ValidationError{Field: "amount_reference", Reason: "must not be negative"}
	}

	return nil
}

// inTx runs fn inside a database transaction. Without a backing db handle
// there is nothing to begin, so fn runs directly against the store.
func (l *Ledger) inTx(fn func(tx *gorm.DB) error) error {
	if l.db == nil {
		return fn(nil)
	}
	return store.DoInTx(l.db, fn)
}

// withRetry re-runs fn on transient store failures and wraps the final
// error once the budget is exhausted. Not-found and duplicate-key results
// are decisions, not outages, and pass straight through.
func (l *Ledger) withRetry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) {
			return err
		}

		l.logger.Error("ledger store call failed, retrying", map[string]string{
			"op":      op,
			"attempt": strconv.Itoa(attempt),
			"error":   err.Error(),
		})
		time.Sleep(time.Duration(attempt) * l.retryDelay)
	}

	return &BackendError{Op: op, Err: err}
}

func isRetryable(err error) bool {
	var validationErr *ValidationError
	var transitionErr *TransitionError
	if errors.As(err, &validationErr) || errors.As(err, &transitionErr) {
		return false
	}
	return !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey)
}
