package watcher

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shieldtip/shieldtip-backend/internal/ledger"
	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/shieldedrpc"
	"github.com/shieldtip/shieldtip-backend/internal/store"
	"github.com/shieldtip/shieldtip-backend/internal/utils/config"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

// Watcher resolves transactions left pending by clients that died mid
// attempt. It goes through the ledger, not the store, so the same
// transition rules apply to reconciled updates.
type Watcher struct {
	db        *gorm.DB
	store     *store.Store
	ledger    ledger.ILedger
	shielded  shieldedrpc.IShieldedRPC
	appConfig *config.AppConfig
	logger    *logger.Logger
}

func New(db *gorm.DB, store *store.Store, ledger ledger.ILedger, shielded shieldedrpc.IShieldedRPC, appConfig *config.AppConfig, logger *logger.Logger) *Watcher {
	return &Watcher{
		db:        db,
		store:     store,
		ledger:    ledger,
		shielded:  shielded,
		appConfig: appConfig,
		logger:    logger,
	}
}

// ReconcilePendingTransactions walks records that have sat in pending past
// the grace period. Records with a known delivery are confirmed or failed
// from the delivery network's answer; records that never reached delivery
// are failed once the abandonment window passes.
func (w *Watcher) ReconcilePendingTransactions(ctx context.Context) error {
	w.logger.Info("[ReconcilePendingTransactions] start reconciling pending tips...")

	cutoff := time.Now().Add(-w.appConfig.Reconcile.PendingGrace)
	pending, err := w.store.TipTransaction.ListPendingOlderThan(w.db, cutoff)
	if err != nil {
		w.logger.Error("[ReconcilePendingTransactions][ListPendingOlderThan]", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	for _, record := range pending {
		if err := w.reconcile(ctx, record); err != nil {
			w.logger.Error("[ReconcilePendingTransactions][reconcile]", map[string]string{
				"id":    record.ID.String(),
				"error": err.Error(),
			})
		}
	}

	return nil
}

func (w *Watcher) reconcile(ctx context.Context, record *model.TipTransaction) error {
	deliveryID, _ := record.Metadata["delivery_id"].(string)

	if deliveryID == "" {
		// The attempt never reached the delivery network. Give it the
		// abandonment window, then close it out.
		if time.Since(record.CreatedAt) < w.appConfig.Reconcile.AbandonAfter {
			return nil
		}

		_, err := w.ledger.UpdateTransactionStatus(record.ID, ledger.StatusUpdate{
			Status: model.TransactionStatusFailed,
			Metadata: model.JSONB{
				"failure_reason": "abandoned before delivery",
				"reconciled_at":  time.Now().Format(time.RFC3339),
			},
		})
		if err == nil {
			w.logger.Info("abandoned pending tip marked failed", map[string]string{
				"id": record.ID.String(),
			})
		}
		return err
	}

	status, err := w.shielded.Confirmations(ctx, deliveryID)
	if err != nil {
		return err
	}

	switch {
	case status.Failed:
		_, err = w.ledger.UpdateTransactionStatus(record.ID, ledger.StatusUpdate{
			Status: model.TransactionStatusFailed,
			Metadata: model.JSONB{
				"failure_reason": status.Reason,
				"reconciled_at":  time.Now().Format(time.RFC3339),
			},
		})
		return err

	case status.Confirmations >= w.appConfig.Shielded.RequiredDepth:
		confirmations := status.Confirmations
		_, err = w.ledger.UpdateTransactionStatus(record.ID, ledger.StatusUpdate{
			Status:        model.TransactionStatusConfirmed,
			Confirmations: &confirmations,
			Metadata: model.JSONB{
				"reconciled_at": time.Now().Format(time.RFC3339),
			},
		})
		if err == nil {
			w.logger.Info("pending tip reconciled to confirmed", map[string]string{
				"id": record.ID.String(),
			})
		}
		return err

	case status.Confirmations > record.Confirmations:
		// Still maturing. Keep the depth current and come back next run.
		confirmations := status.Confirmations
		_, err = w.ledger.UpdateTransactionStatus(record.ID, ledger.StatusUpdate{
			Status:        model.TransactionStatusPending,
			Confirmations: &confirmations,
		})
		return err
	}

	return nil
}
