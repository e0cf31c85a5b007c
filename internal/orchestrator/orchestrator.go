package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/consts"
	"github.com/shieldtip/shieldtip-backend/internal/ledger"
	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/oracle"
	"github.com/shieldtip/shieldtip-backend/internal/shieldedrpc"
	"github.com/shieldtip/shieldtip-backend/internal/swaprpc"
	"github.com/shieldtip/shieldtip-backend/internal/utils/config"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
	"github.com/shieldtip/shieldtip-backend/internal/walletrpc"
)

// Attempt is the ephemeral, session-local record of one tip in flight. It
// is never persisted; only its terminal outcome reaches the ledger.
type Attempt struct {
	AmountReference  decimal.Decimal
	AmountAsset      decimal.Decimal
	Token            string
	RecipientAddress string
	Context          string
	RecordID         uuid.UUID
	StartedAt        time.Time
}

type IOrchestrator interface {
	Connect(ctx context.Context, kind walletrpc.WalletKind, forceAccountSelection bool) (*walletrpc.Session, error)
	Disconnect(ctx context.Context) error
	RestoreSession(ctx context.Context) (*walletrpc.Session, error)
	Tip(ctx context.Context, amountReference decimal.Decimal, recipientAddress, tipContext string) (*model.TipTransaction, error)
	SelectToken(token string) error
	ClearError()
	ResetTransaction() error

	Status() State
	StatusMessage() string
	LastError() error
}

// Orchestrator drives one tip attempt at a time through wallet approval,
// swap, shielded routing, and confirmation. It is a cooperative state
// machine: the suspension points are the bounded external calls.
type Orchestrator struct {
	mu sync.Mutex
	sm *StateMachine

	wallet    walletrpc.IWalletRPC
	swap      swaprpc.ISwapRPC
	shielded  shieldedrpc.IShieldedRPC
	oracle    oracle.IOracle
	ledger    ledger.ILedger
	logger    *logger.Logger
	appConfig *config.AppConfig

	session        *walletrpc.Session
	restoreBlocked bool
	token          string
	inFlight       bool
	attempt        *Attempt
	lastErr        error
}

func New(
	wallet walletrpc.IWalletRPC,
	swap swaprpc.ISwapRPC,
	shielded shieldedrpc.IShieldedRPC,
	oracle oracle.IOracle,
	ledger ledger.ILedger,
	appConfig *config.AppConfig,
	logger *logger.Logger,
) IOrchestrator {
	return &Orchestrator{
		sm:        NewStateMachine(),
		wallet:    wallet,
		swap:      swap,
		shielded:  shielded,
		oracle:    oracle,
		ledger:    ledger,
		logger:    logger,
		appConfig: appConfig,
		token:     appConfig.Oracle.SettlementToken,
	}
}

func (o *Orchestrator) Connect(ctx context.Context, kind walletrpc.WalletKind, forceAccountSelection bool) (*walletrpc.Session, error) {
	o.mu.Lock()
	if o.inFlight {
		defer o.mu.Unlock()
		return nil, &InProgressError{State: o.sm.Current()}
	}
	if o.sm.Current() == StateFailed {
		defer o.mu.Unlock()
		return nil, ErrResetRequired
	}
	if forceAccountSelection {
		// Keep automatic restoration off until this call resolves so the
		// old session cannot sneak back in ahead of the account picker.
		o.restoreBlocked = true
	}
	o.sm.TransitionTo(StateConnecting)
	o.mu.Unlock()

	connectCtx, cancel := context.WithTimeout(ctx, o.appConfig.Wallet.ConnectTimeout)
	defer cancel()

	session, err := o.wallet.Connect(connectCtx, kind, forceAccountSelection)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.lastErr = o.classify(StateConnecting, &WalletError{Op: "connect", Err: err}, err)
		o.sm.TransitionTo(StateFailed)
		o.logger.Error("wallet connect failed", map[string]string{"error": err.Error()})
		return nil, o.lastErr
	}

	o.session = session
	o.restoreBlocked = false
	o.sm.TransitionTo(StateConnected)
	o.logger.Info("wallet connected", map[string]string{
		"address": session.Address,
		"kind":    string(session.Kind),
	})

	return session, nil
}

func (o *Orchestrator) Disconnect(ctx context.Context) error {
	o.mu.Lock()
	if o.inFlight {
		defer o.mu.Unlock()
		return &InProgressError{State: o.sm.Current()}
	}
	o.session = nil
	// Block restoration so an immediately following forced reconnect
	// cannot race a stale cached session.
	o.restoreBlocked = true
	if o.sm.Current() == StateConnected {
		o.sm.TransitionTo(StateIdle)
	}
	o.mu.Unlock()

	return o.wallet.Disconnect(ctx)
}

// RestoreSession reattaches a cached wallet session, unless restoration is
// blocked by a recent disconnect or an in-progress forced reconnect.
func (o *Orchestrator) RestoreSession(ctx context.Context) (*walletrpc.Session, error) {
	o.mu.Lock()
	if o.restoreBlocked || o.session != nil || o.inFlight {
		defer o.mu.Unlock()
		return o.session, nil
	}
	o.mu.Unlock()

	return o.Connect(ctx, walletrpc.KindInjected, false)
}

func (o *Orchestrator) SelectToken(token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return errors.New("token selection requires a connected wallet")
	}
	if o.inFlight {
		return &InProgressError{State: o.sm.Current()}
	}
	if token == "" {
		return errors.New("token must not be empty")
	}

	o.token = token
	return nil
}

func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = nil
}

func (o *Orchestrator) ResetTransaction() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.sm.Current() {
	case StateCompleted, StateFailed:
	default:
		return &InProgressError{State: o.sm.Current()}
	}

	if err := o.sm.TransitionTo(StateIdle); err != nil {
		return err
	}
	o.attempt = nil
	o.lastErr = nil
	o.inFlight = false

	return nil
}

func (o *Orchestrator) Status() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sm.Current()
}

func (o *Orchestrator) StatusMessage() string {
	return o.Status().Message()
}

func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Tip drives one attempt end to end. Callers may cancel via ctx up to the
// swap step; once funds are committed to the swap the attempt runs to a
// terminal state on a detached context.
func (o *Orchestrator) Tip(ctx context.Context, amountReference decimal.Decimal, recipientAddress, tipContext string) (*model.TipTransaction, error) {
	o.mu.Lock()
	if o.inFlight {
		defer o.mu.Unlock()
		return nil, &InProgressError{State: o.sm.Current()}
	}
	if o.sm.Current() == StateFailed {
		defer o.mu.Unlock()
		return nil, ErrResetRequired
	}
	if !o.sm.CanStartAttempt() {
		defer o.mu.Unlock()
		return nil, &InProgressError{State: o.sm.Current()}
	}

	if !amountReference.IsPositive() {
		defer o.mu.Unlock()
		return nil, errors.New("tip amount must be greater than zero")
	}
	if recipientAddress == "" {
		defer o.mu.Unlock()
		return nil, errors.New("recipient address must not be empty")
	}

	// No session: hand control back so the caller can finish connecting,
	// then call Tip again.
	if o.session == nil {
		o.sm.TransitionTo(StateConnecting)
		defer o.mu.Unlock()
		return nil, ErrConnectionRequired
	}

	o.inFlight = true
	o.attempt = &Attempt{
		AmountReference:  amountReference,
		Token:            o.token,
		RecipientAddress: recipientAddress,
		Context:          tipContext,
		StartedAt:        time.Now(),
	}
	o.mu.Unlock()

	record, err := o.runAttempt(ctx)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (o *Orchestrator) runAttempt(ctx context.Context) (*model.TipTransaction, error) {
	attempt := o.attempt
	cfg := o.appConfig

	// Conversion happens before anything external touches funds; a
	// missing rate is terminal, never silently defaulted.
	rate, err := o.oracle.GetCachedAssetRate(ctx, attempt.Token, cfg.Oracle.ReferenceCurrency)
	if err != nil {
		return nil, o.fail(&ConversionError{Token: attempt.Token, Currency: cfg.Oracle.ReferenceCurrency, Err: err})
	}

	amountAsset := attempt.AmountReference.DivRound(rate, consts.ASSET_DECIMALS)
	if !amountAsset.IsPositive() {
		return nil, o.fail(&ConversionError{
			Token:    attempt.Token,
			Currency: cfg.Oracle.ReferenceCurrency,
			Err:      errors.New("converted amount rounds to zero"),
		})
	}
	attempt.AmountAsset = amountAsset

	balance, err := o.wallet.Balance(ctx, attempt.Token)
	if err != nil {
		return nil, o.fail(o.classify(o.Status(), &WalletError{Op: "balance", Err: err}, err))
	}
	if balance.LessThan(amountAsset) {
		return nil, o.fail(&InsufficientFundsError{
			Token:     attempt.Token,
			Required:  amountAsset,
			Available: balance,
		})
	}

	// The attempt is now real: record it before funds start moving.
	senderAddress := o.session.Address
	sourceURL := attempt.Context
	record, err := o.ledger.LogTransaction(ledger.LogTransactionInput{
		SenderAddress:    &senderAddress,
		RecipientAddress: attempt.RecipientAddress,
		AmountAsset:      amountAsset,
		AmountReference:  &attempt.AmountReference,
		SourcePlatform:   model.SourcePlatformWeb,
		SourceURL:        &sourceURL,
		Metadata: model.JSONB{
			"settlement_token": attempt.Token,
		},
	})
	if err != nil {
		return nil, o.fail(err)
	}
	attempt.RecordID = record.ID

	// Approving.
	o.transition(StateApproving)
	approveCtx, cancelApprove := context.WithTimeout(ctx, cfg.Wallet.ApproveTimeout)
	approvalHash, err := o.wallet.Approve(approveCtx, attempt.Token, amountAsset)
	cancelApprove()
	if err != nil {
		return nil, o.failAttempt(StateApproving, &WalletError{Op: "approve", Err: err}, err)
	}

	// Funds commit from here on: detach from the caller so cancellation
	// cannot strand an in-flight on-chain swap.
	detached := context.WithoutCancel(ctx)

	// Swapping.
	o.transition(StateSwapping)
	quoteCtx, cancelQuote := context.WithTimeout(detached, cfg.Swap.QuoteTimeout)
	route, err := o.swap.Quote(quoteCtx, attempt.Token, amountAsset, cfg.Swap.TargetAsset)
	cancelQuote()
	if err != nil {
		return nil, o.failAttempt(StateSwapping, &SwapError{Op: "quote", Err: err}, err)
	}

	execCtx, cancelExec := context.WithTimeout(detached, cfg.Swap.ExecuteTimeout)
	result, err := o.swap.Execute(execCtx, route)
	cancelExec()
	if err != nil {
		return nil, o.failAttempt(StateSwapping, &SwapError{Op: "execute", Err: err}, err)
	}

	txHash := result.TxHash
	if _, err := o.ledger.UpdateTransactionStatus(attempt.RecordID, ledger.StatusUpdate{
		Status: model.TransactionStatusPending,
		TxHash: &txHash,
		Metadata: model.JSONB{
			"approval_tx_hash": approvalHash,
			"route_id":         route.ID,
		},
	}); err != nil {
		o.logger.Error("failed to record swap result", map[string]string{
			"id":    attempt.RecordID.String(),
			"error": err.Error(),
		})
	}

	// Routing.
	o.transition(StateRouting)
	submitCtx, cancelSubmit := context.WithTimeout(detached, cfg.Shielded.SubmitTimeout)
	deliveryID, err := o.shielded.Submit(submitCtx, txHash, attempt.RecipientAddress, "")
	cancelSubmit()
	if err != nil {
		return nil, o.failAttempt(StateRouting, &DeliveryError{Op: "submit", Err: err}, err)
	}

	if _, err := o.ledger.UpdateTransactionStatus(attempt.RecordID, ledger.StatusUpdate{
		Status:   model.TransactionStatusPending,
		Metadata: model.JSONB{"delivery_id": deliveryID},
	}); err != nil {
		o.logger.Error("failed to record delivery id", map[string]string{
			"id":    attempt.RecordID.String(),
			"error": err.Error(),
		})
	}

	// Confirming.
	o.transition(StateConfirming)
	depth, err := o.awaitConfirmation(detached, deliveryID)
	if err != nil {
		return nil, o.failAttempt(StateConfirming, err, err)
	}

	updated, err := o.ledger.UpdateTransactionStatus(attempt.RecordID, ledger.StatusUpdate{
		Status:        model.TransactionStatusConfirmed,
		Confirmations: &depth,
	})
	if err != nil {
		return nil, o.fail(err)
	}

	o.mu.Lock()
	o.sm.TransitionTo(StateCompleted)
	o.inFlight = false
	o.mu.Unlock()

	o.logger.Info("tip completed", map[string]string{
		"id":      attempt.RecordID.String(),
		"tx_hash": txHash,
		"amount":  model.FormatAssetAmount(amountAsset),
	})

	return updated, nil
}

// awaitConfirmation polls delivery depth until the configured requirement
// or the confirmation deadline. Every poll is bounded by the remaining
// budget so a hung delivery endpoint cannot outlive the deadline.
func (o *Orchestrator) awaitConfirmation(ctx context.Context, deliveryID string) (int, error) {
	cfg := o.appConfig.Shielded

	deadlineAt := time.Now().Add(cfg.ConfirmTimeout)
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		remaining := time.Until(deadlineAt)
		if remaining <= 0 {
			return 0, &TimeoutError{Step: StateConfirming, Err: context.DeadlineExceeded}
		}

		pollCtx, cancel := context.WithTimeout(ctx, remaining)
		status, err := o.shielded.Confirmations(pollCtx, deliveryID)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return 0, &TimeoutError{Step: StateConfirming, Err: context.DeadlineExceeded}
			}
			return 0, &DeliveryError{Op: "confirmations", Err: err}
		}
		if status.Failed {
			return 0, &DeliveryError{Op: "confirmations", Err: errors.New(status.Reason)}
		}
		if status.Confirmations >= cfg.RequiredDepth {
			return status.Confirmations, nil
		}

		select {
		case <-time.After(time.Until(deadlineAt)):
			return 0, &TimeoutError{Step: StateConfirming, Err: context.DeadlineExceeded}
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) transition(next State) {
	o.mu.Lock()
	if err := o.sm.TransitionTo(next); err != nil {
		o.logger.Error("state transition rejected", map[string]string{"error": err.Error()})
	}
	o.mu.Unlock()
}

// fail records a terminal error without touching the ledger. Used before a
// ledger record exists.
func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.lastErr = err
	if terr := o.sm.TransitionTo(StateFailed); terr != nil {
		o.logger.Error("state transition rejected", map[string]string{"error": terr.Error()})
	}
	o.inFlight = false
	o.mu.Unlock()

	o.logger.Error("tip attempt failed", map[string]string{"error": err.Error()})
	return err
}

// failAttempt records a terminal error for an attempt that already has a
// ledger record. Timeouts leave the record pending for the reconciliation
// watcher; provider-reported failures mark it failed.
func (o *Orchestrator) failAttempt(step State, stepErr error, cause error) error {
	classified := o.classify(step, stepErr, cause)

	var timeoutErr *TimeoutError
	if !errors.As(classified, &timeoutErr) {
		if _, err := o.ledger.UpdateTransactionStatus(o.attempt.RecordID, ledger.StatusUpdate{
			Status: model.TransactionStatusFailed,
			Metadata: model.JSONB{
				"failure_step":   string(step),
				"failure_reason": classified.Error(),
			},
		}); err != nil {
			o.logger.Error("failed to mark ledger record failed", map[string]string{
				"id":    o.attempt.RecordID.String(),
				"error": err.Error(),
			})
		}
	}

	return o.fail(classified)
}

// classify distinguishes deadline expiry from provider-reported failure.
func (o *Orchestrator) classify(step State, stepErr error, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return &TimeoutError{Step: step, Err: cause}
	}
	return stepErr
}
