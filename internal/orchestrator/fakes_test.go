package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/ledger"
	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/shieldedrpc"
	"github.com/shieldtip/shieldtip-backend/internal/store/tiptransaction"
	"github.com/shieldtip/shieldtip-backend/internal/swaprpc"
	"github.com/shieldtip/shieldtip-backend/internal/types/environments"
	"github.com/shieldtip/shieldtip-backend/internal/utils/config"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
	"github.com/shieldtip/shieldtip-backend/internal/walletrpc"
)

const testTxHash = "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"

type fakeWallet struct {
	connectCalls int
	connectErr   error
	session      *walletrpc.Session

	balance    decimal.Decimal
	balanceErr error

	approveHash string
	approveErr  error
}

func (f *fakeWallet) Connect(_ context.Context, kind walletrpc.WalletKind, _ bool) (*walletrpc.Session, error) {
	f.connectCalls++
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	if f.session == nil {
		f.session = &walletrpc.Session{Address: "0x1111111111111111111111111111111111111111", Kind: kind, ChainID: 1}
	}
	return f.session, nil
}

func (f *fakeWallet) Disconnect(_ context.Context) error { return nil }

func (f *fakeWallet) Balance(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.balance, f.balanceErr
}

func (f *fakeWallet) Approve(_ context.Context, _ string, _ decimal.Decimal) (string, error) {
	if f.approveErr != nil {
		return "", f.approveErr
	}
	return f.approveHash, nil
}

type fakeSwap struct {
	quoteErr   error
	executeErr error
	txHash     string
}

func (f *fakeSwap) Quote(_ context.Context, fromToken string, amountIn decimal.Decimal, toAsset string) (*swaprpc.Route, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return &swaprpc.Route{
		ID:          "route-1",
		FromToken:   fromToken,
		ToAsset:     toAsset,
		AmountIn:    amountIn,
		ExpectedOut: amountIn,
		ExpiresAt:   time.Now().Add(time.Minute),
	}, nil
}

func (f *fakeSwap) Execute(_ context.Context, route *swaprpc.Route) (*swaprpc.ExecuteResult, error) {
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	return &swaprpc.ExecuteResult{TxHash: f.txHash, AmountOut: route.ExpectedOut}, nil
}

type fakeShielded struct {
	submitErr  error
	deliveryID string

	mu       sync.Mutex
	statuses []*shieldedrpc.DeliveryStatus
	pollErr  error

	// hang makes polls block until their context expires, like an
	// endpoint that accepts the connection and never answers.
	hang bool
}

func (f *fakeShielded) Submit(_ context.Context, _, _, _ string) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.deliveryID, nil
}

// Confirmations pops the scripted statuses, repeating the last one once
// the script runs out.
func (f *fakeShielded) Confirmations(ctx context.Context, _ string) (*shieldedrpc.DeliveryStatus, error) {
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.pollErr != nil {
		return nil, f.pollErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return &shieldedrpc.DeliveryStatus{}, nil
	}
	status := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return status, nil
}

type fakeOracle struct {
	rate decimal.Decimal
	err  error
}

func (f *fakeOracle) GetAssetRate(_ context.Context, _, _ string) (decimal.Decimal, error) {
	return f.rate, f.err
}

func (f *fakeOracle) GetCachedAssetRate(ctx context.Context, token, currency string) (decimal.Decimal, error) {
	return f.GetAssetRate(ctx, token, currency)
}

type fakeLedger struct {
	mu       sync.Mutex
	records  map[uuid.UUID]*model.TipTransaction
	logCalls int
	logErr   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: map[uuid.UUID]*model.TipTransaction{}}
}

func (f *fakeLedger) LogTransaction(input ledger.LogTransactionInput) (*model.TipTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logCalls++
	if f.logErr != nil {
		return nil, f.logErr
	}

	metadata := input.Metadata
	if metadata == nil {
		metadata = model.JSONB{}
	}
	record := &model.TipTransaction{
		ID:               uuid.New(),
		CreatorID:        input.CreatorID,
		SenderAddress:    input.SenderAddress,
		RecipientAddress: input.RecipientAddress,
		AmountAsset:      input.AmountAsset,
		AmountReference:  input.AmountReference,
		TxHash:           input.TxHash,
		Status:           model.TransactionStatusPending,
		Memo:             input.Memo,
		SourcePlatform:   input.SourcePlatform,
		SourceURL:        input.SourceURL,
		CreatedAt:        time.Now(),
		Metadata:         metadata,
	}
	f.records[record.ID] = record
	return record, nil
}

func (f *fakeLedger) UpdateTransactionStatus(id uuid.UUID, update ledger.StatusUpdate) (*model.TipTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.records[id]
	if !ok {
		return nil, nil
	}

	if !record.Status.CanTransitionTo(update.Status) {
		return nil, &ledger.TransitionError{From: record.Status, To: update.Status}
	}
	if update.Confirmations != nil {
		record.Confirmations = *update.Confirmations
	}
	if update.TxHash != nil {
		record.TxHash = update.TxHash
	}
	if update.Status == model.TransactionStatusConfirmed && record.ConfirmedAt == nil {
		now := time.Now()
		record.ConfirmedAt = &now
	}
	record.Status = update.Status
	if len(update.Metadata) > 0 {
		record.Metadata = record.Metadata.Merge(update.Metadata)
	}

	return record, nil
}

func (f *fakeLedger) GetTransactions(_ tiptransaction.ListFilter) ([]*model.TipTransaction, int64, error) {
	return nil, 0, nil
}

func (f *fakeLedger) GetTransactionByID(id uuid.UUID) (*model.TipTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id], nil
}

func (f *fakeLedger) GetTransactionByHash(txHash string) (*model.TipTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.TxHash != nil && *record.TxHash == txHash {
			return record, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) GetCreatorStats(_ uuid.UUID) (*ledger.CreatorStats, error) {
	return &ledger.CreatorStats{}, nil
}

// only returns the single record in a one-record fake, for assertions
func (f *fakeLedger) onlyRecord() *model.TipTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		return record
	}
	return nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: environments.Test,
		Wallet: config.WalletConfig{
			ConnectTimeout: time.Second,
			ApproveTimeout: time.Second,
		},
		Swap: config.SwapConfig{
			TargetAsset:    "ZEC",
			QuoteTimeout:   time.Second,
			ExecuteTimeout: time.Second,
		},
		Shielded: config.ShieldedConfig{
			SubmitTimeout:  time.Second,
			ConfirmTimeout: 100 * time.Millisecond,
			PollInterval:   5 * time.Millisecond,
			RequiredDepth:  2,
		},
		Oracle: config.OracleConfig{
			ReferenceCurrency: "USD",
			SettlementToken:   "ZEC",
			CacheTTL:          time.Minute,
		},
	}
}

type testRig struct {
	wallet   *fakeWallet
	swap     *fakeSwap
	shielded *fakeShielded
	oracle   *fakeOracle
	ledger   *fakeLedger
	cfg      *config.AppConfig
	orch     *Orchestrator
}

func newTestRig() *testRig {
	rig := &testRig{
		wallet: &fakeWallet{
			balance:     decimal.NewFromInt(100),
			approveHash: "deadbeef" + testTxHash[8:],
		},
		swap:     &fakeSwap{txHash: testTxHash},
		shielded: &fakeShielded{deliveryID: "delivery-1", statuses: []*shieldedrpc.DeliveryStatus{{Confirmations: 2}}},
		oracle:   &fakeOracle{rate: decimal.NewFromInt(50)},
		ledger:   newFakeLedger(),
		cfg:      testConfig(),
	}
	rig.orch = New(rig.wallet, rig.swap, rig.shielded, rig.oracle, rig.ledger, rig.cfg, logger.New(environments.Test)).(*Orchestrator)
	return rig
}

func (r *testRig) connect(ctx context.Context) error {
	_, err := r.orch.Connect(ctx, walletrpc.KindInjected, false)
	return err
}

var errProvider = errors.New("provider rejected the request")
