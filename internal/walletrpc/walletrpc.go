package walletrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/utils/config"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

type walletRPC struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func New(cfg *config.AppConfig, logger *logger.Logger) IWalletRPC {
	return &walletRPC{
		baseURL: cfg.Wallet.BridgeURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type connectRequest struct {
	Kind                  WalletKind `json:"kind"`
	ForceAccountSelection bool       `json:"force_account_selection"`
	// DisableRestore rides along with forced selection so a stale cached
	// session cannot win the race against the fresh account picker.
	DisableRestore bool `json:"disable_restore"`
}

func (w *walletRPC) Connect(ctx context.Context, kind WalletKind, forceAccountSelection bool) (*Session, error) {
	req := connectRequest{
		Kind:                  kind,
		ForceAccountSelection: forceAccountSelection,
		DisableRestore:        forceAccountSelection,
	}

	var session Session
	if err := w.post(ctx, "/connect", req, &session); err != nil {
		return nil, err
	}

	if !common.IsHexAddress(session.Address) {
		return nil, errors.Errorf("connector returned malformed account address %q", session.Address)
	}
	session.Address = common.HexToAddress(session.Address).Hex()

	return &session, nil
}

func (w *walletRPC) Disconnect(ctx context.Context) error {
	return w.post(ctx, "/disconnect", struct{}{}, nil)
}

func (w *walletRPC) Balance(ctx context.Context, token string) (decimal.Decimal, error) {
	var resp struct {
		Token   string          `json:"token"`
		Balance decimal.Decimal `json:"balance"`
	}
	if err := w.get(ctx, fmt.Sprintf("/balance?token=%s", token), &resp); err != nil {
		return decimal.Zero, err
	}

	return resp.Balance, nil
}

func (w *walletRPC) Approve(ctx context.Context, token string, amount decimal.Decimal) (string, error) {
	req := struct {
		Token  string          `json:"token"`
		Amount decimal.Decimal `json:"amount"`
	}{Token: token, Amount: amount}

	var resp struct {
		TxHash string `json:"tx_hash"`
	}
	if err := w.post(ctx, "/approve", req, &resp); err != nil {
		return "", err
	}

	// Normalize to an unprefixed 64-hex hash.
	hash := common.HexToHash(resp.TxHash)
	return hash.Hex()[2:], nil
}

func (w *walletRPC) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	return w.do(req, out)
}

func (w *walletRPC) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	return w.do(req, out)
}

func (w *walletRPC) do(req *http.Request, out any) error {
	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "wallet bridge request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read wallet bridge response")
	}

	if resp.StatusCode != http.StatusOK {
		w.logger.Error("[walletrpc] bridge returned error", map[string]string{
			"path":       req.URL.Path,
			"statusCode": fmt.Sprintf("%d", resp.StatusCode),
			"body":       string(raw),
		})
		return errors.Errorf("wallet bridge %s: status %d: %s", req.URL.Path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}

	return errors.Wrap(json.Unmarshal(raw, out), "failed to decode wallet bridge response")
}
