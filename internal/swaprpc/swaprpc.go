package swaprpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/utils/config"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

type swapRPC struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func New(cfg *config.AppConfig, logger *logger.Logger) ISwapRPC {
	return &swapRPC{
		baseURL: cfg.Swap.APIURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (s *swapRPC) Quote(ctx context.Context, fromToken string, amountIn decimal.Decimal, toAsset string) (*Route, error) {
	req := struct {
		FromToken string          `json:"from_token"`
		ToAsset   string          `json:"to_asset"`
		AmountIn  decimal.Decimal `json:"amount_in"`
	}{FromToken: fromToken, ToAsset: toAsset, AmountIn: amountIn}

	// Quotes are read-only; a failed attempt is safe to retry.
	var route Route
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		lastErr = s.post(ctx, "/quote", req, &route)
		if lastErr == nil {
			return &route, nil
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	return nil, lastErr
}

func (s *swapRPC) Execute(ctx context.Context, route *Route) (*ExecuteResult, error) {
	if route == nil || route.ID == "" {
		return nil, errors.New("route is required")
	}

	req := struct {
		RouteID string `json:"route_id"`
	}{RouteID: route.ID}

	// Executing commits funds. One attempt only; the reconciliation
	// watcher picks up the pieces if the response is lost.
	var result ExecuteResult
	if err := s.post(ctx, "/execute", req, &result); err != nil {
		return nil, err
	}

	if !model.IsValidTxHash(result.TxHash) {
		return nil, errors.Errorf("swap service returned malformed tx hash %q", result.TxHash)
	}

	return &result, nil
}

func (s *swapRPC) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "swap service request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read swap service response")
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("[swaprpc] service returned error", map[string]string{
			"path":       path,
			"statusCode": fmt.Sprintf("%d", resp.StatusCode),
			"body":       string(raw),
		})
		return errors.Errorf("swap service %s: status %d: %s", path, resp.StatusCode, string(raw))
	}

	return errors.Wrap(json.Unmarshal(raw, out), "failed to decode swap service response")
}
