package shieldedrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/utils/config"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

type shieldedRPC struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func New(cfg *config.AppConfig, logger *logger.Logger) IShieldedRPC {
	return &shieldedRPC{
		baseURL: cfg.Shielded.APIURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (s *shieldedRPC) Submit(ctx context.Context, txHash, recipientAddress, memo string) (string, error) {
	if !model.IsValidTxHash(txHash) {
		return "", errors.Errorf("malformed tx hash %q", txHash)
	}
	if !model.IsShieldedAddress(recipientAddress) {
		return "", errors.Errorf("recipient %q is not a shielded address", recipientAddress)
	}

	req := struct {
		TxHash    string `json:"tx_hash"`
		Recipient string `json:"recipient"`
		Memo      string `json:"memo,omitempty"`
	}{TxHash: txHash, Recipient: recipientAddress, Memo: memo}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/deliveries", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp struct {
		DeliveryID string `json:"delivery_id"`
	}
	if err := s.do(httpReq, &resp); err != nil {
		return "", err
	}
	if resp.DeliveryID == "" {
		return "", errors.New("delivery network returned empty delivery id")
	}

	return resp.DeliveryID, nil
}

func (s *shieldedRPC) Confirmations(ctx context.Context, deliveryID string) (*DeliveryStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/deliveries/%s", s.baseURL, deliveryID), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	var status DeliveryStatus
	if err := s.do(req, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

func (s *shieldedRPC) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "delivery network request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read delivery network response")
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("[shieldedrpc] delivery network returned error", map[string]string{
			"path":       req.URL.Path,
			"statusCode": fmt.Sprintf("%d", resp.StatusCode),
			"body":       string(raw),
		})
		return errors.Errorf("delivery network %s: status %d: %s", req.URL.Path, resp.StatusCode, string(raw))
	}

	return errors.Wrap(json.Unmarshal(raw, out), "failed to decode delivery network response")
}
