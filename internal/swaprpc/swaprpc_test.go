package swaprpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldtip/shieldtip-backend/internal/types/environments"
	"github.com/shieldtip/shieldtip-backend/internal/utils/config"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

func newService(baseURL string) ISwapRPC {
	cfg := &config.AppConfig{Swap: config.SwapConfig{APIURL: baseURL}}
	return New(cfg, logger.New(environments.Test))
}

func TestQuote(t *testing.T) {
	t.Run("returns the route", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/quote", r.URL.Path)

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ETH", req["from_token"])
			assert.Equal(t, "ZEC", req["to_asset"])

			w.Write([]byte(`{"id": "route-1", "from_token": "ETH", "to_asset": "ZEC", "amount_in": "1", "expected_out": "58.2"}`))
		}))
		defer server.Close()

		route, err := newService(server.URL).Quote(context.Background(), "ETH", decimal.NewFromInt(1), "ZEC")
		require.NoError(t, err)
		assert.Equal(t, "route-1", route.ID)
		assert.True(t, route.ExpectedOut.Equal(decimal.RequireFromString("58.2")))
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			if hits < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{"id": "route-1", "from_token": "ETH", "to_asset": "ZEC"}`))
		}))
		defer server.Close()

		route, err := newService(server.URL).Quote(context.Background(), "ETH", decimal.NewFromInt(1), "ZEC")
		require.NoError(t, err)
		assert.Equal(t, "route-1", route.ID)
		assert.Equal(t, 3, hits)
	})
}

func TestExecute(t *testing.T) {
	txHash := strings.Repeat("cd", 32)

	t.Run("returns the network hash", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			assert.Equal(t, "/execute", r.URL.Path)

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "route-1", req["route_id"])

			w.Write([]byte(`{"tx_hash": "` + txHash + `", "amount_out": "58.2"}`))
		}))
		defer server.Close()

		result, err := newService(server.URL).Execute(context.Background(), &Route{ID: "route-1"})
		require.NoError(t, err)
		assert.Equal(t, txHash, result.TxHash)
		assert.Equal(t, 1, hits)
	})

	t.Run("does not retry a failed execution", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := newService(server.URL).Execute(context.Background(), &Route{ID: "route-1"})
		require.Error(t, err)
		assert.Equal(t, 1, hits, "execution commits funds and must not be retried")
	})

	t.Run("rejects a malformed hash from the service", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"tx_hash": "0xshort"}`))
		}))
		defer server.Close()

		_, err := newService(server.URL).Execute(context.Background(), &Route{ID: "route-1"})
		assert.Error(t, err)
	})

	t.Run("requires a route", func(t *testing.T) {
		_, err := newService("http://127.0.0.1:0").Execute(context.Background(), nil)
		assert.Error(t, err)
	})
}
