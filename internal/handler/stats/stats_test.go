package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldtip/shieldtip-backend/internal/ledger"
	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/store/tiptransaction"
	"github.com/shieldtip/shieldtip-backend/internal/types/environments"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

type scriptedLedger struct {
	stats *ledger.CreatorStats
	err   error
}

func (s *scriptedLedger) LogTransaction(_ ledger.LogTransactionInput) (*model.TipTransaction, error) {
	return nil, nil
}

func (s *scriptedLedger) UpdateTransactionStatus(_ uuid.UUID, _ ledger.StatusUpdate) (*model.TipTransaction, error) {
	return nil, nil
}

func (s *scriptedLedger) GetTransactions(_ tiptransaction.ListFilter) ([]*model.TipTransaction, int64, error) {
	return nil, 0, nil
}

func (s *scriptedLedger) GetTransactionByID(_ uuid.UUID) (*model.TipTransaction, error) {
	return nil, nil
}

func (s *scriptedLedger) GetTransactionByHash(_ string) (*model.TipTransaction, error) {
	return nil, nil
}

func (s *scriptedLedger) GetCreatorStats(_ uuid.UUID) (*ledger.CreatorStats, error) {
	return s.stats, s.err
}

func setupRouter(svc ledger.ILedger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(svc, logger.New(environments.Test))

	router := gin.New()
	router.GET("/api/v1/creators/:id/stats", h.GetCreatorStats)
	return router
}

func TestGetCreatorStats(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		router := setupRouter(&scriptedLedger{stats: &ledger.CreatorStats{
			TotalTips:        3,
			TotalAssetVolume: decimal.RequireFromString("1.85"),
			LargestTipAsset:  decimal.RequireFromString("1.5"),
		}})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/creators/"+uuid.NewString()+"/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data ledger.CreatorStats `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.Data.TotalTips)
		assert.True(t, resp.Data.TotalAssetVolume.Equal(decimal.RequireFromString("1.85")))
	})

	t.Run("malformed creator id maps to 400", func(t *testing.T) {
		router := setupRouter(&scriptedLedger{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/creators/not-a-uuid/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("backend outage maps to 503", func(t *testing.T) {
		router := setupRouter(&scriptedLedger{err: &ledger.BackendError{Op: "creator stats scan", Err: assert.AnError}})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/creators/"+uuid.NewString()+"/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
