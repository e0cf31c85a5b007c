package stats

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shieldtip/shieldtip-backend/internal/ledger"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
	"github.com/shieldtip/shieldtip-backend/internal/view"
)

type handler struct {
	ledger ledger.ILedger
	logger *logger.Logger
}

func New(ledger ledger.ILedger, logger *logger.Logger) IHandler {
	return &handler{
		ledger: ledger,
		logger: logger,
	}
}

// GetCreatorStats godoc
// @Summary Creator tip statistics
// @Description Aggregates over confirmed tips only; a creator with no confirmed tips gets all-zero fields
// @id getCreatorStats
// @Tags Stats
// @Produce json
// @Param id path string true "Creator id"
// @Success 200 {object} view.Response[ledger.CreatorStats]
// @Failure 400 {object} view.ErrorResponse
// @Failure 503 {object} view.ErrorResponse
// @Router /creators/{id}/stats [get]
func (h *handler) GetCreatorStats(c *gin.Context) {
	creatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "invalid creator id"))
		return
	}

	creatorStats, err := h.ledger.GetCreatorStats(creatorID)
	if err != nil {
		h.logger.Error("[GetCreatorStats]", map[string]string{"error": err.Error()})

		var backendErr *ledger.BackendError
		if errors.As(err, &backendErr) {
			c.JSON(http.StatusServiceUnavailable, view.CreateResponse[any](nil, err, nil, "ledger temporarily unavailable"))
			return
		}
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "internal error"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(creatorStats, nil, nil, ""))
}
