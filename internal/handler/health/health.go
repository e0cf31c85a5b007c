package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

type HealthHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func New(db *gorm.DB, logger *logger.Logger) IHealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// Basic godoc
// @Summary Liveness probe
// @id healthBasic
// @Tags Health
// @Produce json
// @Success 200 {object} BasicHealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Basic(c *gin.Context) {
	c.JSON(http.StatusOK, BasicHealthResponse{Message: "ok"})
}

// Database godoc
// @Summary Ledger store health
// @id healthDatabase
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/db [get]
func (h *HealthHandler) Database(c *gin.Context) {
	checks := map[string]CheckResult{}

	if h.db == nil {
		checks["database"] = CheckResult{
			Status: "unhealthy",
			Error:  "database connection not available",
		}
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		checks["database"] = CheckResult{Status: "unhealthy", Error: err.Error()}
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		h.logger.Error("[Database] ping failed", map[string]string{"error": err.Error()})
		checks["database"] = CheckResult{Status: "unhealthy", Error: err.Error()}
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}

	checks["database"] = CheckResult{
		Status:  "healthy",
		Latency: time.Since(start).String(),
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Checks: checks})
}
