package health

import "github.com/gin-gonic/gin"

type IHealthHandler interface {
	// Basic is the liveness probe.
	Basic(c *gin.Context)

	// Database checks the ledger store connection.
	Database(c *gin.Context)
}

type BasicHealthResponse struct {
	Message string `json:"message"`
}

type CheckResult struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}
