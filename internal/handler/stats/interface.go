package stats

import "github.com/gin-gonic/gin"

type IHandler interface {
	// GetCreatorStats returns rollups over a creator's confirmed tips.
	GetCreatorStats(c *gin.Context)
}
