package tip

import "github.com/gin-gonic/gin"

type IHandler interface {
	// SendTip drives a full tip attempt through the orchestrator.
	SendTip(c *gin.Context)

	ConnectWallet(c *gin.Context)
	DisconnectWallet(c *gin.Context)
	ResetTip(c *gin.Context)
	GetStatus(c *gin.Context)
}

type SendTipRequest struct {
	AmountReference  string `json:"amount_reference" binding:"required"`
	RecipientAddress string `json:"recipient_address" binding:"required"`
	Context          string `json:"context"`
}

type ConnectWalletRequest struct {
	Kind                  string `json:"kind" binding:"required"`
	ForceAccountSelection bool   `json:"force_account_selection"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
