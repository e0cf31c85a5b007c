package transaction

import (
	"time"

	"github.com/gin-gonic/gin"
)

type IHandler interface {
	// LogTransaction records a new tip attempt in the ledger.
	LogTransaction(c *gin.Context)

	// UpdateStatus applies a forward-only status change to a record.
	UpdateStatus(c *gin.Context)

	// GetTransactions lists records, newest first, with filters and
	// pagination.
	GetTransactions(c *gin.Context)

	GetTransactionByID(c *gin.Context)
	GetTransactionByHash(c *gin.Context)
}

type LogTransactionRequest struct {
	CreatorID        *string                `json:"creator_id"`
	SenderAddress    *string                `json:"sender_address"`
	RecipientAddress string                 `json:"recipient_address" binding:"required"`
	AmountAsset      string                 `json:"amount_asset" binding:"required"`
	AmountReference  *string                `json:"amount_reference"`
	TxHash           *string                `json:"tx_hash" binding:"omitempty,txhash"`
	Memo             *string                `json:"memo"`
	SourcePlatform   string                 `json:"source_platform" binding:"required"`
	SourceURL        *string                `json:"source_url"`
	Metadata         map[string]interface{} `json:"metadata"`
}

type UpdateStatusRequest struct {
	Status        string                 `json:"status" binding:"required"`
	Confirmations *int                   `json:"confirmations"`
	TxHash        *string                `json:"tx_hash" binding:"omitempty,txhash"`
	ConfirmedAt   *time.Time             `json:"confirmed_at"`
	Metadata      map[string]interface{} `json:"metadata"`
}

type GetTransactionsRequest struct {
	CreatorID      string `form:"creator_id"`
	Status         string `form:"status"`
	SourcePlatform string `form:"source_platform"`
	StartTime      string `form:"start_time"`
	EndTime        string `form:"end_time"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
}
