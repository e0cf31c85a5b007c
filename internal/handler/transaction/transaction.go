package transaction

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/ledger"
	"github.com/shieldtip/shieldtip-backend/internal/model"
	"github.com/shieldtip/shieldtip-backend/internal/store/tiptransaction"
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

// LogTransaction godoc
// @Summary Record a tip transaction
// @Description Records a new tip attempt; an already-known tx hash resolves to the existing record
// @id logTransaction
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body LogTransactionRequest true "Transaction to record"
// @Success 201 {object} view.Response[model.TipTransaction]
// @Failure 400 {object} view.ErrorResponse
// @Failure 503 {object} view.ErrorResponse
// @Router /transactions [post]
func (h *handler) LogTransaction(c *gin.Context) {
	var req LogTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[LogTransaction][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	input, err := toLogInput(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	record, err := h.ledger.LogTransaction(input)
	if err != nil {
		h.respondError(c, "LogTransaction", err)
		return
	}

	c.JSON(http.StatusCreated, view.CreateResponse(record, nil, nil, ""))
}

// UpdateStatus godoc
// @Summary Update a transaction's status
// @Description Applies a forward-only status transition and merges metadata
// @id updateTransactionStatus
// @Tags Transaction
// @Accept json
// @Produce json
// @Param id path string true "Transaction id"
// @Param request body UpdateStatusRequest true "Status update"
// @Success 200 {object} view.Response[model.TipTransaction]
// @Failure 400 {object} view.ErrorResponse
// @Failure 404 {object} view.ErrorResponse
// @Failure 409 {object} view.ErrorResponse
// @Router /transactions/{id}/status [put]
func (h *handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "invalid transaction id"))
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	record, err := h.ledger.UpdateTransactionStatus(id, ledger.StatusUpdate{
		Status:        model.TransactionStatus(req.Status),
		Confirmations: req.Confirmations,
		TxHash:        req.TxHash,
		ConfirmedAt:   req.ConfirmedAt,
		Metadata:      model.JSONB(req.Metadata),
	})
	if err != nil {
		h.respondError(c, "UpdateStatus", err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, view.CreateResponse[any](nil, nil, nil, "transaction not found"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(record, nil, nil, ""))
}

// GetTransactions godoc
// @Summary List tip transactions
// @Description Lists records newest first with optional filters and pagination
// @id getTransactions
// @Tags Transaction
// @Produce json
// @Success 200 {object} view.PagingResponse[model.TipTransaction]
// @Failure 400 {object} view.ErrorResponse
// @Router /transactions [get]
func (h *handler) GetTransactions(c *gin.Context) {
	var req GetTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	filter := tiptransaction.ListFilter{
		Status:         model.TransactionStatus(req.Status),
		SourcePlatform: model.SourcePlatform(req.SourcePlatform),
		Limit:          req.Limit,
		Offset:         req.Offset,
	}

	if req.CreatorID != "" {
		creatorID, err := uuid.Parse(req.CreatorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid creator id"))
			return
		}
		filter.CreatorID = &creatorID
	}
	if req.StartTime != "" {
		startTime, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid start time"))
			return
		}
		filter.StartTime = &startTime
	}
	if req.EndTime != "" {
		endTime, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid end time"))
			return
		}
		filter.EndTime = &endTime
	}

	records, total, err := h.ledger.GetTransactions(filter)
	if err != nil {
		h.respondError(c, "GetTransactions", err)
		return
	}

	c.JSON(http.StatusOK, view.PagingResponse[*model.TipTransaction]{
		Total: total,
		Data:  records,
	})
}

// GetTransactionByID godoc
// @Summary Get a transaction by id
// @id getTransactionByID
// @Tags Transaction
// @Produce json
// @Param id path string true "Transaction id"
// @Success 200 {object} view.Response[model.TipTransaction]
// @Failure 404 {object} view.ErrorResponse
// @Router /transactions/{id} [get]
func (h *handler) GetTransactionByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "invalid transaction id"))
		return
	}

	record, err := h.ledger.GetTransactionByID(id)
	if err != nil {
		h.respondError(c, "GetTransactionByID", err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, view.CreateResponse[any](nil, nil, nil, "transaction not found"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(record, nil, nil, ""))
}

// GetTransactionByHash godoc
// @Summary Get a transaction by network hash
// @id getTransactionByHash
// @Tags Transaction
// @Produce json
// @Param hash path string true "64-hex network transaction hash"
// @Success 200 {object} view.Response[model.TipTransaction]
// @Failure 404 {object} view.ErrorResponse
// @Router /transactions/hash/{hash} [get]
func (h *handler) GetTransactionByHash(c *gin.Context) {
	record, err := h.ledger.GetTransactionByHash(c.Param("hash"))
	if err != nil {
		h.respondError(c, "GetTransactionByHash", err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, view.CreateResponse[any](nil, nil, nil, "transaction not found"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(record, nil, nil, ""))
}

func (h *handler) respondError(c *gin.Context, op string, err error) {
	h.logger.Error("["+op+"]", map[string]string{"error": err.Error()})

	var validationErr *ledger.ValidationError
	var transitionErr *ledger.TransitionError
	var backendErr *ledger.BackendError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "invalid request"))
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, view.CreateResponse[any](nil, err, nil, "illegal status transition"))
	case errors.As(err, &backendErr):
		c.JSON(http.StatusServiceUnavailable, view.CreateResponse[any](nil, err, nil, "ledger temporarily unavailable"))
	default:
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "internal error"))
	}
}

func toLogInput(req LogTransactionRequest) (ledger.LogTransactionInput, error) {
	amountAsset, err := decimal.NewFromString(req.AmountAsset)
	if err != nil {
		return ledger.LogTransactionInput{}, errors.New("amount_asset must be a decimal string")
	}

	input := ledger.LogTransactionInput{
		SenderAddress:    req.SenderAddress,
		RecipientAddress: req.RecipientAddress,
		AmountAsset:      amountAsset,
		TxHash:           req.TxHash,
		Memo:             req.Memo,
		SourcePlatform:   model.SourcePlatform(req.SourcePlatform),
		SourceURL:        req.SourceURL,
		Metadata:         model.JSONB(req.Metadata),
	}

	if req.CreatorID != nil {
		creatorID, err := uuid.Parse(*req.CreatorID)
		if err != nil {
			return ledger.LogTransactionInput{}, errors.New("creator_id must be a uuid")
		}
		input.CreatorID = &creatorID
	}
	if req.AmountReference != nil {
		amountReference, err := decimal.NewFromString(*req.AmountReference)
		if err != nil {
			return ledger.LogTransactionInput{}, errors.New("amount_reference must be a decimal string")
		}
		input.AmountReference = &amountReference
	}

	return input, nil
}
