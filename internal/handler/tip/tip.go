package tip

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/orchestrator"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
	"github.com/shieldtip/shieldtip-backend/internal/view"
	"github.com/shieldtip/shieldtip-backend/internal/walletrpc"
)

type handler struct {
	orchestrator orchestrator.IOrchestrator
	logger       *logger.Logger
}

func New(orchestrator orchestrator.IOrchestrator, logger *logger.Logger) IHandler {
	return &handler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// SendTip godoc
// @Summary Send a tip
// @Description Drives one tip attempt: conversion, balance check, approval, swap, shielded routing, confirmation
// @id sendTip
// @Tags Tip
// @Accept json
// @Produce json
// @Param request body SendTipRequest true "Tip parameters"
// @Success 200 {object} view.Response[model.TipTransaction]
// @Failure 400 {object} view.ErrorResponse
// @Failure 409 {object} view.ErrorResponse
// @Failure 502 {object} view.ErrorResponse
// @Failure 504 {object} view.ErrorResponse
// @Router /tips [post]
func (h *handler) SendTip(c *gin.Context) {
	var req SendTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[SendTip][ShouldBindJSON]", map[string]string{"error": err.Error()})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	amountReference, err := decimal.NewFromString(req.AmountReference)
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "amount_reference must be a decimal string"))
		return
	}

	record, err := h.orchestrator.Tip(c.Request.Context(), amountReference, req.RecipientAddress, req.Context)
	if err != nil {
		h.respondError(c, "SendTip", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(record, nil, nil, orchestrator.StateCompleted.Message()))
}

// ConnectWallet godoc
// @Summary Connect a wallet
// @id connectWallet
// @Tags Tip
// @Accept json
// @Produce json
// @Param request body ConnectWalletRequest true "Connector parameters"
// @Success 200 {object} view.Response[walletrpc.Session]
// @Failure 400 {object} view.ErrorResponse
// @Failure 502 {object} view.ErrorResponse
// @Router /wallet/connect [post]
func (h *handler) ConnectWallet(c *gin.Context) {
	var req ConnectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	session, err := h.orchestrator.Connect(c.Request.Context(), walletrpc.WalletKind(req.Kind), req.ForceAccountSelection)
	if err != nil {
		h.respondError(c, "ConnectWallet", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(session, nil, nil, orchestrator.StateConnected.Message()))
}

// DisconnectWallet godoc
// @Summary Disconnect the wallet
// @id disconnectWallet
// @Tags Tip
// @Produce json
// @Success 200 {object} view.MessageResponse
// @Router /wallet/disconnect [post]
func (h *handler) DisconnectWallet(c *gin.Context) {
	if err := h.orchestrator.Disconnect(c.Request.Context()); err != nil {
		h.respondError(c, "DisconnectWallet", err)
		return
	}

	c.JSON(http.StatusOK, view.MessageResponse{Message: "wallet disconnected"})
}

// ResetTip godoc
// @Summary Reset a terminal tip attempt
// @id resetTip
// @Tags Tip
// @Produce json
// @Success 200 {object} view.MessageResponse
// @Failure 409 {object} view.ErrorResponse
// @Router /tips/reset [post]
func (h *handler) ResetTip(c *gin.Context) {
	if err := h.orchestrator.ResetTransaction(); err != nil {
		h.respondError(c, "ResetTip", err)
		return
	}

	c.JSON(http.StatusOK, view.MessageResponse{Message: "reset"})
}

// GetStatus godoc
// @Summary Current tip lifecycle status
// @id getTipStatus
// @Tags Tip
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /tips/status [get]
func (h *handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Status:  string(h.orchestrator.Status()),
		Message: h.orchestrator.StatusMessage(),
	}
	if err := h.orchestrator.LastError(); err != nil {
		resp.Error = err.Error()
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) respondError(c *gin.Context, op string, err error) {
	h.logger.Error("["+op+"]", map[string]string{"error": err.Error()})

	var inProgressErr *orchestrator.InProgressError
	var insufficientErr *orchestrator.InsufficientFundsError
	var conversionErr *orchestrator.ConversionError
	var timeoutErr *orchestrator.TimeoutError
	var walletErr *orchestrator.WalletError
	var swapErr *orchestrator.SwapError
	var deliveryErr *orchestrator.DeliveryError

	switch {
	case errors.Is(err, orchestrator.ErrConnectionRequired):
		c.JSON(http.StatusConflict, view.CreateResponse[any](nil, err, nil, orchestrator.StateConnecting.Message()))
	case errors.Is(err, orchestrator.ErrResetRequired):
		c.JSON(http.StatusConflict, view.CreateResponse[any](nil, err, nil, "reset required"))
	case errors.As(err, &inProgressErr):
		c.JSON(http.StatusConflict, view.CreateResponse[any](nil, err, nil, "attempt in progress"))
	case errors.As(err, &insufficientErr):
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "insufficient funds"))
	case errors.As(err, &conversionErr):
		c.JSON(http.StatusBadGateway, view.CreateResponse[any](nil, err, nil, "rate unavailable"))
	case errors.As(err, &timeoutErr):
		c.JSON(http.StatusGatewayTimeout, view.CreateResponse[any](nil, err, nil, orchestrator.StateFailed.Message()))
	case errors.As(err, &walletErr), errors.As(err, &swapErr), errors.As(err, &deliveryErr):
		c.JSON(http.StatusBadGateway, view.CreateResponse[any](nil, err, nil, orchestrator.StateFailed.Message()))
	default:
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "internal error"))
	}
}
