package handler

import (
	"errors"
	"io"
	"net/http"

	"eventgo-ticketing/internal/service"
	apperrors "eventgo-ticketing/pkg/app_errors"
	"eventgo-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// signatureHeader IPN 簽章不混進 payload，payload 原文整段拿去驗章
const signatureHeader = "X-Signature"

type PaymentHandler struct {
	service service.ReconcileService
}

func NewPaymentHandler(svc service.ReconcileService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("orders/:id/pay", h.PayOrder)
		router.GET("orders/:id/payment-status", h.CheckStatus)
		router.POST("payment/webhook", h.Webhook)
	}
}

func (h *PaymentHandler) PayOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	charge, err := h.service.PayOrder(c, id)
	if err != nil {
		h.handleError(c, err, "PayOrder")
		return
	}
	c.JSON(http.StatusOK, charge)
}

func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	outcome, err := h.service.CheckStatus(c, id)
	if err != nil {
		h.handleError(c, err, "CheckStatus")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	outcome, err := h.service.HandleWebhook(c, payload, c.GetHeader(signatureHeader))
	if err != nil {
		h.handleError(c, err, "Webhook")
		return
	}

	// 驗章通過後一律 200，閘道才不會重送；結果細節放 body
	c.JSON(http.StatusOK, outcome)
}

func (h *PaymentHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidSignature):
		log.Warn("Invalid signature")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
	case errors.Is(err, apperrors.ErrInvalidOrderRef):
		log.Warn("Invalid order ref")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ref"})
	case errors.Is(err, apperrors.ErrOrderNotFound):
		log.Warn("Order not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, apperrors.ErrOrderNotPending):
		log.Warn("Order not pending")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order not pending"})
	case errors.Is(err, apperrors.ErrOrderExpired):
		log.Warn("Order expired")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order expired"})
	case errors.Is(err, apperrors.ErrGatewayDeclined):
		log.Warn("Gateway declined")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Gateway declined"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
