package handler

import (
	"errors"
	"net/http"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/service"
	apperrors "eventgo-ticketing/pkg/app_errors"
	"eventgo-ticketing/pkg/logger"
	"eventgo-ticketing/pkg/qr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TicketTypeHandler struct {
	service  service.TicketTypeService
	orderSvc service.OrderService
}

func NewTicketTypeHandler(svc service.TicketTypeService, orderSvc service.OrderService) *TicketTypeHandler {
	return &TicketTypeHandler{service: svc, orderSvc: orderSvc}
}

func (h *TicketTypeHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events/:uuid/ticket-types", h.ListByEvent)
		router.POST("events/:uuid/ticket-types", h.Create)
		router.GET("ticket-types/:uuid", h.GetByTicketTypeID)
		router.PUT("ticket-types/:uuid", h.UpdateByTicketTypeID)
		router.DELETE("ticket-types/:uuid", h.DeleteByTicketTypeID)
		router.POST("ticket-types/:uuid/stock", h.AddStock)

		router.GET("tickets/:code/qr", h.TicketQR)
	}
}

// CreateTicketTypeRequest 建立票種請求
type CreateTicketTypeRequest struct {
	Label      string          `json:"label" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price" binding:"required"`
	TotalStock int             `json:"total_stock" binding:"min=0"`
}

// UpdateTicketTypeRequest 更新票種請求
type UpdateTicketTypeRequest struct {
	Label     *string          `json:"label"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// AddStockRequest 補票請求
type AddStockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (h *TicketTypeHandler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	tickets, err := h.service.ListByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, toTicketTypeResponses(tickets))
}

func (h *TicketTypeHandler) Create(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	var req CreateTicketTypeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	tt := &model.TicketType{
		Label:      req.Label,
		UnitPrice:  req.UnitPrice,
		TotalStock: req.TotalStock,
	}
	created, err := h.service.Create(c, eventID, tt)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created.ToResponse())
}

func (h *TicketTypeHandler) GetByTicketTypeID(c *gin.Context) {
	ticketTypeID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket type uuid"})
		return
	}
	tt, err := h.service.GetByTicketTypeID(c, ticketTypeID)
	if err != nil {
		h.handleError(c, err, "GetByTicketTypeID")
		return
	}
	c.JSON(http.StatusOK, tt.ToResponse())
}

func (h *TicketTypeHandler) UpdateByTicketTypeID(c *gin.Context) {
	ticketTypeID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket type uuid"})
		return
	}
	var req UpdateTicketTypeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.Label == nil && req.UnitPrice == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one of label or unit_price is required"})
		return
	}
	params := model.UpdateTicketTypeParams{
		Label:     req.Label,
		UnitPrice: req.UnitPrice,
	}
	updated, err := h.service.UpdateByTicketTypeID(c, ticketTypeID, params)
	if err != nil {
		h.handleError(c, err, "UpdateByTicketTypeID")
		return
	}
	c.JSON(http.StatusOK, updated.ToResponse())
}

func (h *TicketTypeHandler) DeleteByTicketTypeID(c *gin.Context) {
	ticketTypeID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket type uuid"})
		return
	}
	if err := h.service.DeleteByTicketTypeID(c, ticketTypeID); err != nil {
		h.handleError(c, err, "DeleteByTicketTypeID")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TicketTypeHandler) AddStock(c *gin.Context) {
	ticketTypeID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket type uuid"})
		return
	}
	var req AddStockRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	updated, err := h.service.AddStock(c, ticketTypeID, req.Quantity)
	if err != nil {
		h.handleError(c, err, "AddStock")
		return
	}
	c.JSON(http.StatusOK, updated.ToResponse())
}

func (h *TicketTypeHandler) TicketQR(c *gin.Context) {
	code := c.Param("code")
	ticket, err := h.orderSvc.GetTicketByCode(c, code)
	if err != nil {
		h.handleError(c, err, "TicketQR")
		return
	}
	png, err := qr.Encode(ticket.RedemptionCode)
	if err != nil {
		h.handleError(c, err, "TicketQR")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func toTicketTypeResponses(tickets []*model.TicketType) []*model.TicketTypeResponse {
	out := make([]*model.TicketTypeResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.ToResponse())
	}
	return out
}

func (h *TicketTypeHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrTicketTypeNotFound):
		log.Warn("Ticket type not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket type not found"})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
	case errors.Is(err, apperrors.ErrTicketUnpaid):
		log.Warn("Ticket not paid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticket not paid"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
