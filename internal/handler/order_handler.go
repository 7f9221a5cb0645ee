package handler

import (
	"errors"
	"net/http"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/service"
	apperrors "eventgo-ticketing/pkg/app_errors"
	"eventgo-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service  service.OrderService
	eventSvc service.EventService
}

func NewOrderHandler(svc service.OrderService, eventSvc service.EventService) *OrderHandler {
	return &OrderHandler{service: svc, eventSvc: eventSvc}
}

func (h *OrderHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("events/:uuid/orders", h.CreateOrder)
		router.GET("orders", h.ListOrders)
		router.GET("orders/:id", h.GetOrder)
		router.GET("orders/:id/tickets", h.GetOrderTickets)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	event, err := h.eventSvc.GetByEventID(c, eventID)
	if err != nil {
		h.handleOrderError(c, err, "CreateOrder")
		return
	}

	var req model.CreateOrderRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.CreateOrder(c, event.ID, req)
	if err != nil {
		h.handleOrderError(c, err, "CreateOrder")
		return
	}
	c.JSON(http.StatusCreated, created.ToResponse())
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.GetOrderByID(c, id)
	if err != nil {
		h.handleOrderError(c, err, "GetOrder")
		return
	}
	c.JSON(http.StatusOK, order.ToResponse())
}

type ListOrdersRequest struct {
	BuyerID int `form:"buyer_id" binding:"required,min=1"`
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req ListOrdersRequest
	if err := BindQuery(c, &req); err != nil {
		return
	}
	orders, err := h.service.ListOrdersByBuyer(c, req.BuyerID)
	if err != nil {
		h.handleOrderError(c, err, "ListOrders")
		return
	}
	out := make([]*model.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ToResponse())
	}
	c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) GetOrderTickets(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tickets, err := h.service.GetOrderTickets(c, id)
	if err != nil {
		h.handleOrderError(c, err, "GetOrderTickets")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *OrderHandler) handleOrderError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInsufficientStock):
		log.Warn("Insufficient stock")
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrTicketTypeNotFound):
		log.Warn("Ticket type not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket type not found"})
	case errors.Is(err, apperrors.ErrOrderNotFound):
		log.Warn("Order not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, apperrors.ErrDiscountInvalid):
		log.Warn("Discount invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount invalid"})
	case errors.Is(err, apperrors.ErrDiscountExpired):
		log.Warn("Discount expired")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount expired"})
	case errors.Is(err, apperrors.ErrDiscountRankIneligible):
		log.Warn("Discount rank ineligible")
		c.JSON(http.StatusForbidden, gin.H{"error": "Discount rank ineligible"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
