package handler

import (
	"errors"
	"net/http"
	"time"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/service"
	apperrors "eventgo-ticketing/pkg/app_errors"
	"eventgo-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventHandler struct {
	service     service.EventService
	discountSvc service.DiscountService
	loyaltySvc  service.LoyaltyService
	orderSvc    service.OrderService
}

func NewEventHandler(
	svc service.EventService,
	discountSvc service.DiscountService,
	loyaltySvc service.LoyaltyService,
	orderSvc service.OrderService,
) *EventHandler {
	return &EventHandler{
		service:     svc,
		discountSvc: discountSvc,
		loyaltySvc:  loyaltySvc,
		orderSvc:    orderSvc,
	}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.GET("events/:uuid", h.GetByEventID)
		router.POST("events", h.Create)
		router.PUT("events/:uuid", h.UpdateByEventID)

		router.GET("events/:uuid/discounts", h.ListDiscounts)
		router.POST("events/:uuid/discounts", h.CreateDiscount)
		router.POST("events/:uuid/discounts/check", h.CheckDiscount)

		router.POST("events/:uuid/checkin", h.CheckIn)
	}
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
}

// UpdateEventRequest 更新活動請求
type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
}

// CheckDiscountRequest 下單前預檢折扣碼
type CheckDiscountRequest struct {
	Code    string `json:"code" binding:"required"`
	BuyerID int    `json:"buyer_id" binding:"required"`
}

// CheckInRequest 入場掃碼請求
type CheckInRequest struct {
	RedemptionCode string `json:"redemption_code" binding:"required"`
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByEventID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	event, err := h.service.GetByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "GetByEventID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	event := &model.Event{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
	}
	created, err := h.service.Create(c, event)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) UpdateByEventID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.Name == nil && req.Description == nil && req.Location == nil && req.StartsAt == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one field is required"})
		return
	}
	params := model.UpdateEventParams{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
	}
	updated, err := h.service.UpdateByEventID(c, eventID, params)
	if err != nil {
		h.handleError(c, err, "UpdateByEventID")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) ListDiscounts(c *gin.Context) {
	event, ok := h.resolveEvent(c)
	if !ok {
		return
	}
	discounts, err := h.discountSvc.ListByEventID(c, event.ID)
	if err != nil {
		h.handleError(c, err, "ListDiscounts")
		return
	}
	c.JSON(http.StatusOK, discounts)
}

func (h *EventHandler) CreateDiscount(c *gin.Context) {
	event, ok := h.resolveEvent(c)
	if !ok {
		return
	}
	var req model.CreateDiscountRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	discount := &model.DiscountCode{
		EventID:      event.ID,
		Code:         req.Code,
		PercentOff:   req.PercentOff,
		ExpiresAt:    req.ExpiresAt,
		EligibleRank: model.LoyaltyRank(req.EligibleRank),
	}
	created, err := h.discountSvc.Create(c, discount)
	if err != nil {
		h.handleError(c, err, "CreateDiscount")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) CheckDiscount(c *gin.Context) {
	event, ok := h.resolveEvent(c)
	if !ok {
		return
	}
	var req CheckDiscountRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	rank, err := h.loyaltySvc.Rank(c, req.BuyerID)
	if err != nil {
		h.handleError(c, err, "CheckDiscount")
		return
	}
	percentOff, err := h.discountSvc.Evaluate(c, req.Code, event.ID, rank, time.Now().UTC())
	if err != nil {
		h.handleError(c, err, "CheckDiscount")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": req.Code, "percent_off": percentOff, "rank": rank})
}

func (h *EventHandler) CheckIn(c *gin.Context) {
	event, ok := h.resolveEvent(c)
	if !ok {
		return
	}
	var req CheckInRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	// 重複掃碼回 200 並標記 already_checked_in，閘門端自行決定放不放行
	result, err := h.orderSvc.CheckIn(c, event.ID, req.RedemptionCode)
	if err != nil {
		h.handleError(c, err, "CheckIn")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id":           result.OrderID,
		"redemption_code":    result.RedemptionCode,
		"already_checked_in": result.AlreadyCheckedIn,
	})
}

func (h *EventHandler) resolveEvent(c *gin.Context) (*model.Event, bool) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return nil, false
	}
	event, err := h.service.GetByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "resolveEvent")
		return nil, false
	}
	return event, true
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
	case errors.Is(err, apperrors.ErrTicketUnpaid):
		log.Warn("Ticket not paid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticket not paid"})
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
