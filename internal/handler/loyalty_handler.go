package handler

import (
	"net/http"

	"eventgo-ticketing/internal/service"
	"eventgo-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoyaltyHandler struct {
	service service.LoyaltyService
}

func NewLoyaltyHandler(svc service.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{service: svc}
}

func (h *LoyaltyHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("buyers/:id/rank", h.GetRank)
	}
}

func (h *LoyaltyHandler) GetRank(c *gin.Context) {
	buyerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rank, err := h.service.Rank(c, buyerID)
	if err != nil {
		logger.WithComponent("handler").Error("GetRank failed", zap.Int("buyer_id", buyerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buyer_id": buyerID, "rank": rank})
}
