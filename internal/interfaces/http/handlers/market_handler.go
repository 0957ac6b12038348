package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/internal/interfaces/http/response"
)

type marketService interface {
	Movers(ctx context.Context) (*entities.MarketMovers, error)
}

type MarketHandler struct {
	service marketService
}

func NewMarketHandler(service marketService) *MarketHandler {
	return &MarketHandler{service: service}
}

// Movers
// GET /api/v1/market/movers
func (h *MarketHandler) Movers(c *gin.Context) {
	movers, err := h.service.Movers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, movers)
}
