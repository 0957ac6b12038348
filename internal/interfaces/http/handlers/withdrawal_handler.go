package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/interfaces/http/response"
)

type withdrawalService interface {
	Withdraw(ctx context.Context, userID uuid.UUID, input *entities.WithdrawInput) (*entities.WithdrawResult, error)
	Limits() entities.WithdrawalLimits
}

// WithdrawalHandler handles withdrawal requests
type WithdrawalHandler struct {
	service withdrawalService
}

func NewWithdrawalHandler(service withdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{service: service}
}

// Withdraw
// POST /api/v1/withdrawals
func (h *WithdrawalHandler) Withdraw(c *gin.Context) {
	var input entities.WithdrawInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.service.Withdraw(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Limits
// GET /api/v1/withdrawals/limits
func (h *WithdrawalHandler) Limits(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"limits": h.service.Limits()})
}
