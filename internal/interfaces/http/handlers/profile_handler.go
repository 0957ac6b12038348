package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/interfaces/http/response"
	"merovian.backend/pkg/utils"
)

type profileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Transaction, utils.PaginationMeta, error)
}

// ProfileHandler serves the caller's profile and transaction history.
type ProfileHandler struct {
	service profileService
}

func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile
// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Profile not found"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// ListTransactions
// GET /api/v1/transactions
func (h *ProfileHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit := pageQuery(c)
	items, meta, err := h.service.ListTransactions(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"transactions": items,
		"pagination":   meta,
	})
}
