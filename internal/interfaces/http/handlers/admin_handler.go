package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/interfaces/http/response"
	"merovian.backend/pkg/utils"
)

type adminService interface {
	ListProfiles(ctx context.Context, actorID uuid.UUID, page, limit int) ([]*entities.Profile, utils.PaginationMeta, error)
	SetBalance(ctx context.Context, actorID, profileID uuid.UUID, balance decimal.Decimal) (*entities.Profile, error)
	SetKYCStatus(ctx context.Context, actorID, profileID uuid.UUID, status entities.KYCStatus) (*entities.Profile, error)
	GetKYCDetails(ctx context.Context, actorID, profileID uuid.UUID) (*entities.KYCDetails, error)
	ListTickets(ctx context.Context, actorID uuid.UUID) ([]*entities.SupportTicket, error)
	ListTicketMessages(ctx context.Context, actorID, ticketID uuid.UUID) ([]*entities.TicketMessage, error)
	ReplyToTicket(ctx context.Context, actorID, ticketID uuid.UUID, input *entities.PostMessageInput) (*entities.TicketMessage, error)
	Stats(ctx context.Context, actorID uuid.UUID) (*entities.AdminStats, error)
}

// AdminHandler serves the back office. Routes sit behind RequireAdmin and
// the usecase re-checks the caller's role on every call.
type AdminHandler struct {
	service adminService
}

func NewAdminHandler(service adminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type updateBalanceRequest struct {
	Balance *decimal.Decimal `json:"balance" binding:"required"`
}

// ListProfiles
// GET /api/v1/admin/profiles
func (h *AdminHandler) ListProfiles(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit := pageQuery(c)
	items, meta, err := h.service.ListProfiles(c.Request.Context(), actorID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"profiles":   items,
		"pagination": meta,
	})
}

// UpdateBalance
// PUT /api/v1/admin/profiles/:id/balance
func (h *AdminHandler) UpdateBalance(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	profileID, ok := pathID(c, "id", "profile")
	if !ok {
		return
	}

	var input updateBalanceRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	profile, err := h.service.SetBalance(c.Request.Context(), actorID, profileID, *input.Balance)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"profile": profile,
		"message": "Updated balance for " + profile.Email,
	})
}

// UpdateKYCStatus
// PUT /api/v1/admin/profiles/:id/kyc-status
func (h *AdminHandler) UpdateKYCStatus(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	profileID, ok := pathID(c, "id", "profile")
	if !ok {
		return
	}

	var input entities.UpdateKYCStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	profile, err := h.service.SetKYCStatus(c.Request.Context(), actorID, profileID, input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"profile": profile,
		"message": "Updated KYC to " + string(profile.KYCStatus),
	})
}

// GetKYCDetails
// GET /api/v1/admin/profiles/:id/kyc
func (h *AdminHandler) GetKYCDetails(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	profileID, ok := pathID(c, "id", "profile")
	if !ok {
		return
	}

	details, err := h.service.GetKYCDetails(c.Request.Context(), actorID, profileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"kyc": details})
}

// ListTickets
// GET /api/v1/admin/tickets
func (h *AdminHandler) ListTickets(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	tickets, err := h.service.ListTickets(c.Request.Context(), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tickets": tickets})
}

// ListTicketMessages
// GET /api/v1/admin/tickets/:id/messages
func (h *AdminHandler) ListTicketMessages(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	messages, err := h.service.ListTicketMessages(c.Request.Context(), actorID, ticketID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": messages})
}

// ReplyToTicket
// POST /api/v1/admin/tickets/:id/messages
func (h *AdminHandler) ReplyToTicket(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	var input entities.PostMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	msg, err := h.service.ReplyToTicket(c.Request.Context(), actorID, ticketID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

// Stats
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
