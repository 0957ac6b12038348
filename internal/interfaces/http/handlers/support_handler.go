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

type supportService interface {
	ListTickets(ctx context.Context, userID uuid.UUID) ([]*entities.SupportTicket, error)
	CreateTicket(ctx context.Context, userID uuid.UUID, input *entities.CreateTicketInput) (*entities.TicketWithMessage, error)
	ListMessages(ctx context.Context, actorID, ticketID uuid.UUID) ([]*entities.TicketMessage, error)
	PostMessage(ctx context.Context, actorID, ticketID uuid.UUID, input *entities.PostMessageInput) (*entities.TicketMessage, error)
}

// SupportHandler handles support ticket endpoints
type SupportHandler struct {
	service supportService
}

func NewSupportHandler(service supportService) *SupportHandler {
	return &SupportHandler{service: service}
}

// ListTickets
// GET /api/v1/tickets
func (h *SupportHandler) ListTickets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tickets, err := h.service.ListTickets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tickets": tickets})
}

// CreateTicket opens a ticket with its first message
// POST /api/v1/tickets
func (h *SupportHandler) CreateTicket(c *gin.Context) {
	var input entities.CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	created, err := h.service.CreateTicket(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"ticket":  created.Ticket,
		"message": created.Message,
		"notice":  "Ticket created successfully!",
	})
}

// ListMessages
// GET /api/v1/tickets/:id/messages
func (h *SupportHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), userID, ticketID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": messages})
}

// PostMessage
// POST /api/v1/tickets/:id/messages
func (h *SupportHandler) PostMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
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

	msg, err := h.service.PostMessage(c.Request.Context(), userID, ticketID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}
