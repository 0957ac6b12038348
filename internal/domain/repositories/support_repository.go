package repositories

import (
	"context"

	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
)

// TicketRepository defines support ticket data operations
type TicketRepository interface {
	Create(ctx context.Context, ticket *entities.SupportTicket) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.SupportTicket, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.SupportTicket, error)
	ListAll(ctx context.Context) ([]*entities.SupportTicket, error)
	CountByStatus(ctx context.Context, status entities.TicketStatus) (int64, error)
}

// TicketMessageRepository defines ticket message data operations
type TicketMessageRepository interface {
	Create(ctx context.Context, msg *entities.TicketMessage) error
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*entities.TicketMessage, error)
}
