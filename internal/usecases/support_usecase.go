package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/domain/repositories"
	"merovian.backend/pkg/metrics"
	"merovian.backend/pkg/utils"
)

// SupportUsecase handles support tickets and their threads.
type SupportUsecase struct {
	uow         repositories.UnitOfWork
	profileRepo repositories.ProfileRepository
	ticketRepo  repositories.TicketRepository
	messageRepo repositories.TicketMessageRepository
	publisher   EventPublisher
}

func NewSupportUsecase(
	uow repositories.UnitOfWork,
	profileRepo repositories.ProfileRepository,
	ticketRepo repositories.TicketRepository,
	messageRepo repositories.TicketMessageRepository,
	publisher EventPublisher,
) *SupportUsecase {
	return &SupportUsecase{
		uow:         uow,
		profileRepo: profileRepo,
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		publisher:   publisherOrNoop(publisher),
	}
}

// ListTickets returns the caller's tickets newest first.
func (u *SupportUsecase) ListTickets(ctx context.Context, userID uuid.UUID) ([]*entities.SupportTicket, error) {
	return u.ticketRepo.ListByUser(ctx, userID)
}

// CreateTicket opens a ticket with its first message in one unit of work.
func (u *SupportUsecase) CreateTicket(ctx context.Context, userID uuid.UUID, input *entities.CreateTicketInput) (*entities.TicketWithMessage, error) {
	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Message)
	if subject == "" || body == "" {
		return nil, domainerrors.BadRequest("Subject and message are required")
	}

	now := time.Now().UTC()
	ticket := &entities.SupportTicket{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		Subject:   subject,
		Status:    entities.TicketOpen,
		CreatedAt: now,
	}
	msg := &entities.TicketMessage{
		ID:        utils.GenerateUUIDv7(),
		TicketID:  ticket.ID,
		SenderID:  userID,
		Message:   body,
		CreatedAt: now,
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.ticketRepo.Create(txCtx, ticket); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		if err := u.messageRepo.Create(txCtx, msg); err != nil {
			return fmt.Errorf("create first message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTicketMessage(string(entities.RoleUser))
	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.TicketChange(ticket, entities.ChangeInsert)
	})
	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.MessageChange(msg, ticket.UserID.String())
	})

	return &entities.TicketWithMessage{Ticket: ticket, Message: msg}, nil
}

// ListMessages returns a thread oldest first. Only the ticket owner or an
// admin may read it.
func (u *SupportUsecase) ListMessages(ctx context.Context, actorID, ticketID uuid.UUID) ([]*entities.TicketMessage, error) {
	if _, _, err := u.authorize(ctx, actorID, ticketID); err != nil {
		return nil, err
	}
	return u.messageRepo.ListByTicket(ctx, ticketID)
}

// PostMessage appends to a thread as the owner or an admin.
func (u *SupportUsecase) PostMessage(ctx context.Context, actorID, ticketID uuid.UUID, input *entities.PostMessageInput) (*entities.TicketMessage, error) {
	body := strings.TrimSpace(input.Message)
	if body == "" {
		return nil, domainerrors.BadRequest("Message is required")
	}

	ticket, actor, err := u.authorize(ctx, actorID, ticketID)
	if err != nil {
		return nil, err
	}

	msg := &entities.TicketMessage{
		ID:        utils.GenerateUUIDv7(),
		TicketID:  ticketID,
		SenderID:  actorID,
		Message:   body,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	metrics.RecordTicketMessage(string(actor.Role))
	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.MessageChange(msg, ticket.UserID.String())
	})
	return msg, nil
}

// CanAccessTicket reports whether actor may read the ticket thread.
func (u *SupportUsecase) CanAccessTicket(ctx context.Context, actorID, ticketID uuid.UUID) (bool, error) {
	_, _, err := u.authorize(ctx, actorID, ticketID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domainerrors.ErrForbidden), errors.Is(err, domainerrors.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (u *SupportUsecase) authorize(ctx context.Context, actorID, ticketID uuid.UUID) (*entities.SupportTicket, *entities.Profile, error) {
	ticket, err := u.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := u.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.UserID != actorID && !actor.IsAdmin() {
		return nil, nil, domainerrors.ErrForbidden
	}
	return ticket, actor, nil
}
