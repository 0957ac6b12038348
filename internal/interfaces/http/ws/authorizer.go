package ws

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/infrastructure/realtime"
)

var (
	errUnknownTable   = errors.New("unknown table")
	errFilterRequired = errors.New("filter must restrict the subscription to your own rows")
	errTicketDenied   = errors.New("not allowed to watch this ticket")
)

// ProfileReader loads the caller's profile to read the stored role.
type ProfileReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
}

// TicketAccess decides whether actor may read a ticket thread.
type TicketAccess interface {
	CanAccessTicket(ctx context.Context, actorID, ticketID uuid.UUID) (bool, error)
}

// Authorizer checks subscriptions against row ownership. Admins, by the
// profiles row, may watch any table unfiltered.
type Authorizer struct {
	profiles ProfileReader
	tickets  TicketAccess
}

func NewAuthorizer(profiles ProfileReader, tickets TicketAccess) *Authorizer {
	return &Authorizer{profiles: profiles, tickets: tickets}
}

// ownerColumns lists, per table, the filter column that pins rows to a user.
var ownerColumns = map[string]string{
	entities.TableProfiles:       "id",
	entities.TableTransactions:   "user_id",
	entities.TableSupportTickets: "user_id",
	entities.TableKYCDetails:     "user_id",
	entities.TableTicketMessages: "owner_id",
}

// Authorize returns nil when userID may subscribe to table with filter.
func (a *Authorizer) Authorize(ctx context.Context, userID uuid.UUID, table string, filter realtime.Filter) error {
	ownerCol, ok := ownerColumns[table]
	if !ok {
		return errUnknownTable
	}

	profile, err := a.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrForbidden
		}
		return err
	}
	if profile.IsAdmin() {
		return nil
	}

	if filter.Column == ownerCol && filter.Value == userID.String() {
		return nil
	}
	if table == entities.TableTicketMessages && filter.Column == "ticket_id" {
		ticketID, err := uuid.Parse(filter.Value)
		if err != nil {
			return errTicketDenied
		}
		allowed, err := a.tickets.CanAccessTicket(ctx, userID, ticketID)
		if err != nil {
			return err
		}
		if !allowed {
			return errTicketDenied
		}
		return nil
	}
	return errFilterRequired
}
