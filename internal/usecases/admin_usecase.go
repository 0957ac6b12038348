package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/domain/repositories"
	"merovian.backend/pkg/logger"
	"merovian.backend/pkg/metrics"
	"merovian.backend/pkg/utils"
)

// AdminUsecase holds privileged operations. Every call re-reads the actor's
// role from the profiles row; a token claim alone is never trusted.
type AdminUsecase struct {
	profileRepo repositories.ProfileRepository
	kycRepo     repositories.KYCRepository
	ticketRepo  repositories.TicketRepository
	txRepo      repositories.TransactionRepository
	support     *SupportUsecase
	publisher   EventPublisher
}

func NewAdminUsecase(
	profileRepo repositories.ProfileRepository,
	kycRepo repositories.KYCRepository,
	ticketRepo repositories.TicketRepository,
	txRepo repositories.TransactionRepository,
	support *SupportUsecase,
	publisher EventPublisher,
) *AdminUsecase {
	return &AdminUsecase{
		profileRepo: profileRepo,
		kycRepo:     kycRepo,
		ticketRepo:  ticketRepo,
		txRepo:      txRepo,
		support:     support,
		publisher:   publisherOrNoop(publisher),
	}
}

func (u *AdminUsecase) requireAdmin(ctx context.Context, actorID uuid.UUID) error {
	actor, err := u.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrForbidden
		}
		return err
	}
	if !actor.IsAdmin() {
		logger.Warn(ctx, "non admin attempted privileged call", zap.String("user_id", actorID.String()))
		return domainerrors.ErrForbidden
	}
	return nil
}

// ListProfiles returns profiles newest first.
func (u *AdminUsecase) ListProfiles(ctx context.Context, actorID uuid.UUID, page, limit int) ([]*entities.Profile, utils.PaginationMeta, error) {
	if err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	params := utils.GetPaginationParams(page, limit)
	items, total, err := u.profileRepo.List(ctx, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return items, utils.CalculateMeta(total, params), nil
}

// SetBalance overwrites a profile balance.
func (u *AdminUsecase) SetBalance(ctx context.Context, actorID, profileID uuid.UUID, balance decimal.Decimal) (*entities.Profile, error) {
	if err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if balance.IsNegative() {
		return nil, domainerrors.BadRequest("Balance must not be negative")
	}
	updated, err := u.profileRepo.SetBalance(ctx, profileID, balance)
	if err != nil {
		return nil, fmt.Errorf("set balance: %w", err)
	}
	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.ProfileChange(updated, entities.ChangeUpdate)
	})
	logger.Info(ctx, "admin updated balance",
		zap.String("admin_id", actorID.String()),
		zap.String("profile_id", profileID.String()),
		zap.String("balance", balance.String()),
	)
	return updated, nil
}

// SetKYCStatus records a review decision.
func (u *AdminUsecase) SetKYCStatus(ctx context.Context, actorID, profileID uuid.UUID, status entities.KYCStatus) (*entities.Profile, error) {
	if err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domainerrors.BadRequest("Invalid KYC status")
	}
	updated, err := u.profileRepo.SetKYCStatus(ctx, profileID, status)
	if err != nil {
		return nil, fmt.Errorf("set kyc status: %w", err)
	}
	metrics.RecordKYC(string(status))
	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.ProfileChange(updated, entities.ChangeUpdate)
	})
	logger.Info(ctx, "admin updated kyc status",
		zap.String("admin_id", actorID.String()),
		zap.String("profile_id", profileID.String()),
		zap.String("status", string(status)),
	)
	return updated, nil
}

func (u *AdminUsecase) GetKYCDetails(ctx context.Context, actorID, profileID uuid.UUID) (*entities.KYCDetails, error) {
	if err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return u.kycRepo.GetByUserID(ctx, profileID)
}

// ListTickets returns every ticket newest first.
func (u *AdminUsecase) ListTickets(ctx context.Context, actorID uuid.UUID) ([]*entities.SupportTicket, error) {
	if err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return u.ticketRepo.ListAll(ctx)
}

func (u *AdminUsecase) ListTicketMessages(ctx context.Context, actorID, ticketID uuid.UUID) ([]*entities.TicketMessage, error) {
	if err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return u.support.ListMessages(ctx, actorID, ticketID)
}

func (u *AdminUsecase) ReplyToTicket(ctx context.Context, actorID, ticketID uuid.UUID, input *entities.PostMessageInput) (*entities.TicketMessage, error) {
	if err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return u.support.PostMessage(ctx, actorID, ticketID, input)
}

// Stats returns dashboard counters.
func (u *AdminUsecase) Stats(ctx context.Context, actorID uuid.UUID) (*entities.AdminStats, error) {
	if err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	var (
		stats entities.AdminStats
		err   error
	)
	if stats.Profiles, err = u.profileRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.PendingKYC, err = u.profileRepo.CountByKYCStatus(ctx, entities.KYCPending); err != nil {
		return nil, err
	}
	if stats.OpenTickets, err = u.ticketRepo.CountByStatus(ctx, entities.TicketOpen); err != nil {
		return nil, err
	}
	if stats.PendingWithdrawals, err = u.txRepo.CountByTypeAndStatus(ctx, entities.TransactionWithdrawal, entities.TransactionPending); err != nil {
		return nil, err
	}
	return &stats, nil
}
