package usecases

import (
	"context"

	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/internal/domain/repositories"
	"merovian.backend/pkg/utils"
)

// ProfileUsecase serves the caller's own rows.
type ProfileUsecase struct {
	profileRepo repositories.ProfileRepository
	txRepo      repositories.TransactionRepository
}

func NewProfileUsecase(profileRepo repositories.ProfileRepository, txRepo repositories.TransactionRepository) *ProfileUsecase {
	return &ProfileUsecase{profileRepo: profileRepo, txRepo: txRepo}
}

// GetProfile returns the caller's profile or ErrNotFound.
func (u *ProfileUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	return u.profileRepo.GetByID(ctx, userID)
}

// ListTransactions returns the caller's transactions newest first.
func (u *ProfileUsecase) ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Transaction, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	items, total, err := u.txRepo.ListByUser(ctx, userID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return items, utils.CalculateMeta(total, params), nil
}
