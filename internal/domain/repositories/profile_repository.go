package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"merovian.backend/internal/domain/entities"
)

// ProfileRepository defines profile data operations. Every mutating call
// bumps the row version and returns the stored row.
type ProfileRepository interface {
	Create(ctx context.Context, profile *entities.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Profile, int64, error)
	// UpdateBalance writes balance only if the row is still at
	// expectedVersion, otherwise returns errors.ErrStaleWrite.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, expectedVersion int64) (*entities.Profile, error)
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) (*entities.Profile, error)
	SetKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) (*entities.Profile, error)
	// UpdateKYCStatus is SetKYCStatus guarded by expectedVersion like
	// UpdateBalance.
	UpdateKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus, expectedVersion int64) (*entities.Profile, error)
	Count(ctx context.Context) (int64, error)
	CountByKYCStatus(ctx context.Context, status entities.KYCStatus) (int64, error)
}
