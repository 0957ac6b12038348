package repositories

import (
	"context"

	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
)

// KYCRepository defines KYC details data operations
type KYCRepository interface {
	// Upsert inserts or replaces the row for details.UserID and reports
	// whether a new row was created.
	Upsert(ctx context.Context, details *entities.KYCDetails) (bool, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.KYCDetails, error)
}

// ObjectRepository defines blob storage operations
type ObjectRepository interface {
	Put(ctx context.Context, obj *entities.StoredObject) error
	Get(ctx context.Context, bucket, path string) (*entities.StoredObject, error)
}
