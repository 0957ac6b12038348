package repositories

import (
	"context"

	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
)

// IdentityRepository defines auth account data operations
type IdentityRepository interface {
	Create(ctx context.Context, identity *entities.Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Identity, error)
	GetByEmail(ctx context.Context, email string) (*entities.Identity, error)
}
