package repositories

import (
	"context"

	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
)

// TransactionRepository defines transaction data operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, int64, error)
	CountByTypeAndStatus(ctx context.Context, typ entities.TransactionType, status entities.TransactionStatus) (int64, error)
}
