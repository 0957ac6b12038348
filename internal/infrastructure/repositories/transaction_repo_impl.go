package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/internal/infrastructure/models"
)

// TransactionRepository implements transaction data operations
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	m := &models.Transaction{
		ID:        tx.ID,
		UserID:    tx.UserID,
		Type:      string(tx.Type),
		Coin:      tx.Coin,
		Amount:    tx.Amount,
		Address:   tx.Address.Ptr(),
		Status:    string(tx.Status),
		TxHash:    tx.TxHash.Ptr(),
		CreatedAt: tx.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// ListByUser returns a user's transactions newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Transaction
	q := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC")
	if err := paged(q, limit, offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.Transaction, 0, len(rows))
	for i := range rows {
		items = append(items, r.toEntity(&rows[i]))
	}
	return items, total, nil
}

func (r *TransactionRepository) CountByTypeAndStatus(ctx context.Context, typ entities.TransactionType, status entities.TransactionStatus) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Where("type = ? AND status = ?", string(typ), string(status)).Count(&n).Error
	return n, err
}

func (r *TransactionRepository) toEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      entities.TransactionType(m.Type),
		Coin:      m.Coin,
		Amount:    m.Amount,
		Address:   null.StringFromPtr(m.Address),
		Status:    entities.TransactionStatus(m.Status),
		TxHash:    null.StringFromPtr(m.TxHash),
		CreatedAt: m.CreatedAt,
	}
}
