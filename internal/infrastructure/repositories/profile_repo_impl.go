package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/infrastructure/models"
)

// ProfileRepository implements profile data operations
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *entities.Profile) error {
	if p.Version == 0 {
		p.Version = 1
	}
	m := &models.Profile{
		ID:           p.ID,
		Email:        p.Email,
		FullName:     p.FullName.Ptr(),
		UserType:     string(p.Role),
		Balance:      p.Balance,
		TotalProfits: p.TotalProfits,
		Performance:  p.Performance,
		ActiveTrades: p.ActiveTrades,
		KYCStatus:    string(p.KYCStatus),
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	var m models.Profile
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List returns profiles newest first with the total row count.
func (r *ProfileRepository) List(ctx context.Context, limit, offset int) ([]*entities.Profile, int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Profile
	if err := paged(GetDB(ctx, r.db).Order("created_at DESC"), limit, offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.Profile, 0, len(rows))
	for i := range rows {
		items = append(items, r.toEntity(&rows[i]))
	}
	return items, total, nil
}

func (r *ProfileRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, expectedVersion int64) (*entities.Profile, error) {
	return r.updateIfVersion(ctx, id, expectedVersion, map[string]interface{}{"balance": balance})
}

func (r *ProfileRepository) UpdateKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus, expectedVersion int64) (*entities.Profile, error) {
	return r.updateIfVersion(ctx, id, expectedVersion, map[string]interface{}{"kyc_status": string(status)})
}

func (r *ProfileRepository) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) (*entities.Profile, error) {
	return r.update(ctx, id, map[string]interface{}{"balance": balance})
}

func (r *ProfileRepository) SetKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) (*entities.Profile, error) {
	return r.update(ctx, id, map[string]interface{}{"kyc_status": string(status)})
}

func (r *ProfileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Profile{}).Count(&n).Error
	return n, err
}

func (r *ProfileRepository) CountByKYCStatus(ctx context.Context, status entities.KYCStatus) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Profile{}).Where("kyc_status = ?", string(status)).Count(&n).Error
	return n, err
}

func (r *ProfileRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*entities.Profile, error) {
	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = time.Now()

	result := GetDB(ctx, r.db).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// updateIfVersion is update guarded by the row version. A missing row is
// ErrNotFound, a moved one ErrStaleWrite.
func (r *ProfileRepository) updateIfVersion(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]interface{}) (*entities.Profile, error) {
	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = time.Now()

	result := GetDB(ctx, r.db).Model(&models.Profile{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domainerrors.ErrStaleWrite
	}
	return r.GetByID(ctx, id)
}

func (r *ProfileRepository) toEntity(m *models.Profile) *entities.Profile {
	return &entities.Profile{
		ID:           m.ID,
		Email:        m.Email,
		FullName:     null.StringFromPtr(m.FullName),
		Role:         entities.Role(m.UserType),
		Balance:      m.Balance,
		TotalProfits: m.TotalProfits,
		Performance:  m.Performance,
		ActiveTrades: m.ActiveTrades,
		KYCStatus:    entities.KYCStatus(m.KYCStatus),
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
