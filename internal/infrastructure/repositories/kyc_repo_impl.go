package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/infrastructure/models"
)

// KYCRepository implements KYC details data operations
type KYCRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) *KYCRepository {
	return &KYCRepository{db: db}
}

// Upsert writes the row keyed by user id. CreatedAt survives a resubmission.
func (r *KYCRepository) Upsert(ctx context.Context, d *entities.KYCDetails) (bool, error) {
	db := GetDB(ctx, r.db)
	now := time.Now()

	var existing models.KYCDetails
	err := db.Where("user_id = ?", d.UserID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		m := kycToModel(d)
		m.CreatedAt = now
		m.UpdatedAt = now
		if err := db.Create(m).Error; err != nil {
			return false, err
		}
		d.CreatedAt, d.UpdatedAt = now, now
		return true, nil
	case err != nil:
		return false, err
	}

	result := db.Model(&models.KYCDetails{}).Where("user_id = ?", d.UserID).Updates(map[string]interface{}{
		"full_legal_name":    d.FullLegalName,
		"dob":                d.DOB,
		"id_number":          d.IDNumber,
		"country":            d.Country,
		"address":            d.Address,
		"city":               d.City,
		"postal_code":        d.PostalCode,
		"document_front_url": d.DocumentFrontURL,
		"document_back_url":  d.DocumentBackURL,
		"updated_at":         now,
	})
	if result.Error != nil {
		return false, result.Error
	}
	d.CreatedAt, d.UpdatedAt = existing.CreatedAt, now
	return false, nil
}

func (r *KYCRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.KYCDetails, error) {
	var m models.KYCDetails
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.KYCDetails{
		UserID:           m.UserID,
		FullLegalName:    m.FullLegalName,
		DOB:              m.DOB,
		IDNumber:         m.IDNumber,
		Country:          m.Country,
		Address:          m.Address,
		City:             m.City,
		PostalCode:       m.PostalCode,
		DocumentFrontURL: m.DocumentFrontURL,
		DocumentBackURL:  m.DocumentBackURL,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

func kycToModel(d *entities.KYCDetails) *models.KYCDetails {
	return &models.KYCDetails{
		UserID:           d.UserID,
		FullLegalName:    d.FullLegalName,
		DOB:              d.DOB,
		IDNumber:         d.IDNumber,
		Country:          d.Country,
		Address:          d.Address,
		City:             d.City,
		PostalCode:       d.PostalCode,
		DocumentFrontURL: d.DocumentFrontURL,
		DocumentBackURL:  d.DocumentBackURL,
	}
}
