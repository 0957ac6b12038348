package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the auth identity row.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

type Profile struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Email        string          `gorm:"type:varchar(255);not null;index"`
	FullName     *string         `gorm:"type:varchar(200)"`
	UserType     string          `gorm:"type:varchar(20);not null;default:'user'"`
	Balance      decimal.Decimal `gorm:"type:numeric(36,18);not null;default:0"`
	TotalProfits decimal.Decimal `gorm:"type:numeric(36,18);not null;default:0"`
	Performance  decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0"`
	ActiveTrades int             `gorm:"not null;default:0"`
	KYCStatus    string          `gorm:"column:kyc_status;type:varchar(20);not null;default:'unverified';index"`
	Version      int64           `gorm:"not null;default:1"`
	CreatedAt    time.Time       `gorm:"index"`
	UpdatedAt    time.Time
}

func (Profile) TableName() string { return "profiles" }
