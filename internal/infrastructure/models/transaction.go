package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_user_created,priority:1"`
	Type      string          `gorm:"type:varchar(20);not null"`
	Coin      string          `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(36,18);not null"`
	Address   *string         `gorm:"type:varchar(255)"`
	Status    string          `gorm:"type:varchar(20);not null;index"`
	TxHash    *string         `gorm:"type:varchar(255)"`
	CreatedAt time.Time       `gorm:"index:idx_transactions_user_created,priority:2"`
}

func (Transaction) TableName() string { return "transactions" }
