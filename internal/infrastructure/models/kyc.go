package models

import (
	"time"

	"github.com/google/uuid"
)

type KYCDetails struct {
	UserID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullLegalName    string    `gorm:"type:varchar(200);not null"`
	DOB              string    `gorm:"column:dob;type:varchar(20);not null"`
	IDNumber         string    `gorm:"column:id_number;type:varchar(100);not null"`
	Country          string    `gorm:"type:varchar(100);not null"`
	Address          string    `gorm:"type:varchar(300);not null"`
	City             string    `gorm:"type:varchar(100);not null"`
	PostalCode       string    `gorm:"type:varchar(20);not null"`
	DocumentFrontURL string    `gorm:"column:document_front_url;type:text"`
	DocumentBackURL  string    `gorm:"column:document_back_url;type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (KYCDetails) TableName() string { return "kyc_details" }

type StorageObject struct {
	Bucket      string `gorm:"type:varchar(100);primaryKey"`
	Path        string `gorm:"type:varchar(500);primaryKey"`
	ContentType string `gorm:"type:varchar(100);not null"`
	Size        int64  `gorm:"not null"`
	Data        []byte `gorm:"not null"`
	CreatedAt   time.Time
}

func (StorageObject) TableName() string { return "storage_objects" }

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Transaction{},
		&SupportTicket{},
		&TicketMessage{},
		&KYCDetails{},
		&StorageObject{},
		&RealtimeEvent{},
	}
}
