package models

import (
	"time"

	"github.com/google/uuid"
)

type SupportTicket struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Subject   string    `gorm:"type:varchar(200);not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'open';index"`
	CreatedAt time.Time `gorm:"index"`
}

func (SupportTicket) TableName() string { return "support_tickets" }

type TicketMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TicketID  uuid.UUID `gorm:"type:uuid;not null;index:idx_ticket_messages_ticket_created,priority:1"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null"`
	Message   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_ticket_messages_ticket_created,priority:2"`
}

func (TicketMessage) TableName() string { return "ticket_messages" }
