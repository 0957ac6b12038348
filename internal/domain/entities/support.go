package entities

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents a support ticket status
type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

// SupportTicket is a support conversation header.
type SupportTicket struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"userId"`
	Subject   string       `json:"subject"`
	Status    TicketStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}

// TicketMessage is one message in a ticket thread.
type TicketMessage struct {
	ID        uuid.UUID `json:"id"`
	TicketID  uuid.UUID `json:"ticketId"`
	SenderID  uuid.UUID `json:"senderId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateTicketInput represents input for opening a ticket
type CreateTicketInput struct {
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// PostMessageInput represents a reply in a ticket thread
type PostMessageInput struct {
	Message string `json:"message" binding:"required,max=5000"`
}

// TicketWithMessage is returned when a ticket is opened.
type TicketWithMessage struct {
	Ticket  *SupportTicket `json:"ticket"`
	Message *TicketMessage `json:"message"`
}
