package entities

import (
	"encoding/json"
	"time"
)

// Row store tables that emit change events.
const (
	TableProfiles       = "profiles"
	TableTransactions   = "transactions"
	TableSupportTickets = "support_tickets"
	TableTicketMessages = "ticket_messages"
	TableKYCDetails     = "kyc_details"
)

// ChangeType is the kind of row change.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	// ChangeAll matches both in a subscription.
	ChangeAll ChangeType = "*"
)

// ChangeEvent is a committed row change. Columns holds the filterable
// column values of the row (id, user_id, ticket_id, ...).
type ChangeEvent struct {
	Table           string            `json:"table"`
	Type            ChangeType        `json:"type"`
	Record          json.RawMessage   `json:"record"`
	Columns         map[string]string `json:"columns"`
	CommitTimestamp time.Time         `json:"commitTimestamp"`
}

// NewChangeEvent marshals record into an event.
func NewChangeEvent(table string, typ ChangeType, record interface{}, columns map[string]string) (ChangeEvent, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return ChangeEvent{}, err
	}
	return ChangeEvent{
		Table:           table,
		Type:            typ,
		Record:          raw,
		Columns:         columns,
		CommitTimestamp: time.Now().UTC(),
	}, nil
}

// ProfileChange builds the event for a profile write.
func ProfileChange(p *Profile, typ ChangeType) (ChangeEvent, error) {
	return NewChangeEvent(TableProfiles, typ, p, map[string]string{"id": p.ID.String()})
}

// TransactionChange builds the event for a transaction write.
func TransactionChange(tx *Transaction, typ ChangeType) (ChangeEvent, error) {
	return NewChangeEvent(TableTransactions, typ, tx, map[string]string{
		"id":      tx.ID.String(),
		"user_id": tx.UserID.String(),
	})
}

// TicketChange builds the event for a ticket write.
func TicketChange(t *SupportTicket, typ ChangeType) (ChangeEvent, error) {
	return NewChangeEvent(TableSupportTickets, typ, t, map[string]string{
		"id":      t.ID.String(),
		"user_id": t.UserID.String(),
	})
}

// MessageChange builds the event for a new ticket message. owner is the
// ticket owner, used for authorization of unfiltered subscriptions.
func MessageChange(m *TicketMessage, owner string) (ChangeEvent, error) {
	return NewChangeEvent(TableTicketMessages, ChangeInsert, m, map[string]string{
		"id":        m.ID.String(),
		"ticket_id": m.TicketID.String(),
		"sender_id": m.SenderID.String(),
		"owner_id":  owner,
	})
}

// KYCChange builds the event for a KYC details upsert.
func KYCChange(k *KYCDetails, typ ChangeType) (ChangeEvent, error) {
	return NewChangeEvent(TableKYCDetails, typ, k, map[string]string{"user_id": k.UserID.String()})
}
