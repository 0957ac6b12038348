package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Role is the profile user_type.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// KYCStatus represents KYC verification status
type KYCStatus string

const (
	KYCUnverified KYCStatus = "unverified"
	KYCPending    KYCStatus = "pending"
	KYCVerified   KYCStatus = "verified"
	KYCRejected   KYCStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s KYCStatus) Valid() bool {
	switch s {
	case KYCUnverified, KYCPending, KYCVerified, KYCRejected:
		return true
	}
	return false
}

// Profile is the per user account row. Version increases by one on every
// write so readers can discard stale change events.
type Profile struct {
	ID           uuid.UUID       `json:"id"`
	Email        string          `json:"email"`
	FullName     null.String     `json:"fullName"`
	Role         Role            `json:"userType"`
	Balance      decimal.Decimal `json:"balance"`
	TotalProfits decimal.Decimal `json:"totalProfits"`
	Performance  decimal.Decimal `json:"performance"`
	ActiveTrades int             `json:"activeTrades"`
	KYCStatus    KYCStatus       `json:"kycStatus"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// NewProfile returns the initial profile for a fresh identity.
func NewProfile(id uuid.UUID, email, fullName string, now time.Time) *Profile {
	p := &Profile{
		ID:           id,
		Email:        email,
		Role:         RoleUser,
		Balance:      decimal.Zero,
		TotalProfits: decimal.Zero,
		Performance:  decimal.Zero,
		KYCStatus:    KYCUnverified,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if fullName != "" {
		p.FullName = null.StringFrom(fullName)
	}
	return p
}

// AdminStats is the dashboard summary.
type AdminStats struct {
	Profiles           int64 `json:"profiles"`
	PendingKYC         int64 `json:"pendingKyc"`
	OpenTickets        int64 `json:"openTickets"`
	PendingWithdrawals int64 `json:"pendingWithdrawals"`
}
