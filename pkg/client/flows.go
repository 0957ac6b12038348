package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"merovian.backend/internal/domain/entities"
)

// Validation failures raised before any request is sent. The texts match
// the server so either side reads the same.
var (
	// ErrBelowMinimum matches every *MinimumError.
	ErrBelowMinimum        = errors.New("Amount is below the withdrawal minimum")
	ErrInsufficientBalance = errors.New("Insufficient balance")
	ErrMissingDocuments    = errors.New("Please upload both sides of your ID")
	ErrAddressRequired     = errors.New("Please enter a destination address")
	ErrUnknownAsset        = errors.New("Unsupported asset")
	ErrEmptyMessage        = errors.New("Message cannot be empty")
	ErrNotSignedIn         = errors.New("Please sign in first")
)

// MinimumError reports an amount under the server's minimum, worded as
// the server words it.
type MinimumError struct {
	Min decimal.Decimal
}

func (e *MinimumError) Error() string {
	return "Minimum withdrawal amount is $" + e.Min.StringFixed(2)
}

func (e *MinimumError) Is(target error) bool { return target == ErrBelowMinimum }

type flowsAPI interface {
	WithdrawalLimits(ctx context.Context) (*entities.WithdrawalLimits, error)
	Withdraw(ctx context.Context, input entities.WithdrawInput, idempotencyKey string) (*entities.WithdrawResult, error)
	SubmitKYC(ctx context.Context, form entities.KYCForm, front, back UploadFile) (*KYCResult, error)
	CreateTicket(ctx context.Context, input entities.CreateTicketInput) (*CreatedTicket, error)
	PostMessage(ctx context.Context, ticketID uuid.UUID, message string) (*entities.TicketMessage, error)
}

type profileSource interface {
	Profile() *entities.Profile
	Refresh(ctx context.Context)
}

// Flows runs the form driven mutations with the same pre-checks the server
// applies.
type Flows struct {
	api     flowsAPI
	session profileSource

	mu     sync.Mutex
	limits *entities.WithdrawalLimits
}

func NewFlows(api flowsAPI, session profileSource) *Flows {
	return &Flows{api: api, session: session}
}

// MaxWithdrawal is the cached balance, or zero without a profile.
func (f *Flows) MaxWithdrawal() decimal.Decimal {
	if p := f.session.Profile(); p != nil {
		return p.Balance
	}
	return decimal.Zero
}

// Limits fetches the server's withdrawal bounds once and caches them.
func (f *Flows) Limits(ctx context.Context) (*entities.WithdrawalLimits, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limits != nil {
		return f.limits, nil
	}
	limits, err := f.api.WithdrawalLimits(ctx)
	if err != nil {
		return nil, err
	}
	f.limits = limits
	return limits, nil
}

// Withdraw checks the minimum and the cached balance, sends one request and
// refreshes the profile on success.
func (f *Flows) Withdraw(ctx context.Context, coin, address string, amount decimal.Decimal) (*entities.WithdrawResult, error) {
	profile := f.session.Profile()
	if profile == nil {
		return nil, ErrNotSignedIn
	}
	if _, ok := entities.LookupAsset(coin); !ok {
		return nil, ErrUnknownAsset
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	if amount.GreaterThan(profile.Balance) {
		return nil, ErrInsufficientBalance
	}
	limits, err := f.Limits(ctx)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(limits.MinAmount) {
		return nil, &MinimumError{Min: limits.MinAmount}
	}

	result, err := f.api.Withdraw(ctx, entities.WithdrawInput{
		Coin:    strings.ToLower(strings.TrimSpace(coin)),
		Address: address,
		Amount:  amount,
	}, uuid.NewString())
	if err != nil {
		return nil, err
	}
	f.session.Refresh(ctx)
	return result, nil
}

// SubmitKYC refuses to call the API until both document sides are present.
func (f *Flows) SubmitKYC(ctx context.Context, form entities.KYCForm, front, back *UploadFile) (*KYCResult, error) {
	if front == nil || back == nil || len(front.Data) == 0 || len(back.Data) == 0 {
		return nil, ErrMissingDocuments
	}
	result, err := f.api.SubmitKYC(ctx, form, *front, *back)
	if err != nil {
		return nil, err
	}
	f.session.Refresh(ctx)
	return result, nil
}

func (f *Flows) CreateTicket(ctx context.Context, subject, message string) (*CreatedTicket, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if subject == "" || message == "" {
		return nil, ErrEmptyMessage
	}
	return f.api.CreateTicket(ctx, entities.CreateTicketInput{Subject: subject, Message: message})
}

func (f *Flows) SendMessage(ctx context.Context, ticketID uuid.UUID, message string) (*entities.TicketMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	return f.api.PostMessage(ctx, ticketID, message)
}
