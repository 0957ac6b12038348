package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"merovian.backend/internal/domain/entities"
)

type flowsAPIStub struct {
	withdrawFn func(ctx context.Context, input entities.WithdrawInput, key string) (*entities.WithdrawResult, error)
	kycFn      func(ctx context.Context, form entities.KYCForm, front, back UploadFile) (*KYCResult, error)
	ticketFn   func(ctx context.Context, input entities.CreateTicketInput) (*CreatedTicket, error)
	postFn     func(ctx context.Context, ticketID uuid.UUID, message string) (*entities.TicketMessage, error)
	minAmount  decimal.Decimal
	limitsErr  error
	calls      int
	limitCalls int
}

func (s *flowsAPIStub) WithdrawalLimits(context.Context) (*entities.WithdrawalLimits, error) {
	s.limitCalls++
	if s.limitsErr != nil {
		return nil, s.limitsErr
	}
	if s.minAmount.IsZero() {
		return &entities.WithdrawalLimits{MinAmount: decimal.NewFromInt(10)}, nil
	}
	return &entities.WithdrawalLimits{MinAmount: s.minAmount}, nil
}

func (s *flowsAPIStub) Withdraw(ctx context.Context, input entities.WithdrawInput, key string) (*entities.WithdrawResult, error) {
	s.calls++
	return s.withdrawFn(ctx, input, key)
}

func (s *flowsAPIStub) SubmitKYC(ctx context.Context, form entities.KYCForm, front, back UploadFile) (*KYCResult, error) {
	s.calls++
	return s.kycFn(ctx, form, front, back)
}

func (s *flowsAPIStub) CreateTicket(ctx context.Context, input entities.CreateTicketInput) (*CreatedTicket, error) {
	s.calls++
	return s.ticketFn(ctx, input)
}

func (s *flowsAPIStub) PostMessage(ctx context.Context, ticketID uuid.UUID, message string) (*entities.TicketMessage, error) {
	s.calls++
	return s.postFn(ctx, ticketID, message)
}

type profileSourceStub struct {
	profile   *entities.Profile
	refreshes int
}

func (p *profileSourceStub) Profile() *entities.Profile { return p.profile }

func (p *profileSourceStub) Refresh(context.Context) { p.refreshes++ }

func fundedProfile(balance int64) *entities.Profile {
	p := entities.NewProfile(uuid.New(), "ann@example.com", "", time.Now())
	p.Balance = decimal.NewFromInt(balance)
	return p
}

func TestFlows_WithdrawPrechecks(t *testing.T) {
	cases := []struct {
		name    string
		profile *entities.Profile
		coin    string
		address string
		amount  int64
		want    error
	}{
		{"signed out", nil, "btc", "bc1q", 20, ErrNotSignedIn},
		{"unknown asset", fundedProfile(100), "doge", "D8x", 20, ErrUnknownAsset},
		{"blank address", fundedProfile(100), "btc", "  ", 20, ErrAddressRequired},
		{"over balance", fundedProfile(100), "btc", "bc1q", 150, ErrInsufficientBalance},
		{"over balance and under minimum", fundedProfile(5), "btc", "bc1q", 6, ErrInsufficientBalance},
		{"under minimum", fundedProfile(100), "btc", "bc1q", 5, ErrBelowMinimum},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &flowsAPIStub{}
			src := &profileSourceStub{profile: tc.profile}
			_, err := NewFlows(api, src).Withdraw(context.Background(), tc.coin, tc.address, decimal.NewFromInt(tc.amount))
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 0, api.calls)
			assert.Equal(t, 0, src.refreshes)
		})
	}
}

func TestFlows_WithdrawUsesServerMinimum(t *testing.T) {
	sent := 0
	api := &flowsAPIStub{
		minAmount: decimal.RequireFromString("25"),
		withdrawFn: func(context.Context, entities.WithdrawInput, string) (*entities.WithdrawResult, error) {
			sent++
			return &entities.WithdrawResult{Message: "Withdrawal request submitted"}, nil
		},
	}
	flows := NewFlows(api, &profileSourceStub{profile: fundedProfile(100)})

	_, err := flows.Withdraw(context.Background(), "btc", "bc1q", decimal.NewFromInt(20))
	assert.ErrorIs(t, err, ErrBelowMinimum)
	assert.EqualError(t, err, "Minimum withdrawal amount is $25.00")
	assert.Zero(t, sent)

	_, err = flows.Withdraw(context.Background(), "btc", "bc1q", decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, api.limitCalls, "limits are fetched once")
}

func TestFlows_WithdrawLimitsUnavailable(t *testing.T) {
	api := &flowsAPIStub{limitsErr: &APIError{Status: 503, Message: "Service unavailable"}}
	_, err := NewFlows(api, &profileSourceStub{profile: fundedProfile(100)}).
		Withdraw(context.Background(), "btc", "bc1q", decimal.NewFromInt(50))
	assert.EqualError(t, err, "Service unavailable")
	assert.Equal(t, 0, api.calls)
}

func TestFlows_WithdrawSendsAndRefreshes(t *testing.T) {
	var got entities.WithdrawInput
	var key string
	api := &flowsAPIStub{
		withdrawFn: func(_ context.Context, input entities.WithdrawInput, k string) (*entities.WithdrawResult, error) {
			got, key = input, k
			return &entities.WithdrawResult{Message: "Withdrawal request submitted"}, nil
		},
	}
	src := &profileSourceStub{profile: fundedProfile(100)}
	flows := NewFlows(api, src)
	assert.True(t, decimal.NewFromInt(100).Equal(flows.MaxWithdrawal()))

	res, err := flows.Withdraw(context.Background(), " BTC ", " bc1qxy ", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "Withdrawal request submitted", res.Message)
	assert.Equal(t, "btc", got.Coin)
	assert.Equal(t, "bc1qxy", got.Address)
	assert.NotEmpty(t, key)
	assert.Equal(t, 1, src.refreshes)
}

func TestFlows_WithdrawServerErrorSkipsRefresh(t *testing.T) {
	api := &flowsAPIStub{
		withdrawFn: func(context.Context, entities.WithdrawInput, string) (*entities.WithdrawResult, error) {
			return nil, &APIError{Status: 400, Message: "Insufficient balance"}
		},
	}
	src := &profileSourceStub{profile: fundedProfile(100)}
	_, err := NewFlows(api, src).Withdraw(context.Background(), "eth", "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", decimal.NewFromInt(50))
	require.Error(t, err)
	assert.Equal(t, "Insufficient balance", err.Error())
	assert.Equal(t, 0, src.refreshes)
}

func TestFlows_SubmitKYC(t *testing.T) {
	api := &flowsAPIStub{
		kycFn: func(context.Context, entities.KYCForm, UploadFile, UploadFile) (*KYCResult, error) {
			return &KYCResult{Message: "KYC submitted. Your documents are pending review."}, nil
		},
	}
	src := &profileSourceStub{profile: fundedProfile(0)}
	flows := NewFlows(api, src)
	doc := &UploadFile{Name: "id.png", Data: []byte("x")}

	_, err := flows.SubmitKYC(context.Background(), entities.KYCForm{}, doc, nil)
	assert.ErrorIs(t, err, ErrMissingDocuments)
	_, err = flows.SubmitKYC(context.Background(), entities.KYCForm{}, doc, &UploadFile{Name: "empty.png"})
	assert.ErrorIs(t, err, ErrMissingDocuments)
	assert.Equal(t, 0, api.calls)

	res, err := flows.SubmitKYC(context.Background(), entities.KYCForm{FullLegalName: "Ann"}, doc, doc)
	require.NoError(t, err)
	assert.Contains(t, res.Message, "pending review")
	assert.Equal(t, 1, src.refreshes)
}

func TestFlows_Tickets(t *testing.T) {
	ticketID := uuid.New()
	api := &flowsAPIStub{
		ticketFn: func(_ context.Context, in entities.CreateTicketInput) (*CreatedTicket, error) {
			return &CreatedTicket{Ticket: &entities.SupportTicket{ID: ticketID, Subject: in.Subject}}, nil
		},
		postFn: func(_ context.Context, id uuid.UUID, message string) (*entities.TicketMessage, error) {
			if id != ticketID {
				return nil, errors.New("wrong ticket")
			}
			return &entities.TicketMessage{TicketID: id, Message: message}, nil
		},
	}
	flows := NewFlows(api, &profileSourceStub{})

	_, err := flows.CreateTicket(context.Background(), "Help", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = flows.SendMessage(context.Background(), ticketID, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, api.calls)

	created, err := flows.CreateTicket(context.Background(), " Help ", "My deposit is missing")
	require.NoError(t, err)
	assert.Equal(t, "Help", created.Ticket.Subject)

	msg, err := flows.SendMessage(context.Background(), ticketID, " any update? ")
	require.NoError(t, err)
	assert.Equal(t, "any update?", msg.Message)
}
