package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/usecases"
	"merovian.backend/pkg/utils"
)

type adminFixture struct {
	profiles *MockProfileRepository
	kyc      *MockKYCRepository
	tickets  *MockTicketRepository
	messages *MockTicketMessageRepository
	txs      *MockTransactionRepository
	pub      *recordingPublisher
	uc       *usecases.AdminUsecase
	adminID  uuid.UUID
	userID   uuid.UUID
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		profiles: new(MockProfileRepository),
		kyc:      new(MockKYCRepository),
		tickets:  new(MockTicketRepository),
		messages: new(MockTicketMessageRepository),
		txs:      new(MockTransactionRepository),
		pub:      &recordingPublisher{},
		adminID:  uuid.New(),
		userID:   uuid.New(),
	}
	support := usecases.NewSupportUsecase(new(MockUnitOfWork), f.profiles, f.tickets, f.messages, f.pub)
	f.uc = usecases.NewAdminUsecase(f.profiles, f.kyc, f.tickets, f.txs, support, f.pub)
	f.profiles.On("GetByID", mock.Anything, f.adminID).Return(userProfile(f.adminID, entities.RoleAdmin), nil)
	f.profiles.On("GetByID", mock.Anything, f.userID).Return(userProfile(f.userID, entities.RoleUser), nil)
	return f
}

func TestAdminUsecase_RejectsNonAdmins(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	ghost := uuid.New()
	f.profiles.On("GetByID", ctx, ghost).Return(nil, domainerrors.ErrNotFound)

	for _, actor := range []uuid.UUID{f.userID, ghost} {
		_, err := f.uc.SetBalance(ctx, actor, f.userID, decimal.NewFromInt(1000))
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
		_, err = f.uc.SetKYCStatus(ctx, actor, f.userID, entities.KYCVerified)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
		_, _, err = f.uc.ListProfiles(ctx, actor, 1, 10)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
		_, err = f.uc.GetKYCDetails(ctx, actor, f.userID)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
		_, err = f.uc.ListTickets(ctx, actor)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
		_, err = f.uc.ReplyToTicket(ctx, actor, uuid.New(), &entities.PostMessageInput{Message: "x"})
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
		_, err = f.uc.Stats(ctx, actor)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	}
	f.profiles.AssertNotCalled(t, "SetBalance", mock.Anything, mock.Anything, mock.Anything)
	f.profiles.AssertNotCalled(t, "SetKYCStatus", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.pub.tables())
}

func TestAdminUsecase_SetBalance(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	updated := userProfile(f.userID, entities.RoleUser)
	updated.Balance = decimal.NewFromInt(500)
	updated.Version = 2
	f.profiles.On("SetBalance", ctx, f.userID, decimalEq("500")).Return(updated, nil)

	p, err := f.uc.SetBalance(ctx, f.adminID, f.userID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Version)
	assert.Equal(t, []string{"profiles:UPDATE"}, f.pub.tables())

	_, err = f.uc.SetBalance(ctx, f.adminID, f.userID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestAdminUsecase_SetKYCStatus(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	verified := userProfile(f.userID, entities.RoleUser)
	verified.KYCStatus = entities.KYCVerified
	f.profiles.On("SetKYCStatus", ctx, f.userID, entities.KYCVerified).Return(verified, nil)

	p, err := f.uc.SetKYCStatus(ctx, f.adminID, f.userID, entities.KYCVerified)
	require.NoError(t, err)
	assert.Equal(t, entities.KYCVerified, p.KYCStatus)

	_, err = f.uc.SetKYCStatus(ctx, f.adminID, f.userID, "approved")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	missing := uuid.New()
	f.profiles.On("SetKYCStatus", ctx, missing, entities.KYCRejected).Return(nil, domainerrors.ErrNotFound)
	_, err = f.uc.SetKYCStatus(ctx, f.adminID, missing, entities.KYCRejected)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAdminUsecase_ListProfiles(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	f.profiles.On("List", ctx, 2, 2).Return([]*entities.Profile{userProfile(uuid.New(), entities.RoleUser)}, int64(5), nil)

	items, meta, err := f.uc.ListProfiles(ctx, f.adminID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(5), meta.TotalCount)
	assert.Equal(t, 3, meta.TotalPages)
}

func TestAdminUsecase_ListProfilesWithoutLimitReturnsAll(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	n := utils.MaxPageLimit * 2
	all := make([]*entities.Profile, 0, n)
	for i := 0; i < n; i++ {
		all = append(all, userProfile(uuid.New(), entities.RoleUser))
	}
	f.profiles.On("List", ctx, 0, 0).Return(all, int64(n), nil)

	items, meta, err := f.uc.ListProfiles(ctx, f.adminID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, n)
	assert.Equal(t, 1, meta.TotalPages)
	assert.Equal(t, int64(n), meta.TotalCount)
	f.profiles.AssertCalled(t, "List", ctx, 0, 0)
}

func TestAdminUsecase_TicketsAndReplies(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	ticketID := uuid.New()
	ticket := &entities.SupportTicket{ID: ticketID, UserID: f.userID}
	f.tickets.On("ListAll", ctx).Return([]*entities.SupportTicket{ticket}, nil)
	f.tickets.On("GetByID", ctx, ticketID).Return(ticket, nil)
	f.messages.On("ListByTicket", ctx, ticketID).Return([]*entities.TicketMessage{}, nil)
	f.messages.On("Create", ctx, mock.Anything).Return(nil)

	list, err := f.uc.ListTickets(ctx, f.adminID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.uc.ListTicketMessages(ctx, f.adminID, ticketID)
	require.NoError(t, err)

	msg, err := f.uc.ReplyToTicket(ctx, f.adminID, ticketID, &entities.PostMessageInput{Message: "Resolved"})
	require.NoError(t, err)
	assert.Equal(t, f.adminID, msg.SenderID)
}

func TestAdminUsecase_StatsAndKYCDetails(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	f.profiles.On("Count", ctx).Return(int64(10), nil)
	f.profiles.On("CountByKYCStatus", ctx, entities.KYCPending).Return(int64(3), nil)
	f.tickets.On("CountByStatus", ctx, entities.TicketOpen).Return(int64(2), nil)
	f.txs.On("CountByTypeAndStatus", ctx, entities.TransactionWithdrawal, entities.TransactionPending).Return(int64(4), nil)
	f.kyc.On("GetByUserID", ctx, f.userID).Return(&entities.KYCDetails{UserID: f.userID}, nil)

	stats, err := f.uc.Stats(ctx, f.adminID)
	require.NoError(t, err)
	assert.Equal(t, entities.AdminStats{Profiles: 10, PendingKYC: 3, OpenTickets: 2, PendingWithdrawals: 4}, *stats)

	d, err := f.uc.GetKYCDetails(ctx, f.adminID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, f.userID, d.UserID)
}
