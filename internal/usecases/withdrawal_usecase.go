package usecases

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/domain/repositories"
	"merovian.backend/pkg/logger"
	"merovian.backend/pkg/metrics"
	"merovian.backend/pkg/utils"
)

const WithdrawalSubmittedMessage = "Withdrawal request submitted! It will be processed shortly."

// WithdrawalUsecase creates withdrawal requests.
type WithdrawalUsecase struct {
	uow         repositories.UnitOfWork
	profileRepo repositories.ProfileRepository
	txRepo      repositories.TransactionRepository
	publisher   EventPublisher
	minAmount   decimal.Decimal
}

func NewWithdrawalUsecase(
	uow repositories.UnitOfWork,
	profileRepo repositories.ProfileRepository,
	txRepo repositories.TransactionRepository,
	publisher EventPublisher,
	minAmount decimal.Decimal,
) *WithdrawalUsecase {
	return &WithdrawalUsecase{
		uow:         uow,
		profileRepo: profileRepo,
		txRepo:      txRepo,
		publisher:   publisherOrNoop(publisher),
		minAmount:   minAmount,
	}
}

// Limits exposes the configured minimum to clients.
func (u *WithdrawalUsecase) Limits() entities.WithdrawalLimits {
	return entities.WithdrawalLimits{MinAmount: u.minAmount}
}

// MinimumMessage is the error shown for amounts under the minimum.
func (u *WithdrawalUsecase) MinimumMessage() string {
	return "Minimum withdrawal amount is $" + u.minAmount.StringFixed(2)
}

// Withdraw validates the request against the stored balance, then inserts
// a pending transaction and debits the balance in one unit of work. The
// debit only applies if the profile is still at the version that was read.
func (u *WithdrawalUsecase) Withdraw(ctx context.Context, userID uuid.UUID, input *entities.WithdrawInput) (*entities.WithdrawResult, error) {
	asset, ok := entities.LookupAsset(input.Coin)
	if !ok {
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidInput, "Unsupported coin", domainerrors.ErrUnsupportedAsset)
	}
	if !ValidAddress(asset, input.Address) {
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidInput, "Invalid destination address for "+asset.Chain.Name, domainerrors.ErrInvalidAddress)
	}

	profile, err := u.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Amount.GreaterThan(profile.Balance) {
		metrics.RecordWithdrawal(asset.Code, "rejected")
		return nil, domainerrors.ErrInsufficientFunds
	}
	if input.Amount.LessThan(u.minAmount) {
		metrics.RecordWithdrawal(asset.Code, "rejected")
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeBelowMinimum, u.MinimumMessage(), domainerrors.ErrBelowMinimum)
	}

	tx := &entities.Transaction{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		Type:      entities.TransactionWithdrawal,
		Coin:      asset.Code,
		Amount:    input.Amount,
		Address:   null.StringFrom(NormalizeAddress(asset, input.Address)),
		Status:    entities.TransactionPending,
		CreatedAt: time.Now().UTC(),
	}

	var updated *entities.Profile
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.txRepo.Create(txCtx, tx); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		p, err := u.profileRepo.UpdateBalance(txCtx, userID, profile.Balance.Sub(input.Amount), profile.Version)
		if err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		metrics.RecordWithdrawal(asset.Code, "failed")
		logger.Warn(ctx, "withdrawal not committed",
			zap.String("user_id", userID.String()),
			zap.String("coin", asset.Code),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordWithdrawal(asset.Code, string(entities.TransactionPending))
	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.TransactionChange(tx, entities.ChangeInsert)
	})
	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.ProfileChange(updated, entities.ChangeUpdate)
	})

	logger.Info(ctx, "withdrawal requested",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("coin", asset.Code),
		zap.String("amount", input.Amount.String()),
	)

	return &entities.WithdrawResult{
		Message:     WithdrawalSubmittedMessage,
		Transaction: tx,
		Profile:     updated,
	}, nil
}
