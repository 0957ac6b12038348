package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus represents transaction status
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionRejected  TransactionStatus = "rejected"
)

// Transaction is a deposit or withdrawal record. Rows are append only from
// the application side; status moves are owned by the settlement process.
type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"userId"`
	Type      TransactionType   `json:"type"`
	Coin      string            `json:"coin"`
	Amount    decimal.Decimal   `json:"amount"`
	Address   null.String       `json:"address"`
	Status    TransactionStatus `json:"status"`
	TxHash    null.String       `json:"txHash"`
	CreatedAt time.Time         `json:"createdAt"`
}

// WithdrawInput represents a withdrawal request
type WithdrawInput struct {
	Coin    string          `json:"coin" binding:"required"`
	Address string          `json:"address" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// WithdrawalLimits are the server side bounds a client checks before
// sending a withdrawal.
type WithdrawalLimits struct {
	MinAmount decimal.Decimal `json:"minAmount"`
}

// WithdrawResult is returned after a successful withdrawal request.
type WithdrawResult struct {
	Message     string       `json:"message"`
	Transaction *Transaction `json:"transaction"`
	Profile     *Profile     `json:"profile"`
}
