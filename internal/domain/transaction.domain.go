package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is a closed set. Each type has its own required fields,
// enforced by the constructors below and by Validate; ad-hoc optional-field
// combinations are not representable.
type TransactionType string

const (
	TransactionTypeDebit    TransactionType = "debit"
	TransactionTypeCredit   TransactionType = "credit"
	TransactionTypeTransfer TransactionType = "transfer"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Counterparty identifies both sides of a transfer leg.
type Counterparty struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	FromName    string `json:"from_name"`
	ToName      string `json:"to_name"`
}

// Transaction is one immutable ledger record. Amounts are signed: credits
// positive, debits negative. Balance is the resulting snapshot the caller
// observed when the record was created.
type Transaction struct {
	ID               string            `json:"id"`
	AccountID        string            `json:"account_id"`
	Type             TransactionType   `json:"type"`
	Amount           decimal.Decimal   `json:"amount"`
	Currency         string            `json:"currency,omitempty"`
	Description      string            `json:"description"`
	Balance          decimal.Decimal   `json:"balance"`
	Status           TransactionStatus `json:"status"`
	ReceiptNumber    string            `json:"receipt_number,omitempty"`
	ConfirmationCode string            `json:"confirmation_code,omitempty"`
	Counterparty     *Counterparty     `json:"counterparty,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

var (
	ErrZeroAmount          = errors.New("transaction amount must be non-zero")
	ErrWrongSign           = errors.New("transaction amount has the wrong sign for its type")
	ErrMissingCounterparty = errors.New("transfer leg requires counterparty details")
)

// NewCredit builds a completed credit record. amount must be positive.
func NewCredit(accountID string, amount, balance decimal.Decimal, currency, description string) *Transaction {
	return &Transaction{
		AccountID:   accountID,
		Type:        TransactionTypeCredit,
		Amount:      amount,
		Currency:    currency,
		Description: description,
		Balance:     balance,
		Status:      StatusCompleted,
	}
}

// NewDebit builds a completed debit record. amount is given positive and
// stored negative.
func NewDebit(accountID string, amount, balance decimal.Decimal, currency, description string) *Transaction {
	return &Transaction{
		AccountID:   accountID,
		Type:        TransactionTypeDebit,
		Amount:      amount.Neg(),
		Currency:    currency,
		Description: description,
		Balance:     balance,
		Status:      StatusCompleted,
	}
}

// NewTransferLeg builds one half of a transfer. debit controls the sign;
// both legs of a resolved transfer carry the same receipt number, assigned
// by the orchestrator before appending.
func NewTransferLeg(accountID string, debit bool, amount, balance decimal.Decimal, currency, description string, cp Counterparty) *Transaction {
	signed := amount
	if debit {
		signed = amount.Neg()
	}
	return &Transaction{
		AccountID:    accountID,
		Type:         TransactionTypeTransfer,
		Amount:       signed,
		Currency:     currency,
		Description:  description,
		Balance:      balance,
		Status:       StatusCompleted,
		Counterparty: &cp,
	}
}

// Pending marks the record pending; used for external transfers and check
// deposits whose settlement never happens inside the simulation.
func (t *Transaction) Pending() *Transaction {
	t.Status = StatusPending
	return t
}

// Validate enforces the per-type required fields.
func (t *Transaction) Validate() error {
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	switch t.Type {
	case TransactionTypeCredit:
		if t.Amount.IsNegative() {
			return ErrWrongSign
		}
	case TransactionTypeDebit:
		if t.Amount.IsPositive() {
			return ErrWrongSign
		}
	case TransactionTypeTransfer:
		if t.Counterparty == nil {
			return ErrMissingCounterparty
		}
	default:
		return errors.New("unknown transaction type: " + string(t.Type))
	}
	return nil
}
