package xerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
)

// Registration / Login
var (
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRequired      = errors.New("email required")
	ErrPasswordRequired   = errors.New("password required")
	ErrInvalidOTP         = errors.New("invalid or expired code")
	ErrPinNotSet          = errors.New("transaction pin not set")
	ErrInvalidPin         = errors.New("invalid transaction pin")
)

// Accounts / Ledger
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountNumberTaken = errors.New("account number already in use")
	ErrSameAccount        = errors.New("source and destination are the same account")
)

// RestrictedError is the soft hold raised when a restricted user with a
// pending conversion fee attempts a transfer. Callers surface a payment
// prompt instead of a generic failure, so the fee and currency travel with
// the error.
type RestrictedError struct {
	Reason   string
	Fee      decimal.Decimal
	Currency string
}

func (e *RestrictedError) Error() string {
	if e.Fee.IsZero() {
		return "transfers restricted: " + e.Reason
	}
	return fmt.Sprintf("transfers restricted: pending %s %s conversion fee", e.Fee.String(), e.Currency)
}

// AsRestricted unwraps err into a *RestrictedError if it is one.
func AsRestricted(err error) (*RestrictedError, bool) {
	var re *RestrictedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
