package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the kind of account a user holds.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
)

// Account is a single balance container owned by a user. Balances are signed
// decimals tagged with the owning user's currency; every mutation goes
// through the registry's balance choke point.
type Account struct {
	ID            string          `json:"id"`
	Type          AccountType     `json:"type"`
	AccountNumber string          `json:"account_number"`
	RoutingNumber string          `json:"routing_number"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Name          string          `json:"name"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Profile holds the optional self-service profile fields.
type Profile struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	SSN     string `json:"ssn,omitempty"`
}

// ConversionFee is the pending fee attached to a soft transfer hold.
type ConversionFee struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// User is a registry entry. Users are created at registration or seed time;
// the only removal path is the rollback of a failed registration.
type User struct {
	ID                   string         `json:"id"`
	Email                string         `json:"email"`
	Name                 string         `json:"name"`
	Phone                string         `json:"phone"`
	Profile              Profile        `json:"profile"`
	Currency             string         `json:"currency,omitempty"`
	Accounts             []*Account     `json:"accounts"`
	IsAdmin              bool           `json:"is_admin,omitempty"`
	TransferRestricted   bool           `json:"transfer_restricted,omitempty"`
	HasSetPin            bool           `json:"has_set_pin,omitempty"`
	PendingConversionFee *ConversionFee `json:"pending_conversion_fee,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
}

// AccountByID returns the user's account with the given id, or nil.
func (u *User) AccountByID(accountID string) *Account {
	for _, a := range u.Accounts {
		if a.ID == accountID {
			return a
		}
	}
	return nil
}

// Clone returns a deep copy so registry internals never leak to callers.
func (u *User) Clone() *User {
	cp := *u
	cp.Accounts = make([]*Account, len(u.Accounts))
	for i, a := range u.Accounts {
		ac := *a
		cp.Accounts[i] = &ac
	}
	if u.PendingConversionFee != nil {
		fee := *u.PendingConversionFee
		cp.PendingConversionFee = &fee
	}
	return &cp
}

// Restriction is the explicit outcome of a transfer-restriction check.
// Exactly one of the three kinds applies.
type Restriction struct {
	Kind     RestrictionKind `json:"kind"`
	Reason   string          `json:"reason,omitempty"`
	Fee      decimal.Decimal `json:"fee,omitempty"`
	Currency string          `json:"currency,omitempty"`
}

type RestrictionKind string

const (
	RestrictionNone    RestrictionKind = "unrestricted"
	RestrictionHard    RestrictionKind = "restricted"
	RestrictionWithFee RestrictionKind = "restricted_pending_fee"
)

func Unrestricted() Restriction {
	return Restriction{Kind: RestrictionNone}
}

func RestrictedHard(reason string) Restriction {
	return Restriction{Kind: RestrictionHard, Reason: reason}
}

func RestrictedWithFee(fee decimal.Decimal, currency string) Restriction {
	return Restriction{Kind: RestrictionWithFee, Fee: fee, Currency: currency}
}

// Allowed reports whether a transfer may proceed.
func (r Restriction) Allowed() bool { return r.Kind == RestrictionNone }
