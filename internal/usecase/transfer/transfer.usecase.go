// Package transfer sequences the supported money-movement operations: a
// validation pass, a restriction check, a debit leg, an optional credit leg,
// and simulated email alerts. Every operation is synchronous and
// single-attempt; validation failures perform no writes.
package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bank-service/internal/domain"
	"bank-service/internal/notifier"
	"bank-service/internal/pkg/id"
	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecipientDetails describes an external transfer destination. Nothing is
// resolved against the registry; the funds conceptually leave the ledger.
type RecipientDetails struct {
	RecipientName  string `json:"recipient_name"`
	BankName       string `json:"bank_name"`
	AccountNumber  string `json:"account_number"`
	RoutingNumber  string `json:"routing_number,omitempty"`
	RecipientEmail string `json:"recipient_email,omitempty"`
}

// Result reports the legs an operation posted. Credit is nil when the
// destination did not resolve inside the registry.
type Result struct {
	ReceiptNumber string              `json:"receipt_number"`
	Debit         *domain.Transaction `json:"debit"`
	Credit        *domain.Transaction `json:"credit,omitempty"`
	External      bool                `json:"external,omitempty"`
}

// Service is the transfer orchestrator. One mutex serializes all money
// movement: the read-modify-write on balances would otherwise lose updates
// under concurrent requests.
type Service struct {
	mu       sync.Mutex
	registry *repository.RegistryRepository
	ledger   *repository.LedgerRepository
	notifier notifier.Notifier
	logger   *zap.Logger

	// Simulated processing time before legs post. A single bounded,
	// context-aware wait; no retry.
	processingDelay time.Duration
}

func NewService(
	registry *repository.RegistryRepository,
	ledger *repository.LedgerRepository,
	n notifier.Notifier,
	logger *zap.Logger,
	processingDelay time.Duration,
) *Service {
	return &Service{
		registry:        registry,
		ledger:          ledger,
		notifier:        n,
		logger:          logger,
		processingDelay: processingDelay,
	}
}

// CheckRestrictions reports the acting user's transfer hold state as an
// explicit variant rather than a bag of optional fields.
func (s *Service) CheckRestrictions(ctx context.Context, userID string) (domain.Restriction, error) {
	user, err := s.registry.GetByID(userID)
	if err != nil {
		return domain.Restriction{}, err
	}
	return restrictionOf(user), nil
}

func restrictionOf(u *domain.User) domain.Restriction {
	if !u.TransferRestricted {
		return domain.Unrestricted()
	}
	if u.PendingConversionFee != nil {
		return domain.RestrictedWithFee(u.PendingConversionFee.Amount, u.PendingConversionFee.Currency)
	}
	return domain.RestrictedHard("account under review")
}

// restrictionErr converts a non-allowed restriction into the error the
// caller surfaces: the fee variant carries fee and currency so the UI can
// prompt for payment instead of showing a generic failure.
func restrictionErr(r domain.Restriction) error {
	switch r.Kind {
	case domain.RestrictionWithFee:
		return &xerrors.RestrictedError{Fee: r.Fee, Currency: r.Currency}
	case domain.RestrictionHard:
		return &xerrors.RestrictedError{Reason: r.Reason}
	}
	return nil
}

// TransferInternal moves funds between two accounts of the same user. Both
// legs always post together; the only failure paths are the pre-checks.
func (s *Service) TransferInternal(ctx context.Context, userID, fromAccountID, toAccountID string, amount decimal.Decimal, memo string) (*Result, error) {
	if fromAccountID == toAccountID {
		return nil, xerrors.ErrSameAccount
	}
	if err := s.processingWait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, from, err := s.validateSource(userID, fromAccountID, amount)
	if err != nil {
		return nil, err
	}
	to := user.AccountByID(toAccountID)
	if to == nil {
		return nil, xerrors.ErrInvalidAccount
	}

	receipt := id.ReceiptNumber()
	cp := domain.Counterparty{
		FromAccount: from.AccountNumber,
		ToAccount:   to.AccountNumber,
		FromName:    from.Name,
		ToName:      to.Name,
	}

	debitDesc := memo
	if debitDesc == "" {
		debitDesc = "Transfer to " + to.Name
	}
	debit, err := s.postDebit(userID, from, amount, debitDesc, receipt, cp)
	if err != nil {
		return nil, err
	}
	credit, err := s.postCredit(userID, to, amount, "Transfer from "+from.Name, receipt, cp)
	if err != nil {
		return nil, err
	}

	s.notifier.Send(user.Email, notifier.AlertTransfer, map[string]interface{}{
		"type":           "Internal Transfer",
		"amount":         amount.String(),
		"from":           from.Name,
		"to":             to.Name,
		"receipt_number": receipt,
	})
	s.logger.Info("internal transfer completed",
		zap.String("user_id", userID),
		zap.String("receipt", receipt),
		zap.String("amount", amount.String()))

	return &Result{ReceiptNumber: receipt, Debit: debit, Credit: credit}, nil
}

// TransferToAccountNumber resolves the destination by account number. A
// registry hit posts both legs, even across users; a miss degrades to an
// external transfer with a single pending debit leg.
func (s *Service) TransferToAccountNumber(ctx context.Context, userID, fromAccountID, toAccountNumber string, amount decimal.Decimal, memo string) (*Result, error) {
	if err := s.processingWait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, from, err := s.validateSource(userID, fromAccountID, amount)
	if err != nil {
		return nil, err
	}

	destUser, destAcct, err := s.registry.FindAccountByNumber(toAccountNumber)
	if err != nil {
		// Unknown number: the destination is outside the simulated ledger.
		return s.postExternal(user, from, amount, memo, RecipientDetails{
			RecipientName: toAccountNumber,
			AccountNumber: toAccountNumber,
		})
	}
	if destAcct.ID == from.ID {
		// The number resolved back to the funding account. Posting both
		// legs against one account would compute the credit from a stale
		// pre-debit balance and inflate it.
		return nil, xerrors.ErrSameAccount
	}

	receipt := id.ReceiptNumber()
	cp := domain.Counterparty{
		FromAccount: from.AccountNumber,
		ToAccount:   destAcct.AccountNumber,
		FromName:    user.Name,
		ToName:      destUser.Name,
	}

	debitDesc := memo
	if debitDesc == "" {
		debitDesc = fmt.Sprintf("Transfer to %s (%s)", destUser.Name, destAcct.Name)
	}
	debit, err := s.postDebit(userID, from, amount, debitDesc, receipt, cp)
	if err != nil {
		return nil, err
	}
	credit, err := s.postCredit(destUser.ID, destAcct, amount, "Transfer from "+user.Name, receipt, cp)
	if err != nil {
		return nil, err
	}

	// Both parties resolved, so both get an alert.
	s.notifier.Send(user.Email, notifier.AlertTransfer, map[string]interface{}{
		"type":           "Transfer Sent",
		"amount":         amount.String(),
		"recipient":      destUser.Name,
		"receipt_number": receipt,
	})
	s.notifier.Send(destUser.Email, notifier.AlertReceipt, map[string]interface{}{
		"type":           "Incoming Transfer",
		"amount":         amount.String(),
		"sender":         user.Name,
		"receipt_number": receipt,
	})
	s.logger.Info("account-number transfer completed",
		zap.String("from_user", userID),
		zap.String("to_user", destUser.ID),
		zap.String("receipt", receipt))

	return &Result{ReceiptNumber: receipt, Debit: debit, Credit: credit}, nil
}

// TransferExternal records only the debit leg, with pending status: no
// credit leg exists anywhere in the system.
func (s *Service) TransferExternal(ctx context.Context, userID, fromAccountID string, recipient RecipientDetails, amount decimal.Decimal, memo string) (*Result, error) {
	if err := s.processingWait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, from, err := s.validateSource(userID, fromAccountID, amount)
	if err != nil {
		return nil, err
	}
	return s.postExternal(user, from, amount, memo, recipient)
}

// postExternal is the shared external path: pending debit leg, sender alert,
// optional recipient alert when an email is known. Caller holds the mutex.
func (s *Service) postExternal(user *domain.User, from *domain.Account, amount decimal.Decimal, memo string, recipient RecipientDetails) (*Result, error) {
	receipt := id.ReceiptNumber()
	cp := domain.Counterparty{
		FromAccount: from.AccountNumber,
		ToAccount:   recipient.AccountNumber,
		FromName:    from.Name,
		ToName:      recipient.RecipientName,
	}

	desc := memo
	if desc == "" {
		desc = "External Transfer to " + recipient.RecipientName
		if recipient.BankName != "" {
			desc += " (" + recipient.BankName + ")"
		}
	}

	newBalance, err := s.registry.UpdateAccountBalance(from.ID, from.Balance.Sub(amount))
	if err != nil {
		return nil, err
	}
	leg := domain.NewTransferLeg(from.ID, true, amount, newBalance.Balance, from.Currency, desc, cp).Pending()
	leg.ReceiptNumber = receipt
	debit, err := s.ledger.Append(user.ID, leg)
	if err != nil {
		return nil, err
	}

	s.notifier.Send(user.Email, notifier.AlertTransfer, map[string]interface{}{
		"type":           "External Transfer Sent",
		"amount":         amount.String(),
		"recipient":      recipient.RecipientName,
		"recipient_bank": recipient.BankName,
		"receipt_number": receipt,
		"status":         "Processing - Will arrive in 1-3 business days",
	})
	if recipient.RecipientEmail != "" {
		s.notifier.Send(recipient.RecipientEmail, notifier.AlertReceipt, map[string]interface{}{
			"type":           "Incoming Transfer",
			"amount":         amount.String(),
			"sender":         user.Name,
			"receipt_number": receipt,
		})
	}
	s.logger.Info("external transfer recorded",
		zap.String("user_id", user.ID),
		zap.String("receipt", receipt))

	return &Result{ReceiptNumber: receipt, Debit: debit, External: true}, nil
}

// Fund credits an account from a simulated outside source (card, cardless
// ATM, employer). Restrictions do not apply to inbound funds.
func (s *Service) Fund(ctx context.Context, userID, accountID string, amount decimal.Decimal, method string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, xerrors.ErrInvalidAmount
	}
	if err := s.processingWait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, acct, err := s.ownedAccount(userID, accountID)
	if err != nil {
		return nil, err
	}
	newBalance, err := s.registry.UpdateAccountBalance(acct.ID, acct.Balance.Add(amount))
	if err != nil {
		return nil, err
	}

	desc := "Account Funding"
	if method != "" {
		desc += " via " + method
	}
	credit := domain.NewCredit(acct.ID, amount, newBalance.Balance, acct.Currency, desc)
	credit.ConfirmationCode = id.ConfirmationCode(8)
	tx, err := s.ledger.Append(userID, credit)
	if err != nil {
		return nil, err
	}

	s.notifier.Send(user.Email, notifier.AlertReceipt, map[string]interface{}{
		"type":              "Account Funded",
		"amount":            amount.String(),
		"account":           acct.Name,
		"confirmation_code": tx.ConfirmationCode,
	})
	return tx, nil
}

// BillPay debits an account in favor of a named payee. Subject to the same
// validation and restriction gates as transfers.
func (s *Service) BillPay(ctx context.Context, userID, accountID, payee string, amount decimal.Decimal) (*domain.Transaction, error) {
	if err := s.processingWait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, acct, err := s.validateSource(userID, accountID, amount)
	if err != nil {
		return nil, err
	}
	newBalance, err := s.registry.UpdateAccountBalance(acct.ID, acct.Balance.Sub(amount))
	if err != nil {
		return nil, err
	}
	debit := domain.NewDebit(acct.ID, amount, newBalance.Balance, acct.Currency, "Bill Payment - "+payee)
	tx, err := s.ledger.Append(userID, debit)
	if err != nil {
		return nil, err
	}

	s.notifier.Send(user.Email, notifier.AlertReceipt, map[string]interface{}{
		"type":           "Bill Payment",
		"amount":         amount.String(),
		"payee":          payee,
		"receipt_number": tx.ReceiptNumber,
	})
	return tx, nil
}

// DepositCheck credits an account with pending status: the simulated check
// never clears, the record just stays pending in the history.
func (s *Service) DepositCheck(ctx context.Context, userID, accountID string, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, xerrors.ErrInvalidAmount
	}
	if err := s.processingWait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, acct, err := s.ownedAccount(userID, accountID)
	if err != nil {
		return nil, err
	}
	newBalance, err := s.registry.UpdateAccountBalance(acct.ID, acct.Balance.Add(amount))
	if err != nil {
		return nil, err
	}
	credit := domain.NewCredit(acct.ID, amount, newBalance.Balance, acct.Currency, "Mobile Check Deposit").Pending()
	credit.ConfirmationCode = id.ConfirmationCode(10)
	tx, err := s.ledger.Append(userID, credit)
	if err != nil {
		return nil, err
	}

	s.notifier.Send(user.Email, notifier.AlertReceipt, map[string]interface{}{
		"type":              "Check Deposit Received",
		"amount":            amount.String(),
		"confirmation_code": tx.ConfirmationCode,
	})
	return tx, nil
}

// validateSource runs the fail-fast gate shared by every outbound
// operation: amount positive, account owned by the user, restriction check,
// sufficient balance. No writes happen before it passes.
func (s *Service) validateSource(userID, accountID string, amount decimal.Decimal) (*domain.User, *domain.Account, error) {
	if !amount.IsPositive() {
		return nil, nil, xerrors.ErrInvalidAmount
	}
	user, acct, err := s.ownedAccount(userID, accountID)
	if err != nil {
		return nil, nil, err
	}
	if r := restrictionOf(user); !r.Allowed() {
		return nil, nil, restrictionErr(r)
	}
	if acct.Balance.LessThan(amount) {
		return nil, nil, xerrors.ErrInsufficientFunds
	}
	return user, acct, nil
}

func (s *Service) ownedAccount(userID, accountID string) (*domain.User, *domain.Account, error) {
	user, err := s.registry.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	acct := user.AccountByID(accountID)
	if acct == nil {
		return nil, nil, xerrors.ErrInvalidAccount
	}
	return user, acct, nil
}

func (s *Service) postDebit(ownerID string, acct *domain.Account, amount decimal.Decimal, desc, receipt string, cp domain.Counterparty) (*domain.Transaction, error) {
	newBalance, err := s.registry.UpdateAccountBalance(acct.ID, acct.Balance.Sub(amount))
	if err != nil {
		return nil, err
	}
	leg := domain.NewTransferLeg(acct.ID, true, amount, newBalance.Balance, acct.Currency, desc, cp)
	leg.ReceiptNumber = receipt
	return s.ledger.Append(ownerID, leg)
}

func (s *Service) postCredit(ownerID string, acct *domain.Account, amount decimal.Decimal, desc, receipt string, cp domain.Counterparty) (*domain.Transaction, error) {
	newBalance, err := s.registry.UpdateAccountBalance(acct.ID, acct.Balance.Add(amount))
	if err != nil {
		return nil, err
	}
	leg := domain.NewTransferLeg(acct.ID, false, amount, newBalance.Balance, acct.Currency, desc, cp)
	leg.ReceiptNumber = receipt
	return s.ledger.Append(ownerID, leg)
}

// processingWait is the simulated processing time: one bounded wait,
// cancelable through the request context, never retried.
func (s *Service) processingWait(ctx context.Context) error {
	if s.processingDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.processingDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
