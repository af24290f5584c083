package repository

import (
	"fmt"
	"sync"
	"time"

	"bank-service/internal/domain"
	"bank-service/internal/pkg/id"
	"bank-service/internal/storage"

	"go.uber.org/zap"
)

// LedgerRepository is the append-only record of money movement, one list per
// user, newest-first. Records are immutable once appended; balances are never
// touched here — callers pass the resulting-balance snapshot they produced
// through the registry.
type LedgerRepository struct {
	mu     sync.Mutex
	store  *storage.Store
	logger *zap.Logger
	byUser map[string][]*domain.Transaction
}

func NewLedgerRepository(store *storage.Store, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		store:  store,
		logger: logger,
		byUser: make(map[string][]*domain.Transaction),
	}
}

// Append assigns id, timestamp and (if absent) a receipt number, validates
// the record, prepends it to the user's list and persists the snapshot.
func (r *LedgerRepository) Append(userID string, t *domain.Transaction) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(userID); err != nil {
		return nil, err
	}

	t.ID = id.TransactionID()
	t.CreatedAt = time.Now()
	if t.ReceiptNumber == "" {
		t.ReceiptNumber = id.ReceiptNumber()
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("ledger append: %w", err)
	}

	r.byUser[userID] = append([]*domain.Transaction{t}, r.byUser[userID]...)
	if err := r.store.Save(storage.KeyTransactions(userID), r.byUser[userID]); err != nil {
		r.byUser[userID] = r.byUser[userID][1:]
		return nil, err
	}

	r.logger.Info("transaction appended",
		zap.String("user_id", userID),
		zap.String("transaction_id", t.ID),
		zap.String("type", string(t.Type)),
		zap.String("amount", t.Amount.String()),
		zap.String("receipt", t.ReceiptNumber))
	cp := *t
	return &cp, nil
}

// List returns all of a user's transactions, newest-first, stable for ties
// by creation sequence (ids are monotonic within a millisecond).
func (r *LedgerRepository) List(userID string) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(userID); err != nil {
		return nil, err
	}
	src := r.byUser[userID]
	out := make([]*domain.Transaction, len(src))
	for i, t := range src {
		cp := *t
		out[i] = &cp
	}
	return out, nil
}

// loadLocked lazily pulls a user's ledger snapshot into memory. A user with
// no snapshot simply has an empty ledger.
func (r *LedgerRepository) loadLocked(userID string) error {
	if _, ok := r.byUser[userID]; ok {
		return nil
	}
	var list []*domain.Transaction
	if err := r.store.Load(storage.KeyTransactions(userID), &list); err != nil {
		if err != storage.ErrNoKey {
			return fmt.Errorf("load ledger for %s: %w", userID, err)
		}
	}
	r.byUser[userID] = list
	return nil
}
