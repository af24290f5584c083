package repository

import (
	"fmt"
	"sync"

	"bank-service/internal/domain"
	"bank-service/internal/pkg/id"
	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Number of candidate account numbers tried before giving up on a collision.
const maxNumberAttempts = 5

type accountRef struct {
	userID    string
	accountID string
}

// RegistryRepository is the single source of truth for all known users and
// their accounts. All mutation goes through one mutex and is mirrored to the
// registeredUsers snapshot before returning, so no reader can observe a
// registry/session mismatch: sessions are tokens, and every read lands here.
type RegistryRepository struct {
	mu     sync.Mutex
	store  *storage.Store
	logger *zap.Logger

	users   map[string]*domain.User // by id
	order   []string                // insertion order, for stable snapshots
	byEmail map[string]string       // email -> user id, case-sensitive
	byAcctN map[string]accountRef   // account number -> owner
	byAcctI map[string]accountRef   // account id -> owner
}

// NewRegistryRepository loads the registeredUsers snapshot (if any) and
// rebuilds the lookup indexes.
func NewRegistryRepository(store *storage.Store, logger *zap.Logger) (*RegistryRepository, error) {
	r := &RegistryRepository{
		store:   store,
		logger:  logger,
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
		byAcctN: make(map[string]accountRef),
		byAcctI: make(map[string]accountRef),
	}

	var snapshot []*domain.User
	if err := store.Load(storage.KeyRegisteredUsers, &snapshot); err != nil {
		if err != storage.ErrNoKey {
			return nil, fmt.Errorf("load registry snapshot: %w", err)
		}
	}
	for _, u := range snapshot {
		if err := r.indexLocked(u); err != nil {
			return nil, fmt.Errorf("rebuild registry index: %w", err)
		}
	}
	logger.Info("registry loaded", zap.Int("users", len(r.users)))
	return r, nil
}

// indexLocked registers u in all indexes. Account-number collisions in a
// loaded snapshot are a corrupted store, not a runtime condition.
func (r *RegistryRepository) indexLocked(u *domain.User) error {
	if _, exists := r.byEmail[u.Email]; exists {
		return fmt.Errorf("duplicate email in snapshot: %s", u.Email)
	}
	for _, a := range u.Accounts {
		if _, taken := r.byAcctN[a.AccountNumber]; taken {
			return fmt.Errorf("duplicate account number in snapshot: %s", a.AccountNumber)
		}
	}
	r.users[u.ID] = u
	r.order = append(r.order, u.ID)
	r.byEmail[u.Email] = u.ID
	for _, a := range u.Accounts {
		ref := accountRef{userID: u.ID, accountID: a.ID}
		r.byAcctN[a.AccountNumber] = ref
		r.byAcctI[a.ID] = ref
	}
	return nil
}

// CreateUser adds a new user. Accounts with an empty AccountNumber get a
// fresh unique one for their type; accounts arriving with a number (seed
// data) are rejected on collision — uniqueness is enforced at creation, not
// assumed at lookup.
func (r *RegistryRepository) CreateUser(u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return nil, xerrors.ErrEmailAlreadyInUse
	}
	for _, a := range u.Accounts {
		if a.AccountNumber == "" {
			num, err := r.nextNumberLocked(a.Type)
			if err != nil {
				return nil, err
			}
			a.AccountNumber = num
		} else if _, taken := r.byAcctN[a.AccountNumber]; taken {
			return nil, xerrors.ErrAccountNumberTaken
		}
		a.RoutingNumber = id.RoutingNumber
	}
	if err := r.indexLocked(u); err != nil {
		return nil, err
	}
	if err := r.persistLocked(); err != nil {
		return nil, err
	}
	r.logger.Info("user registered",
		zap.String("user_id", u.ID),
		zap.String("email", u.Email),
		zap.Int("accounts", len(u.Accounts)))
	return u.Clone(), nil
}

func (r *RegistryRepository) nextNumberLocked(t domain.AccountType) (string, error) {
	prefix := id.PrefixChecking
	switch t {
	case domain.AccountTypeSavings:
		prefix = id.PrefixSavings
	case domain.AccountTypeCredit:
		prefix = id.PrefixCredit
	}
	for i := 0; i < maxNumberAttempts; i++ {
		num := id.AccountNumber(prefix)
		if _, taken := r.byAcctN[num]; !taken {
			return num, nil
		}
	}
	return "", xerrors.ErrAccountNumberTaken
}

// GetByID returns a copy of the user, or ErrUserNotFound.
func (r *RegistryRepository) GetByID(userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	return u.Clone(), nil
}

// GetByEmail looks a user up by exact, case-sensitive email match.
func (r *RegistryRepository) GetByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.byEmail[email]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	return r.users[uid].Clone(), nil
}

// GetAll returns all users in registration order.
func (r *RegistryRepository) GetAll() []*domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.order))
	for _, uid := range r.order {
		out = append(out, r.users[uid].Clone())
	}
	return out
}

// Size reports the number of registered users.
func (r *RegistryRepository) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// FindAccountByNumber resolves an account number to its owner and account.
// Used for transfer destinations and directory lookups; unknown numbers mean
// the destination is external to the simulated ledger.
func (r *RegistryRepository) FindAccountByNumber(accountNumber string) (*domain.User, *domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.byAcctN[accountNumber]
	if !ok {
		return nil, nil, xerrors.ErrAccountNotFound
	}
	u := r.users[ref.userID].Clone()
	return u, u.AccountByID(ref.accountID), nil
}

// FindAccountByID resolves an account id to its owner and account.
func (r *RegistryRepository) FindAccountByID(accountID string) (*domain.User, *domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.byAcctI[accountID]
	if !ok {
		return nil, nil, xerrors.ErrAccountNotFound
	}
	u := r.users[ref.userID].Clone()
	return u, u.AccountByID(accountID), nil
}

// UpdateAccountBalance is the balance choke point: it replaces the balance on
// the canonical registry entry and persists before returning. There is no
// second copy to fall out of sync.
func (r *RegistryRepository) UpdateAccountBalance(accountID string, balance decimal.Decimal) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.byAcctI[accountID]
	if !ok {
		return nil, xerrors.ErrAccountNotFound
	}
	acct := r.users[ref.userID].AccountByID(accountID)
	old := acct.Balance
	acct.Balance = balance
	if err := r.persistLocked(); err != nil {
		acct.Balance = old
		return nil, err
	}
	r.logger.Info("balance updated",
		zap.String("account_id", accountID),
		zap.String("balance", balance.String()))
	cp := *acct
	return &cp, nil
}

// Remove deletes a user and all index entries. Only used to roll back a
// registration whose credential write failed; established users are never
// removed.
func (r *RegistryRepository) Remove(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	delete(r.users, userID)
	delete(r.byEmail, u.Email)
	for _, a := range u.Accounts {
		delete(r.byAcctN, a.AccountNumber)
		delete(r.byAcctI, a.ID)
	}
	for i, uid := range r.order {
		if uid == userID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return r.persistLocked()
}

// UpdateProfile applies a partial profile update and returns the new user.
func (r *RegistryRepository) UpdateProfile(userID string, name, phone, currency string, profile *domain.Profile) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	if name != "" {
		u.Name = name
	}
	if phone != "" {
		u.Phone = phone
	}
	if currency != "" {
		u.Currency = currency
	}
	if profile != nil {
		u.Profile = *profile
	}
	if err := r.persistLocked(); err != nil {
		return nil, err
	}
	return u.Clone(), nil
}

// SetRestriction toggles the transfer hold on a user. A nil fee with
// restricted=true is a hard hold; a fee models the soft pending-fee hold.
func (r *RegistryRepository) SetRestriction(userID string, restricted bool, fee *domain.ConversionFee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.TransferRestricted = restricted
	if restricted {
		u.PendingConversionFee = fee
	} else {
		u.PendingConversionFee = nil
	}
	if err := r.persistLocked(); err != nil {
		return err
	}
	r.logger.Info("transfer restriction updated",
		zap.String("user_id", userID),
		zap.Bool("restricted", restricted))
	return nil
}

// SetHasPin records that the user completed PIN setup. The hash itself lives
// in the credential store.
func (r *RegistryRepository) SetHasPin(userID string, set bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.HasSetPin = set
	return r.persistLocked()
}

func (r *RegistryRepository) persistLocked() error {
	snapshot := make([]*domain.User, 0, len(r.order))
	for _, uid := range r.order {
		snapshot = append(snapshot, r.users[uid])
	}
	return r.store.Save(storage.KeyRegisteredUsers, snapshot)
}
