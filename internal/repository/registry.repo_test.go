package repository

import (
	"strings"
	"testing"

	"bank-service/internal/domain"
	"bank-service/internal/pkg/id"
	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newRegistry(t *testing.T) (*RegistryRepository, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	repo, err := NewRegistryRepository(store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRegistryRepository: %v", err)
	}
	return repo, store
}

func testUser(id, email string) *domain.User {
	return &domain.User{
		ID:    id,
		Email: email,
		Name:  "Test User",
		Accounts: []*domain.Account{
			{ID: id + "-chk", Type: domain.AccountTypeChecking, Name: "Primary Checking", Currency: "USD"},
			{ID: id + "-sav", Type: domain.AccountTypeSavings, Name: "Savings Account", Currency: "USD"},
		},
	}
}

func TestCreateUserAssignsNumbers(t *testing.T) {
	repo, _ := newRegistry(t)
	u, err := repo.CreateUser(testUser("u1", "one@example.com"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	chk, sav := u.Accounts[0], u.Accounts[1]
	if !strings.HasPrefix(chk.AccountNumber, id.PrefixChecking) || len(chk.AccountNumber) != 10 {
		t.Fatalf("checking number = %q", chk.AccountNumber)
	}
	if !strings.HasPrefix(sav.AccountNumber, id.PrefixSavings) || len(sav.AccountNumber) != 10 {
		t.Fatalf("savings number = %q", sav.AccountNumber)
	}
	if chk.RoutingNumber != id.RoutingNumber || sav.RoutingNumber != id.RoutingNumber {
		t.Fatalf("routing numbers = %q / %q", chk.RoutingNumber, sav.RoutingNumber)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo, _ := newRegistry(t)
	if _, err := repo.CreateUser(testUser("u1", "dup@example.com")); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	if _, err := repo.CreateUser(testUser("u2", "dup@example.com")); err != xerrors.ErrEmailAlreadyInUse {
		t.Fatalf("second CreateUser = %v, want ErrEmailAlreadyInUse", err)
	}
	if repo.Size() != 1 {
		t.Fatalf("Size() = %d after rejected duplicate, want 1", repo.Size())
	}
}

func TestEmailMatchIsCaseSensitive(t *testing.T) {
	repo, _ := newRegistry(t)
	if _, err := repo.CreateUser(testUser("u1", "Anna@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := repo.GetByEmail("anna@example.com"); err != xerrors.ErrUserNotFound {
		t.Fatalf("GetByEmail(lowercased) = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByEmail("Anna@example.com"); err != nil {
		t.Fatalf("GetByEmail(exact) = %v", err)
	}
}

func TestCreateUserRejectsTakenNumber(t *testing.T) {
	repo, _ := newRegistry(t)
	first, err := repo.CreateUser(testUser("u1", "one@example.com"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	second := testUser("u2", "two@example.com")
	second.Accounts[0].AccountNumber = first.Accounts[0].AccountNumber
	if _, err := repo.CreateUser(second); err != xerrors.ErrAccountNumberTaken {
		t.Fatalf("CreateUser with taken number = %v, want ErrAccountNumberTaken", err)
	}
}

func TestFindAccountByNumber(t *testing.T) {
	repo, _ := newRegistry(t)
	created, err := repo.CreateUser(testUser("u1", "one@example.com"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	owner, acct, err := repo.FindAccountByNumber(created.Accounts[1].AccountNumber)
	if err != nil {
		t.Fatalf("FindAccountByNumber: %v", err)
	}
	if owner.ID != "u1" || acct.ID != "u1-sav" {
		t.Fatalf("resolved owner=%s acct=%s", owner.ID, acct.ID)
	}

	if _, _, err := repo.FindAccountByNumber("9999999999"); err != xerrors.ErrAccountNotFound {
		t.Fatalf("unknown number = %v, want ErrAccountNotFound", err)
	}
}

func TestUpdateAccountBalancePersists(t *testing.T) {
	repo, store := newRegistry(t)
	created, err := repo.CreateUser(testUser("u1", "one@example.com"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	acct, err := repo.UpdateAccountBalance(created.Accounts[0].ID, dec("250.75"))
	if err != nil {
		t.Fatalf("UpdateAccountBalance: %v", err)
	}
	if !acct.Balance.Equal(dec("250.75")) {
		t.Fatalf("returned balance = %s", acct.Balance)
	}

	// A fresh repository over the same store sees the new balance.
	reloaded, err := NewRegistryRepository(store, zap.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	u, err := reloaded.GetByID("u1")
	if err != nil {
		t.Fatalf("GetByID after reload: %v", err)
	}
	if !u.Accounts[0].Balance.Equal(dec("250.75")) {
		t.Fatalf("reloaded balance = %s", u.Accounts[0].Balance)
	}
}

func TestReturnedUsersAreCopies(t *testing.T) {
	repo, _ := newRegistry(t)
	if _, err := repo.CreateUser(testUser("u1", "one@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, _ := repo.GetByID("u1")
	u.Accounts[0].Balance = dec("999999")

	again, _ := repo.GetByID("u1")
	if !again.Accounts[0].Balance.IsZero() {
		t.Fatalf("caller mutation leaked into registry: %s", again.Accounts[0].Balance)
	}
}

func TestRemoveFreesAllIndexes(t *testing.T) {
	repo, store := newRegistry(t)
	created, err := repo.CreateUser(testUser("u1", "one@example.com"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := repo.Remove("u1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := repo.GetByID("u1"); err != xerrors.ErrUserNotFound {
		t.Fatalf("GetByID after remove = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByEmail("one@example.com"); err != xerrors.ErrUserNotFound {
		t.Fatalf("GetByEmail after remove = %v, want ErrUserNotFound", err)
	}
	if _, _, err := repo.FindAccountByNumber(created.Accounts[0].AccountNumber); err != xerrors.ErrAccountNotFound {
		t.Fatalf("FindAccountByNumber after remove = %v, want ErrAccountNotFound", err)
	}

	// Email and number are free for re-registration, and the removal stuck.
	if _, err := repo.CreateUser(testUser("u2", "one@example.com")); err != nil {
		t.Fatalf("CreateUser after remove: %v", err)
	}
	reloaded, err := NewRegistryRepository(store, zap.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := reloaded.GetByID("u1"); err != xerrors.ErrUserNotFound {
		t.Fatalf("removed user survived reload: %v", err)
	}
}

func TestSetRestriction(t *testing.T) {
	repo, _ := newRegistry(t)
	if _, err := repo.CreateUser(testUser("u1", "one@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	fee := &domain.ConversionFee{Amount: dec("1000"), Currency: "PLN"}
	if err := repo.SetRestriction("u1", true, fee); err != nil {
		t.Fatalf("SetRestriction: %v", err)
	}
	u, _ := repo.GetByID("u1")
	if !u.TransferRestricted || u.PendingConversionFee == nil {
		t.Fatalf("restriction not applied: %+v", u)
	}

	if err := repo.SetRestriction("u1", false, nil); err != nil {
		t.Fatalf("SetRestriction(lift): %v", err)
	}
	u, _ = repo.GetByID("u1")
	if u.TransferRestricted || u.PendingConversionFee != nil {
		t.Fatalf("restriction not lifted: %+v", u)
	}
}
