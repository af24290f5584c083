package repository

import (
	"testing"

	"bank-service/internal/domain"
	"bank-service/internal/storage"

	"go.uber.org/zap"
)

func newLedger(t *testing.T) (*LedgerRepository, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return NewLedgerRepository(store, zap.NewNop()), store
}

func TestAppendAssignsIDAndReceipt(t *testing.T) {
	repo, _ := newLedger(t)
	tx, err := repo.Append("u1", domain.NewCredit("a1", dec("100"), dec("100"), "USD", "funding"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if tx.ID == "" || tx.ReceiptNumber == "" || tx.CreatedAt.IsZero() {
		t.Fatalf("missing assigned fields: %+v", tx)
	}
}

func TestAppendKeepsProvidedReceipt(t *testing.T) {
	repo, _ := newLedger(t)
	leg := domain.NewTransferLeg("a1", true, dec("10"), dec("90"), "USD", "x", domain.Counterparty{
		FromAccount: "1531000001", ToAccount: "1532000002", FromName: "A", ToName: "B",
	})
	leg.ReceiptNumber = "USB1234567890"
	tx, err := repo.Append("u1", leg)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if tx.ReceiptNumber != "USB1234567890" {
		t.Fatalf("receipt replaced: %s", tx.ReceiptNumber)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo, _ := newLedger(t)
	for _, desc := range []string{"first", "second", "third"} {
		if _, err := repo.Append("u1", domain.NewCredit("a1", dec("1"), dec("1"), "USD", desc)); err != nil {
			t.Fatalf("Append(%s): %v", desc, err)
		}
	}

	txns, err := repo.List("u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("len = %d, want 3", len(txns))
	}
	if txns[0].Description != "third" || txns[2].Description != "first" {
		t.Fatalf("order wrong: %s, %s, %s", txns[0].Description, txns[1].Description, txns[2].Description)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	repo, _ := newLedger(t)
	bad := domain.NewCredit("a1", dec("0"), dec("0"), "USD", "zero")
	if _, err := repo.Append("u1", bad); err == nil {
		t.Fatal("Append accepted a zero-amount record")
	}
	txns, _ := repo.List("u1")
	if len(txns) != 0 {
		t.Fatalf("rejected append left %d records", len(txns))
	}
}

func TestLedgerSurvivesReload(t *testing.T) {
	repo, store := newLedger(t)
	if _, err := repo.Append("u1", domain.NewCredit("a1", dec("42"), dec("42"), "USD", "keep")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	fresh := NewLedgerRepository(store, zap.NewNop())
	txns, err := fresh.List("u1")
	if err != nil {
		t.Fatalf("List after reload: %v", err)
	}
	if len(txns) != 1 || txns[0].Description != "keep" {
		t.Fatalf("reloaded ledger = %+v", txns)
	}
}

func TestLedgersAreIsolatedPerUser(t *testing.T) {
	repo, _ := newLedger(t)
	if _, err := repo.Append("u1", domain.NewCredit("a1", dec("1"), dec("1"), "USD", "mine")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	other, err := repo.List("u2")
	if err != nil {
		t.Fatalf("List(u2): %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("u2 sees u1's records: %+v", other)
	}
}
