package otp

import (
	"context"
	"testing"
	"time"

	"bank-service/internal/notifier"
	"bank-service/internal/pkg/xerrors"

	"go.uber.org/zap"
)

func newOTPService() *Service {
	n := notifier.NewEmailNotifier(zap.NewNop(), 0)
	return NewService(NewMemoryStore(), n, zap.NewNop(), 5*time.Minute)
}

func TestGenerateAndVerify(t *testing.T) {
	svc := newOTPService()
	ctx := context.Background()

	code, err := svc.Generate(ctx, "u1", "u1@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code = %q, want 6 digits", code)
	}
	if err := svc.Verify(ctx, "u1", code); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestCodeIsSingleUse(t *testing.T) {
	svc := newOTPService()
	ctx := context.Background()

	code, _ := svc.Generate(ctx, "u1", "u1@example.com")
	if err := svc.Verify(ctx, "u1", code); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	if err := svc.Verify(ctx, "u1", code); err != xerrors.ErrInvalidOTP {
		t.Fatalf("second Verify = %v, want ErrInvalidOTP", err)
	}
}

func TestWrongCodeRejected(t *testing.T) {
	svc := newOTPService()
	ctx := context.Background()

	code, _ := svc.Generate(ctx, "u1", "u1@example.com")
	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}
	if err := svc.Verify(ctx, "u1", wrong); err != xerrors.ErrInvalidOTP {
		t.Fatalf("Verify(wrong) = %v, want ErrInvalidOTP", err)
	}
}

func TestNewCodeReplacesOld(t *testing.T) {
	svc := newOTPService()
	ctx := context.Background()

	old, _ := svc.Generate(ctx, "u1", "u1@example.com")
	fresh, _ := svc.Generate(ctx, "u1", "u1@example.com")
	if old == fresh {
		t.Skip("codes collided; regeneration indistinguishable")
	}
	if err := svc.Verify(ctx, "u1", old); err != xerrors.ErrInvalidOTP {
		t.Fatalf("old code still valid: %v", err)
	}
	if err := svc.Verify(ctx, "u1", fresh); err != nil {
		t.Fatalf("fresh code rejected: %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, "k", "123456", time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Get(ctx, "k"); err != errCodeNotFound {
		t.Fatalf("Get after expiry = %v, want errCodeNotFound", err)
	}
}
