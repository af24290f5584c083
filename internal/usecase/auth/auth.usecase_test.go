package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"bank-service/internal/notifier"
	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/repository"
	"bank-service/internal/storage"
	"bank-service/internal/usecase/otp"

	"go.uber.org/zap"
)

func newAuthService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	logger := zap.NewNop()
	registry, err := repository.NewRegistryRepository(store, logger)
	if err != nil {
		t.Fatalf("NewRegistryRepository: %v", err)
	}
	creds, err := repository.NewCredentialRepository(store, logger)
	if err != nil {
		t.Fatalf("NewCredentialRepository: %v", err)
	}
	n := notifier.NewEmailNotifier(logger, 0)
	otpSvc := otp.NewService(otp.NewMemoryStore(), n, logger, 5*time.Minute)
	return NewService(registry, creds, otpSvc, logger, []byte("test-secret"), time.Hour)
}

func TestRegisterCreatesTwoZeroBalanceAccounts(t *testing.T) {
	svc := newAuthService(t)
	user, token, err := svc.Register(context.Background(), "anna@example.com", "pass123", "Anna", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if token == "" {
		t.Fatal("no pre-auth token returned")
	}
	if len(user.Accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(user.Accounts))
	}
	for _, a := range user.Accounts {
		if !a.Balance.IsZero() {
			t.Fatalf("account %s opened with balance %s", a.Name, a.Balance)
		}
		if a.AccountNumber == "" {
			t.Fatalf("account %s has no number", a.Name)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, "dup@example.com", "pass", "First", ""); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "dup@example.com", "other", "Second", ""); err != xerrors.ErrEmailAlreadyInUse {
		t.Fatalf("second Register = %v, want ErrEmailAlreadyInUse", err)
	}
}

func TestFailedCredentialWriteFreesEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	// bcrypt rejects passwords longer than 72 bytes, so the credential write
	// fails after the registry entry was created.
	tooLong := strings.Repeat("x", 100)
	if _, _, err := svc.Register(ctx, "anna@example.com", tooLong, "Anna", ""); err == nil {
		t.Fatal("Register accepted an unhashable password")
	}

	// The rollback must free the email for a retry with a valid password.
	if _, _, err := svc.Register(ctx, "anna@example.com", "pass123", "Anna", ""); err != nil {
		t.Fatalf("Register after failed attempt: %v", err)
	}
	if _, _, err := svc.Login(ctx, "anna@example.com", "pass123"); err != nil {
		t.Fatalf("Login after retry: %v", err)
	}
}

func TestRegisterRequiresEmailAndPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, "", "pass", "X", ""); err != xerrors.ErrEmailRequired {
		t.Fatalf("missing email = %v", err)
	}
	if _, _, err := svc.Register(ctx, "x@example.com", "", "X", ""); err != xerrors.ErrPasswordRequired {
		t.Fatalf("missing password = %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, "anna@example.com", "pass123", "Anna", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, wrongPass := svc.Login(ctx, "anna@example.com", "nope")
	_, _, unknown := svc.Login(ctx, "ghost@example.com", "pass123")
	if wrongPass != xerrors.ErrInvalidCredentials || unknown != xerrors.ErrInvalidCredentials {
		t.Fatalf("errors differ: %v vs %v", wrongPass, unknown)
	}
}

func TestFullLoginFlow(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	user, _, err := svc.Register(ctx, "anna@example.com", "pass123", "Anna", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, preToken, err := svc.Login(ctx, "anna@example.com", "pass123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	uid, stage, err := svc.ParseToken(preToken)
	if err != nil || uid != user.ID || stage != StagePreAuth {
		t.Fatalf("pre-auth token: uid=%s stage=%s err=%v", uid, stage, err)
	}

	code, err := svc.SendOTP(ctx, user.ID)
	if err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	session, err := svc.VerifyOTP(ctx, user.ID, code)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	uid, stage, err = svc.ParseToken(session)
	if err != nil || uid != user.ID || stage != StageFull {
		t.Fatalf("session token: uid=%s stage=%s err=%v", uid, stage, err)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	user, _, err := svc.Register(ctx, "anna@example.com", "pass123", "Anna", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	code, err := svc.SendOTP(ctx, user.ID)
	if err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}
	if _, err := svc.VerifyOTP(ctx, user.ID, wrong); err != xerrors.ErrInvalidOTP {
		t.Fatalf("VerifyOTP(wrong) = %v, want ErrInvalidOTP", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)
	if _, _, err := svc.ParseToken("not.a.token"); err != xerrors.ErrUnauthorized {
		t.Fatalf("ParseToken(garbage) = %v, want ErrUnauthorized", err)
	}
}

func TestTransactionPin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	user, _, err := svc.Register(ctx, "anna@example.com", "pass123", "Anna", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.VerifyTransactionPin(ctx, user.ID, "1234"); err != xerrors.ErrPinNotSet {
		t.Fatalf("verify before set = %v", err)
	}
	if err := svc.SetTransactionPin(ctx, user.ID, "1234"); err != nil {
		t.Fatalf("SetTransactionPin: %v", err)
	}
	if err := svc.VerifyTransactionPin(ctx, user.ID, "1234"); err != nil {
		t.Fatalf("VerifyTransactionPin: %v", err)
	}

	fresh, err := svc.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !fresh.HasSetPin {
		t.Fatal("HasSetPin not recorded")
	}
}
