package auth

import (
	"context"
	"time"

	"bank-service/internal/domain"
	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/repository"
	"bank-service/internal/usecase/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCurrency = "USD"

// Service implements registration, the two-step login (credentials, then
// OTP), profile updates and transaction-PIN management.
type Service struct {
	registry *repository.RegistryRepository
	creds    *repository.CredentialRepository
	otp      *otp.Service
	logger   *zap.Logger

	secret     []byte
	sessionTTL time.Duration
}

func NewService(
	registry *repository.RegistryRepository,
	creds *repository.CredentialRepository,
	otpSvc *otp.Service,
	logger *zap.Logger,
	secret []byte,
	sessionTTL time.Duration,
) *Service {
	return &Service{
		registry:   registry,
		creds:      creds,
		otp:        otpSvc,
		logger:     logger,
		secret:     secret,
		sessionTTL: sessionTTL,
	}
}

// Register creates a user with a fresh checking and savings account, both at
// zero balance, stores the password hash, and returns the user plus a
// pre-auth token for the OTP step. Duplicate emails (exact, case-sensitive
// match) are rejected without touching the registry.
func (s *Service) Register(ctx context.Context, email, password, name, phone string) (*domain.User, string, error) {
	if email == "" {
		return nil, "", xerrors.ErrEmailRequired
	}
	if password == "" {
		return nil, "", xerrors.ErrPasswordRequired
	}

	now := time.Now()
	user := &domain.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Phone:    phone,
		Currency: defaultCurrency,
		Accounts: []*domain.Account{
			{
				ID:        uuid.NewString(),
				Type:      domain.AccountTypeChecking,
				Name:      "Primary Checking",
				Currency:  defaultCurrency,
				CreatedAt: now,
			},
			{
				ID:        uuid.NewString(),
				Type:      domain.AccountTypeSavings,
				Name:      "Savings Account",
				Currency:  defaultCurrency,
				CreatedAt: now,
			},
		},
		CreatedAt: now,
	}

	created, err := s.registry.CreateUser(user)
	if err != nil {
		return nil, "", err
	}
	if err := s.creds.SetPassword(email, password); err != nil {
		// Roll the registry entry back, otherwise the email is taken by a
		// user nobody can log in as.
		if rbErr := s.registry.Remove(created.ID); rbErr != nil {
			s.logger.Error("failed to roll back registration",
				zap.String("user_id", created.ID), zap.Error(rbErr))
		}
		return nil, "", err
	}

	token, err := s.issueToken(created.ID, StagePreAuth, preAuthTTL)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login verifies credentials and returns the user plus a pre-auth token. A
// missing user and a wrong password surface the same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.registry.GetByEmail(email)
	if err != nil {
		return nil, "", xerrors.ErrInvalidCredentials
	}
	if err := s.creds.VerifyPassword(email, password); err != nil {
		return nil, "", xerrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID, StagePreAuth, preAuthTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("credentials verified", zap.String("user_id", user.ID))
	return user, token, nil
}

// SendOTP issues a one-time code for the user behind the pre-auth token.
func (s *Service) SendOTP(ctx context.Context, userID string) (string, error) {
	user, err := s.registry.GetByID(userID)
	if err != nil {
		return "", err
	}
	return s.otp.Generate(ctx, user.ID, user.Email)
}

// VerifyOTP completes login: on a valid code it returns a full session token
// and the user's transaction history is available to the session.
func (s *Service) VerifyOTP(ctx context.Context, userID, code string) (string, error) {
	if err := s.otp.Verify(ctx, userID, code); err != nil {
		return "", err
	}
	token, err := s.issueToken(userID, StageFull, s.sessionTTL)
	if err != nil {
		return "", err
	}
	s.logger.Info("login completed", zap.String("user_id", userID))
	return token, nil
}

// Logout is observational: sessions are stateless tokens, so the server only
// records the event. The client discards its token.
func (s *Service) Logout(ctx context.Context, userID string) {
	s.logger.Info("logout", zap.String("user_id", userID))
}

// GetUser returns the current registry view of a user.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.registry.GetByID(userID)
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, phone, currency string, profile *domain.Profile) (*domain.User, error) {
	return s.registry.UpdateProfile(userID, name, phone, currency, profile)
}

// SetTransactionPin stores the PIN hash and flips the user's hasSetPin flag.
func (s *Service) SetTransactionPin(ctx context.Context, userID, pin string) error {
	user, err := s.registry.GetByID(userID)
	if err != nil {
		return err
	}
	if err := s.creds.SetPin(user.Email, pin); err != nil {
		return err
	}
	return s.registry.SetHasPin(userID, true)
}

// VerifyTransactionPin checks a PIN against the stored hash.
func (s *Service) VerifyTransactionPin(ctx context.Context, userID, pin string) error {
	user, err := s.registry.GetByID(userID)
	if err != nil {
		return err
	}
	return s.creds.VerifyPin(user.Email, pin)
}
