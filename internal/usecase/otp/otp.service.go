package otp

import (
	"context"
	"time"

	"bank-service/internal/notifier"
	"bank-service/internal/pkg/id"
	"bank-service/internal/pkg/xerrors"

	"go.uber.org/zap"
)

const codeLength = 6

// Service issues and verifies one-time passcodes for the login step. Codes
// are single-use: verification deletes the live code before reporting
// success.
type Service struct {
	store    Store
	notifier notifier.Notifier
	logger   *zap.Logger
	ttl      time.Duration
}

func NewService(store Store, n notifier.Notifier, logger *zap.Logger, ttl time.Duration) *Service {
	return &Service{store: store, notifier: n, logger: logger, ttl: ttl}
}

// Generate creates a fresh code for the user, stores it with the configured
// TTL and raises a simulated email alert carrying the code. Delivery is
// simulated, so the code is also returned and rides back in the API response.
func (s *Service) Generate(ctx context.Context, userID, email string) (string, error) {
	code := id.OTPCode(codeLength)
	if err := s.store.Set(ctx, userID, code, s.ttl); err != nil {
		return "", err
	}
	s.logger.Info("otp issued",
		zap.String("user_id", userID),
		zap.Duration("ttl", s.ttl))

	s.notifier.Send(email, notifier.AlertReceipt, map[string]interface{}{
		"type":           "OTP Verification",
		"code":           code,
		"expiry_minutes": int(s.ttl.Minutes()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
	return code, nil
}

// Verify compares the submitted code against the live one and invalidates it
// on success. Expired, missing and mismatched codes all surface the same
// ErrInvalidOTP.
func (s *Service) Verify(ctx context.Context, userID, code string) error {
	val, err := s.store.Get(ctx, userID)
	if err != nil {
		if err == errCodeNotFound {
			return xerrors.ErrInvalidOTP
		}
		return err
	}
	if val != code {
		s.logger.Info("otp verification failed", zap.String("user_id", userID))
		return xerrors.ErrInvalidOTP
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate otp", zap.String("user_id", userID), zap.Error(err))
	}
	s.logger.Info("otp verified", zap.String("user_id", userID))
	return nil
}
