package auth

import (
	"time"

	"bank-service/internal/pkg/xerrors"

	"github.com/golang-jwt/jwt/v5"
)

// Stage marks how far through login a token's holder is. Pre-auth tokens are
// issued after a credential check and only grant access to the OTP step;
// full tokens are issued after OTP verification.
type Stage string

const (
	StagePreAuth Stage = "otp_pending"
	StageFull    Stage = "full"
)

const preAuthTTL = 10 * time.Minute

func (s *Service) issueToken(userID string, stage Stage, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"stage":   string(stage),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// ParseToken validates signature and expiry and returns the subject and
// stage. Any defect maps to ErrUnauthorized.
func (s *Service) ParseToken(tokenStr string) (string, Stage, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, xerrors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", xerrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", xerrors.ErrUnauthorized
	}
	userID, _ := claims["user_id"].(string)
	stage, _ := claims["stage"].(string)
	if userID == "" || stage == "" {
		return "", "", xerrors.ErrUnauthorized
	}
	return userID, Stage(stage), nil
}
