package handler

import (
	"net/http"

	"bank-service/internal/middleware"
	"bank-service/internal/pkg/response"
	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/usecase/auth"

	"go.uber.org/zap"
)

type AuthHandler struct {
	auth   *auth.Service
	logger *zap.Logger
}

func NewAuthHandler(authSvc *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Code string `json:"code"`
}

// Register creates the user and returns a pre-auth token; the client still
// has to complete the OTP step before it can touch accounts.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"user":           user,
		"pre_auth_token": token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"user":           user,
		"pre_auth_token": token,
	})
}

// SendOTP issues a code for the pre-auth user. The code rides back in the
// response because delivery is simulated.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	code, err := h.auth.SendOTP(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"otp": code,
	})
}

// VerifyOTP swaps a pre-auth token plus a valid code for a full session.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req verifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, err := h.auth.VerifyOTP(r.Context(), userID, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"session_token": token,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.UserID(r.Context()); ok {
		h.auth.Logout(r.Context(), userID)
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"logged_out": true,
	})
}
