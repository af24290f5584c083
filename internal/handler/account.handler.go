package handler

import (
	"net/http"

	"bank-service/internal/domain"
	"bank-service/internal/middleware"
	"bank-service/internal/pkg/response"
	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/usecase/auth"
	"bank-service/internal/usecase/transfer"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AccountHandler struct {
	auth     *auth.Service
	transfer *transfer.Service
	logger   *zap.Logger
}

func NewAccountHandler(authSvc *auth.Service, transferSvc *transfer.Service, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{auth: authSvc, transfer: transferSvc, logger: logger}
}

type updateProfileRequest struct {
	Name     string          `json:"name,omitempty"`
	Phone    string          `json:"phone,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Profile  *domain.Profile `json:"profile,omitempty"`
}

type setPinRequest struct {
	Pin string `json:"pin"`
}

type fundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
}

type billPayRequest struct {
	Payee  string          `json:"payee"`
	Amount decimal.Decimal `json:"amount"`
}

type depositCheckRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Me returns the authenticated user with accounts and current balances.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.auth.UpdateProfile(r.Context(), userID, req.Name, req.Phone, req.Currency, req.Profile)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *AccountHandler) SetPin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req setPinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Pin) != 4 {
		writeError(w, xerrors.ErrInvalidRequest)
		return
	}
	if err := h.auth.SetTransactionPin(r.Context(), userID, req.Pin); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"has_set_pin": true,
	})
}

func (h *AccountHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req setPinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.auth.VerifyTransactionPin(r.Context(), userID, req.Pin); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"verified": true,
	})
}

// Accounts lists the authenticated user's accounts.
func (h *AccountHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"accounts": user.Accounts,
	})
}

// Fund credits an account from a simulated outside source.
func (h *AccountHandler) Fund(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req fundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tx, err := h.transfer.Fund(r.Context(), userID, chi.URLParam(r, "accountID"), req.Amount, req.Method)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tx)
}

func (h *AccountHandler) BillPay(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req billPayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Payee == "" {
		writeError(w, xerrors.ErrInvalidRequest)
		return
	}
	tx, err := h.transfer.BillPay(r.Context(), userID, chi.URLParam(r, "accountID"), req.Payee, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tx)
}

func (h *AccountHandler) DepositCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req depositCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tx, err := h.transfer.DepositCheck(r.Context(), userID, chi.URLParam(r, "accountID"), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tx)
}
