package handler

import (
	"net/http"

	"bank-service/internal/middleware"
	"bank-service/internal/pkg/response"
	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/usecase/transfer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransferHandler struct {
	transfer *transfer.Service
	logger   *zap.Logger
}

func NewTransferHandler(transferSvc *transfer.Service, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{transfer: transferSvc, logger: logger}
}

type internalTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Memo          string          `json:"memo,omitempty"`
}

type accountNumberTransferRequest struct {
	FromAccountID   string          `json:"from_account_id"`
	ToAccountNumber string          `json:"to_account_number"`
	Amount          decimal.Decimal `json:"amount"`
	Memo            string          `json:"memo,omitempty"`
}

type externalTransferRequest struct {
	FromAccountID string                    `json:"from_account_id"`
	Recipient     transfer.RecipientDetails `json:"recipient"`
	Amount        decimal.Decimal           `json:"amount"`
	Memo          string                    `json:"memo,omitempty"`
}

// Internal moves funds between two of the caller's own accounts.
func (h *TransferHandler) Internal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req internalTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.transfer.TransferInternal(r.Context(), userID, req.FromAccountID, req.ToAccountID, req.Amount, req.Memo)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// ByAccountNumber resolves the destination by number. Unknown numbers fall
// through to the external path with a single pending debit.
func (h *TransferHandler) ByAccountNumber(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req accountNumberTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ToAccountNumber == "" {
		writeError(w, xerrors.ErrInvalidRequest)
		return
	}
	res, err := h.transfer.TransferToAccountNumber(r.Context(), userID, req.FromAccountID, req.ToAccountNumber, req.Amount, req.Memo)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// External records a debit toward a destination outside the ledger.
func (h *TransferHandler) External(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	var req externalTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Recipient.RecipientName == "" || req.Recipient.AccountNumber == "" {
		writeError(w, xerrors.ErrInvalidRequest)
		return
	}
	res, err := h.transfer.TransferExternal(r.Context(), userID, req.FromAccountID, req.Recipient, req.Amount, req.Memo)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// Restrictions reports the caller's transfer hold state so clients can show
// the fee prompt before attempting a transfer.
func (h *TransferHandler) Restrictions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	restriction, err := h.transfer.CheckRestrictions(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, restriction)
}
