package handler

import (
	"net/http"

	"bank-service/internal/middleware"
	"bank-service/internal/pkg/response"
	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/repository"

	"go.uber.org/zap"
)

type TransactionHandler struct {
	ledger *repository.LedgerRepository
	logger *zap.Logger
}

func NewTransactionHandler(ledger *repository.LedgerRepository, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, logger: logger}
}

// List returns the caller's transaction history, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, xerrors.ErrUnauthorized)
		return
	}
	txns, err := h.ledger.List(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txns,
		"count":        len(txns),
	})
}
