package handler

import (
	"net/http"

	"bank-service/internal/domain"
	"bank-service/internal/pkg/response"
	"bank-service/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AdminHandler struct {
	registry *repository.RegistryRepository
	logger   *zap.Logger
}

func NewAdminHandler(registry *repository.RegistryRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{registry: registry, logger: logger}
}

type setRestrictionRequest struct {
	Restricted  bool             `json:"restricted"`
	FeeAmount   *decimal.Decimal `json:"fee_amount,omitempty"`
	FeeCurrency string           `json:"fee_currency,omitempty"`
}

// ListUsers returns every registered user with accounts and balances.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.registry.GetAll()
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

// GetUser returns one user by id.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.registry.GetByID(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// SetRestriction places or lifts a transfer hold on a user. An optional fee
// turns the hold into the pay-to-unlock variant.
func (h *AdminHandler) SetRestriction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req setRestrictionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var fee *domain.ConversionFee
	if req.Restricted && req.FeeAmount != nil {
		fee = &domain.ConversionFee{Amount: *req.FeeAmount, Currency: req.FeeCurrency}
	}
	if err := h.registry.SetRestriction(userID, req.Restricted, fee); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("transfer restriction updated",
		zap.String("user_id", userID),
		zap.Bool("restricted", req.Restricted))

	user, err := h.registry.GetByID(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}
