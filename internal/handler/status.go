package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bank-service/internal/pkg/response"
	"bank-service/internal/pkg/xerrors"
)

// writeError maps domain errors onto HTTP statuses. The restricted case
// carries a structured payload so clients can prompt for the conversion fee
// instead of showing a generic failure.
func writeError(w http.ResponseWriter, err error) {
	if re, ok := xerrors.AsRestricted(err); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(response.APIResponse{
			Status:  "error",
			Message: re.Error(),
			Data: map[string]interface{}{
				"restricted": true,
				"reason":     re.Reason,
				"fee":        re.Fee,
				"currency":   re.Currency,
			},
		})
		return
	}
	response.Error(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrInvalidCredentials),
		errors.Is(err, xerrors.ErrInvalidOTP),
		errors.Is(err, xerrors.ErrInvalidPin),
		errors.Is(err, xerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrUserNotFound),
		errors.Is(err, xerrors.ErrAccountNotFound),
		errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrEmailAlreadyInUse),
		errors.Is(err, xerrors.ErrAccountNumberTaken):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrEmailRequired),
		errors.Is(err, xerrors.ErrPasswordRequired),
		errors.Is(err, xerrors.ErrInvalidAccount),
		errors.Is(err, xerrors.ErrInvalidAmount),
		errors.Is(err, xerrors.ErrInsufficientFunds),
		errors.Is(err, xerrors.ErrSameAccount),
		errors.Is(err, xerrors.ErrPinNotSet),
		errors.Is(err, xerrors.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return xerrors.ErrInvalidRequest
	}
	return nil
}
