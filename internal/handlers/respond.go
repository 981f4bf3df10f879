// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ammerola/storefront-be/internal/core/domain"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "err", err)
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(dst)
}

// statusFor maps domain errors onto HTTP statuses. Anything unrecognised is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidVariant),
		errors.Is(err, domain.ErrInvalidCheckout),
		errors.Is(err, domain.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
