package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/robofleet/internal/domain"
)

// ошибки наружу уходят единым конвертом {"message": "..."}
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// writeDomainError маппит таксономию ошибок ядра на HTTP-статусы:
// NotFound -> 404, нарушения валидации -> 400, остальное -> 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrUserTaken),
		errors.Is(err, domain.ErrRobotMissing),
		errors.Is(err, domain.ErrNothingToUpdate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
