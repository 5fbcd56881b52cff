package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/journal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// writeServiceError maps journal error taxonomy onto HTTP statuses.
// Store-level errors keep their message out of the response body but are
// logged with full detail for diagnostics.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, journal.ErrUnauthenticated):
		http.Error(w, "Please sign in", http.StatusUnauthorized)
	case errors.Is(err, journal.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, journal.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.WithError(err).Error("request failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

type partialErrorBody struct {
	ParentID string `json:"parent_id"`
	Step     string `json:"step"`
	Detail   string `json:"detail"`
}

func partialBody(err *journal.PartialWriteError) *partialErrorBody {
	return &partialErrorBody{
		ParentID: err.ParentID,
		Step:     err.Step,
		Detail:   err.Err.Error(),
	}
}
