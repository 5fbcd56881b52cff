package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/journal"
	"tradejournal/src/model"
	"tradejournal/src/repository"
)

type tradeJournal interface {
	CreateTrade(ctx context.Context, user *model.User, input journal.CreateTradeInput) (*model.Trade, error)
	UpdateTrade(ctx context.Context, user *model.User, id string, input journal.UpdateTradeInput) (*model.Trade, error)
	GetTrade(ctx context.Context, user *model.User, id string) (*model.Trade, error)
	ListTrades(ctx context.Context, user *model.User, limit, offset int) ([]model.Trade, error)
	DeleteTrade(ctx context.Context, user *model.User, id string) error
	ResolveTag(ctx context.Context, user *model.User, name string) (*model.Tag, error)
}

type createTradeResponse struct {
	Trade        *model.Trade      `json:"trade"`
	PartialError *partialErrorBody `json:"partial_error,omitempty"`
}

// CreateTradeHandler prices and persists a new ledger entry. A tag-link
// failure after the trade row committed is reported as 207 with the
// persisted trade and enough detail to retry the linking step.
func CreateTradeHandler(svc tradeJournal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		var input journal.CreateTradeInput
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&input); err != nil {
			logger.WithError(err).Warn("invalid create trade payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		trade, err := svc.CreateTrade(r.Context(), user, input)

		var partial *journal.PartialWriteError
		if errors.As(err, &partial) {
			writeJSON(w, http.StatusMultiStatus, createTradeResponse{
				Trade:        trade,
				PartialError: partialBody(partial),
			})
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createTradeResponse{Trade: trade})
	}
}

// ListTradesHandler returns the caller's trades newest first, with tags.
func ListTradesHandler(svc tradeJournal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		limit := 50
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		offset := 0
		if offsetParam := r.URL.Query().Get("offset"); offsetParam != "" {
			parsed, err := strconv.Atoi(offsetParam)
			if err != nil || parsed < 0 {
				http.Error(w, "invalid offset", http.StatusBadRequest)
				return
			}
			offset = parsed
		}

		trades, err := svc.ListTrades(r.Context(), user, limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, trades)
	}
}

func GetTradeHandler(svc tradeJournal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		trade, err := svc.GetTrade(r.Context(), user, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, trade)
	}
}

func UpdateTradeHandler(svc tradeJournal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		var input journal.UpdateTradeInput
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&input); err != nil {
			logger.WithError(err).Warn("invalid update trade payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		trade, err := svc.UpdateTrade(r.Context(), user, chi.URLParam(r, "id"), input)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, trade)
	}
}

func DeleteTradeHandler(svc tradeJournal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		if err := svc.DeleteTrade(r.Context(), user, chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ResolveTagHandler maps a free-text tag name to a stable user-owned tag.
func ResolveTagHandler(svc tradeJournal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		var payload struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		tag, err := svc.ResolveTag(r.Context(), user, payload.Name)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tag)
	}
}

// DefaultTradeService wires the journal service to the production repositories.
func DefaultTradeService() *journal.Service {
	return journal.NewService(repository.NewTradeRepository(), repository.NewTagRepository())
}
