package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/journal"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/watchlist"
)

type watchlistService interface {
	Create(ctx context.Context, user *model.User, input watchlist.CreateInput) (*model.SavedWatchlist, error)
	Get(ctx context.Context, user *model.User, id string) (*model.SavedWatchlist, error)
	List(ctx context.Context, user *model.User) ([]model.SavedWatchlist, error)
	Update(ctx context.Context, user *model.User, id string, input watchlist.UpdateInput) error
	Delete(ctx context.Context, user *model.User, id string) error
	AddSymbol(ctx context.Context, user *model.User, id, symbol string) error
	RemoveSymbol(ctx context.Context, user *model.User, id, symbol string) error
	LoadTickers(ctx context.Context, user *model.User, id string) (string, error)
}

type createWatchlistResponse struct {
	Watchlist    *model.SavedWatchlist `json:"watchlist"`
	PartialError *partialErrorBody     `json:"partial_error,omitempty"`
}

// CreateWatchlistHandler creates a watchlist and its initial symbols. An
// item failure after the parent committed is reported as 207 so the caller
// can retry the item step.
func CreateWatchlistHandler(svc watchlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		var input watchlist.CreateInput
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&input); err != nil {
			logger.WithError(err).Warn("invalid create watchlist payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		created, err := svc.Create(r.Context(), user, input)

		var partial *journal.PartialWriteError
		if errors.As(err, &partial) {
			writeJSON(w, http.StatusMultiStatus, createWatchlistResponse{
				Watchlist:    created,
				PartialError: partialBody(partial),
			})
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createWatchlistResponse{Watchlist: created})
	}
}

func ListWatchlistsHandler(svc watchlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		watchlists, err := svc.List(r.Context(), user)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, watchlists)
	}
}

func GetWatchlistHandler(svc watchlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		found, err := svc.Get(r.Context(), user, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, found)
	}
}

func UpdateWatchlistHandler(svc watchlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		var input watchlist.UpdateInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if err := svc.Update(r.Context(), user, chi.URLParam(r, "id"), input); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func DeleteWatchlistHandler(svc watchlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		if err := svc.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func AddWatchlistSymbolHandler(svc watchlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		var payload struct {
			Symbol string `json:"symbol"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if err := svc.AddSymbol(r.Context(), user, chi.URLParam(r, "id"), payload.Symbol); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
	}
}

func RemoveWatchlistSymbolHandler(svc watchlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		err := svc.RemoveSymbol(r.Context(), user, chi.URLParam(r, "id"), chi.URLParam(r, "symbol"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

// WatchlistTickersHandler renders a watchlist as a comma-separated ticker
// string for loading into the live watchlist view.
func WatchlistTickersHandler(svc watchlistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		tickers, err := svc.LoadTickers(r.Context(), user, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"tickers": tickers})
	}
}

// DefaultWatchlistService wires the service to the production repository.
func DefaultWatchlistService() *watchlist.Service {
	return watchlist.NewService(repository.NewWatchlistRepository())
}
