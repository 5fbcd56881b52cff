package handler

import (
	"context"
	"net/http"
	"time"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/stats"
)

type statsSource interface {
	StatsProjection(ctx context.Context, userID string) ([]model.TradeProjection, error)
}

// TradeStatsHandler recomputes the summary statistics from the live trade
// set on every request; nothing is cached.
func TradeStatsHandler(repo statsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Please sign in", http.StatusUnauthorized)
			return
		}

		projections, err := repo.StatsProjection(r.Context(), user.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, stats.Compute(projections, time.Now()))
	}
}

// DefaultTradeStatsHandler wires the handler to the production repository.
func DefaultTradeStatsHandler() http.HandlerFunc {
	return TradeStatsHandler(repository.NewTradeRepository())
}
