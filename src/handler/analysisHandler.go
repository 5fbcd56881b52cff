package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tradejournal/src/analysis"
	"tradejournal/src/auth"
	"tradejournal/src/enrich"
	"tradejournal/src/model"
	"tradejournal/src/repository"
)

type tradeAnalyzer interface {
	Analyze(ctx context.Context, user *model.User, tradeID string) (*model.TradeAnalysis, error)
}

// TradeAnalysisHandler merges a stored trade with a fresh market snapshot.
// Market-data failures never surface here; the analyzer degrades internally.
func TradeAnalysisHandler(analyzer tradeAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.GetUserFromContext(r.Context())

		result, err := analyzer.Analyze(r.Context(), user, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// DefaultTradeAnalysisHandler wires the analyzer to the production
// repository and enrichment pipeline.
func DefaultTradeAnalysisHandler() http.HandlerFunc {
	return TradeAnalysisHandler(analysis.NewAnalyzer(
		repository.NewTradeRepository(),
		enrich.NewDefaultEnricher(),
	))
}
