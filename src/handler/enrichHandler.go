package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/enrich"
	"tradejournal/src/model"
)

type tickerEnricher interface {
	Enrich(ctx context.Context, ticker string) (*model.MarketSnapshot, error)
}

// EnrichTickerHandler exposes the raw enrichment pipeline for a single
// ticker. Failures come back as an inline error field, which downstream
// consumers treat as a degraded-path trigger.
func EnrichTickerHandler(enricher tickerEnricher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticker := chi.URLParam(r, "ticker")

		snapshot, err := enricher.Enrich(r.Context(), ticker)
		if err != nil {
			logger.WithError(err).WithField("ticker", ticker).Warn("ticker enrichment failed")
			writeJSON(w, http.StatusOK, map[string]string{
				"error": fmt.Sprintf("Failed to enrich ticker %s: %v", ticker, err),
			})
			return
		}

		writeJSON(w, http.StatusOK, snapshot)
	}
}

const maxAnalyzeTickers = 10

// AnalyzeTickersHandler enriches a comma-separated batch of tickers,
// skipping the ones that fail.
func AnalyzeTickersHandler(enricher tickerEnricher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("tickers")

		tickers := make([]string, 0)
		for _, t := range strings.Split(raw, ",") {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t != "" {
				tickers = append(tickers, t)
			}
		}

		if len(tickers) == 0 {
			http.Error(w, "No valid tickers provided", http.StatusBadRequest)
			return
		}
		if len(tickers) > maxAnalyzeTickers {
			http.Error(w, fmt.Sprintf("Maximum %d tickers allowed", maxAnalyzeTickers), http.StatusBadRequest)
			return
		}

		results := make([]*model.MarketSnapshot, 0, len(tickers))
		for _, ticker := range tickers {
			snapshot, err := enricher.Enrich(r.Context(), ticker)
			if err != nil {
				logger.WithError(err).WithField("ticker", ticker).Warn("skipping failed ticker")
				continue
			}
			results = append(results, snapshot)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
	}
}

// DefaultEnrichTickerHandler wires the handler to the production enricher.
func DefaultEnrichTickerHandler() http.HandlerFunc {
	return EnrichTickerHandler(enrich.NewDefaultEnricher())
}

// DefaultAnalyzeTickersHandler wires the handler to the production enricher.
func DefaultAnalyzeTickersHandler() http.HandlerFunc {
	return AnalyzeTickersHandler(enrich.NewDefaultEnricher())
}
