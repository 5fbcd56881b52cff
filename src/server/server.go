package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/handler"
	"tradejournal/src/repository"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("\"/healthcheck\" error")
		}
	})

	authn := auth.NewTokenAuthenticator(repository.NewUserRepository())
	tradeSvc := handler.DefaultTradeService()
	watchlistSvc := handler.DefaultWatchlistService()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(authn))

		r.Route("/trades", func(r chi.Router) {
			r.Post("/", handler.CreateTradeHandler(tradeSvc))
			r.Get("/", handler.ListTradesHandler(tradeSvc))
			r.Get("/stats/summary", handler.DefaultTradeStatsHandler())
			r.Get("/{id}", handler.GetTradeHandler(tradeSvc))
			r.Patch("/{id}", handler.UpdateTradeHandler(tradeSvc))
			r.Delete("/{id}", handler.DeleteTradeHandler(tradeSvc))
			r.Get("/{id}/analysis", handler.DefaultTradeAnalysisHandler())
		})

		r.Post("/tags/resolve", handler.ResolveTagHandler(tradeSvc))

		r.Route("/watchlists", func(r chi.Router) {
			r.Post("/", handler.CreateWatchlistHandler(watchlistSvc))
			r.Get("/", handler.ListWatchlistsHandler(watchlistSvc))
			r.Get("/{id}", handler.GetWatchlistHandler(watchlistSvc))
			r.Patch("/{id}", handler.UpdateWatchlistHandler(watchlistSvc))
			r.Delete("/{id}", handler.DeleteWatchlistHandler(watchlistSvc))
			r.Post("/{id}/symbols", handler.AddWatchlistSymbolHandler(watchlistSvc))
			r.Delete("/{id}/symbols/{symbol}", handler.RemoveWatchlistSymbolHandler(watchlistSvc))
			r.Get("/{id}/tickers", handler.WatchlistTickersHandler(watchlistSvc))
		})

		r.Get("/enrich/{ticker}", handler.DefaultEnrichTickerHandler())
		r.Get("/analyze", handler.DefaultAnalyzeTickersHandler())

		r.Post("/uploads/screenshots", handler.DefaultUploadScreenshotHandler())
	})

	return r
}

func StartServer(port string) {
	r := newRouter()

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
