// Package server exposes the catalog, chapters, reading progress and the
// assistant over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bible-study/internal/assistant"
	"bible-study/internal/progress"
	"bible-study/internal/scripture"
)

// Deps are the services the handlers use.
type Deps struct {
	Fetcher    scripture.Fetcher
	Searcher   scripture.Searcher // nil when the source has no index
	Generator  assistant.Generator
	Progress   *progress.Store
	DailyVerse *DailyVerseCache
	Log        *slog.Logger
}

// NewRouter creates the HTTP router with all endpoints.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID(deps.Log))

	h := &handlers{deps: deps}

	router.GET("/healthz", h.health)

	api := router.Group("/api")
	api.GET("/books", h.listBooks)
	api.GET("/books/:book/chapters/:chapter", h.getChapter)
	api.GET("/progress", h.getProgress)
	api.POST("/progress/:book/:chapter/toggle", h.toggleProgress)
	api.GET("/search", h.search)
	api.GET("/daily-verse", h.getDailyVerse)
	api.POST("/explain", h.explain)
	api.POST("/ask", h.ask)

	return router
}

// Serve runs the server on addr until ctx is cancelled, then shuts it down
// gracefully within timeout.
func Serve(ctx context.Context, addr string, handler http.Handler, timeout time.Duration, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server", slog.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
