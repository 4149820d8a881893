// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/files"
	"github.com/matthewbaird/autoboard/internal/handler"
	"github.com/matthewbaird/autoboard/internal/records"
	"github.com/matthewbaird/autoboard/internal/schema"
	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/wire"
	"github.com/matthewbaird/autoboard/internal/wizard"
)

// Config holds server configuration.
type Config struct {
	Addr    string
	Service *service.BoardService
	Checker *schema.Checker
	Wizards *wizard.Manager
	Records *records.Service
	Files   *files.Service
	Logger  *zap.Logger
}

// NewRouter registers every route on a chi router.
func NewRouter(cfg Config) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger.Named("http")))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/api/field-types", handler.FieldTypes)

	handler.NewBoardHandler(cfg.Service, logger).Routes(r)
	if cfg.Wizards != nil {
		handler.NewWizardHandler(cfg.Wizards, logger).Routes(r)
	}
	if cfg.Records != nil {
		handler.NewRecordHandler(cfg.Records, logger).Routes(r)
	}
	if cfg.Files != nil {
		handler.NewFileHandler(cfg.Files, logger).Routes(r)
	}
	r.Handle("/ws/preview", wire.NewHandler(cfg.Service, cfg.Checker, logger))
	return r
}

// accessLog logs one line per request.
func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
