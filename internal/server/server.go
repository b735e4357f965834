// Package server exposes the classifier over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Veraticus/autocategorize/internal/llm"
	"github.com/Veraticus/autocategorize/internal/metrics"
	"github.com/Veraticus/autocategorize/internal/model"
)

const shutdownTimeout = 10 * time.Second

// Journal records classify calls. SQLiteStorage satisfies it.
type Journal interface {
	SaveEntry(ctx context.Context, entry *model.JournalEntry) error
}

// Server represents the HTTP server for the classifier.
type Server struct {
	classifier llm.Classifier
	journal    Journal
	metrics    *metrics.Metrics
	logger     *slog.Logger
	server     *http.Server
	addr       string
}

// New creates a new HTTP server.
// The journal is optional; if nil, calls are not recorded.
// The metrics is optional; if nil, the /metrics endpoint is not registered.
func New(addr string, classifier llm.Classifier, journal Journal, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:       addr,
		classifier: classifier,
		journal:    journal,
		metrics:    m,
		logger:     logger,
	}
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	classify := handleClassify(s.classifier, s.journal, s.logger)
	mux.Handle("POST /api/v1/classify", metrics.HTTPMetricsMiddleware(s.metrics, "classify")(classify))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return mux
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"addr", s.addr,
			"provider", s.classifier.Provider(),
			"metrics", s.metrics != nil)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
