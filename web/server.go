/* server.go
 * Contains the HTTP server: route registration and the Start function that listens for incoming connections
 */

package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fight-records/pkg/logger"
)

const (
	defaultRunTimeout = 5 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

// NewServer creates a Server from cfg
func NewServer(cfg Config) *Server {
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	return &Server{
		api:         cfg.API,
		metrics:     cfg.Metrics,
		defaultBody: cfg.DefaultBody,
		defaultYear: cfg.DefaultYear,
		runTimeout:  timeout,
		log:         logger.Named("web"),
	}
}

// Routes binds every handler to its path
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/records/calculate", s.metrics.Middleware("/records/calculate", s.CalculateRecordsHandler))
	mux.HandleFunc("GET /records", s.metrics.Middleware("/records", s.ListRecordsHandler))
	mux.HandleFunc("GET /records/search", s.metrics.Middleware("/records/search", s.SearchRecordsHandler))
	mux.HandleFunc("GET /records/{body}/{year}/{key}", s.metrics.Middleware("/records/{body}/{year}/{key}", s.GetRecordHandler))
	mux.HandleFunc("POST /events/{id}/import", s.metrics.Middleware("/events/{id}/import", s.ImportEventHandler))
	mux.HandleFunc("GET /healthz", s.HealthHandler)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

// Start serves cfg's routes until ctx is cancelled, then shuts the server down gracefully
func Start(ctx context.Context, cfg Config) error {
	s := NewServer(cfg)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.runTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http_server_listening", logger.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info(ctx, "http_server_stopping")
		return srv.Shutdown(shutdownCtx)
	}
}
