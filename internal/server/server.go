// Package server exposes a Recommender over HTTP: a JSON API, a Twilio WhatsApp webhook
// and a small HTML form.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/agrobio/biobot/internal/search"
)

// Searcher is the part of recommender.Recommender the handlers need.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]search.Hit, error)
	Len() int
}

// Defaults for Options.
const (
	DefaultMaxK        = 50
	DefaultServiceName = "biobot"
	shutdownTimeout    = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	CORSOrigin     string
	RateLimit      float64 // requests per second; <= 0 disables limiting
	RateBurst      int
	RequestTimeout time.Duration
	ServiceName    string
	MaxK           int
}

// Server serves recommendations over HTTP.
type Server struct {
	rec    Searcher
	opts   Options
	logger *slog.Logger
}

// New returns a Server backed by rec.
func New(rec Searcher, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	if opts.ServiceName == "" {
		opts.ServiceName = DefaultServiceName
	}
	if opts.MaxK <= 0 {
		opts.MaxK = DefaultMaxK
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}
	return &Server{rec: rec, opts: opts, logger: logger.With("component", "http")}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /recommend", s.handleRecommend)
	mux.HandleFunc("POST /whatsapp", s.handleWhatsApp)
	mux.HandleFunc("GET /ui", s.handleUI)
	mux.HandleFunc("POST /ui", s.handleUI)

	var limiter *rate.Limiter
	if s.opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.RateLimit), s.opts.RateBurst)
	}

	return Chain(mux,
		Recover(s.logger),
		OTel(s.opts.ServiceName),
		Logger(s.logger),
		CORS(s.opts.CORSOrigin),
		RateLimit(limiter),
		Timeout(s.opts.RequestTimeout),
	)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server starting", "addr", addr, "records", s.rec.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
