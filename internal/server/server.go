// Package server exposes the fact-check HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/professor-icebear/Mistral-Fact-Checker/internal/config"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/fetcher"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/models"
)

// Analyzer is the model gateway used by the fact-check handlers. It is an
// interface so tests can substitute a fake; nil means the Mistral client
// failed to initialize at startup.
type Analyzer interface {
	AnalyzeText(ctx context.Context, content, contentKind string) (models.AnalysisResult, error)
	AnalyzeImage(ctx context.Context, img models.EncodedImage) (models.AnalysisResult, error)
}

type Server struct {
	cfg      config.Config
	analyzer Analyzer
	fetcher  *fetcher.Fetcher
	httpSrv  *http.Server
}

func New(cfg config.Config, analyzer Analyzer, f *fetcher.Fetcher) *Server {
	return &Server{
		cfg:      cfg,
		analyzer: analyzer,
		fetcher:  f,
	}
}

// Start sets up routes and runs the HTTP server until shutdown.
func (s *Server) Start() error {
	addr := s.cfg.Addr()
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.handler(),
		// The write timeout must outlast a full provider round trip.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(s.cfg.MistralTimeoutSeconds+60) * time.Second,
	}

	slog.Info("Starting server", "addr", addr)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)
	return recoveryMiddleware(requestIDMiddleware(loggingMiddleware(s.corsMiddleware(mux))))
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/fact-check/text", s.handleFactCheckText)
	mux.HandleFunc("POST /api/fact-check/url", s.handleFactCheckURL)
	mux.HandleFunc("POST /api/fact-check/image", s.handleFactCheckImage)
}
