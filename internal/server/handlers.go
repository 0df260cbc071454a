package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/professor-icebear/Mistral-Fact-Checker/internal/apierr"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/models"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:            "healthy",
		Service:           s.cfg.APITitle,
		Version:           s.cfg.APIVersion,
		MistralConnection: s.connection(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if s.analyzer == nil {
		status = "unhealthy"
	}
	s.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:            status,
		Service:           s.cfg.APITitle,
		Version:           s.cfg.APIVersion,
		MistralConnection: s.connection(),
	})
}

func (s *Server) connection() string {
	if s.analyzer == nil {
		return "disconnected"
	}
	return "connected"
}

func (s *Server) handleFactCheckText(w http.ResponseWriter, r *http.Request) {
	var req models.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apierr.Validation("Invalid request body"))
		return
	}
	if err := req.Validate(s.cfg.MaxTextLength); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.analyzer == nil {
		s.writeError(w, r, apierr.Provider("Mistral client is not initialized"))
		return
	}

	slog.Info("Processing text fact-check request", "request_id", requestID(r))

	result, err := s.analyzer.AnalyzeText(r.Context(), req.Content(), "text")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respond(w, r, result, models.InputText)
}

func (s *Server) handleFactCheckURL(w http.ResponseWriter, r *http.Request) {
	var req models.URLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apierr.Validation("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	slog.Info("Processing URL fact-check request", "url", req.URL, "request_id", requestID(r))

	content, err := s.fetcher.FetchURLContent(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.analyzer == nil {
		s.writeError(w, r, apierr.Provider("Mistral client is not initialized"))
		return
	}

	result, err := s.analyzer.AnalyzeText(r.Context(), content, "webpage")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respond(w, r, result, models.InputURL)
}

func (s *Server) handleFactCheckImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, apierr.Validation("Image file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, apierr.Validation("Failed to read uploaded file"))
		return
	}

	slog.Info("Processing image fact-check request", "filename", header.Filename, "request_id", requestID(r))

	img, err := s.fetcher.ProcessImage(data, header.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.analyzer == nil {
		s.writeError(w, r, apierr.Provider("Mistral client is not initialized"))
		return
	}

	result, err := s.analyzer.AnalyzeImage(r.Context(), img)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respond(w, r, result, models.InputImage)
}

// respond normalizes a parsed analysis and writes the final response. A
// malformed sources list is a provider fault, not a caller fault.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, result models.AnalysisResult, inputType string) {
	resp, err := models.BuildResponse(result, inputType)
	if err != nil {
		s.writeError(w, r, apierr.Provider(err.Error()))
		return
	}

	slog.Info("Fact-check completed", "input_type", inputType, "rating", resp.Rating, "request_id", requestID(r))
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError translates an error into the {"detail": ...} body with the
// status carried by its kind. Anything outside the taxonomy becomes a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		slog.Error("Unhandled error", "path", r.URL.Path, "error", err, "request_id", requestID(r))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
		return
	}

	slog.Error("Request failed", "path", r.URL.Path, "status", apiErr.Status(), "detail", apiErr.Detail, "request_id", requestID(r))
	s.writeJSON(w, apiErr.Status(), map[string]string{"detail": apiErr.Detail})
}
