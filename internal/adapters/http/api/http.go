// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/lextri/tritime/internal/adapters/repository"
	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the app service.
type Dependencies interface {
	// AnalyzeDocument classifies a submitted interchange document.
	AnalyzeDocument(ctx context.Context, doc *codec.Document) (*anomaly.Report, error)

	// AnalyzeStored classifies a stored timeline and persists the report.
	AnalyzeStored(ctx context.Context, id uuid.UUID) (*anomaly.Report, error)

	// StoreDocument persists an interchange document.
	StoreDocument(ctx context.Context, doc *codec.Document) (uuid.UUID, error)

	// GetTimeline returns a stored timeline as a document.
	GetTimeline(ctx context.Context, id uuid.UUID) (*codec.Document, error)

	// ListTimelines returns stored timeline summaries.
	ListTimelines(ctx context.Context) ([]repository.TimelineInfo, error)

	// Anomalies returns stored findings matching the filter.
	Anomalies(ctx context.Context, filter repository.AnomalyFilter) ([]repository.StoredAnomaly, error)
}

// Server wires HTTP routes for the analyzer API.
type Server struct {
	healthHandler    *HealthHandler
	timelinesHandler *TimelinesHandler
	analyzeHandler   *AnalyzeHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		timelinesHandler: NewTimelinesHandler(deps),
		analyzeHandler:   NewAnalyzeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/timelines", MetricsMiddleware(s.timelinesHandler.HandleTimelines, "timelines"))
	mux.HandleFunc("/timelines/", MetricsMiddleware(s.timelinesHandler.HandleTimelineByID, "timeline"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/anomalies", MetricsMiddleware(s.analyzeHandler.HandleAnomalies, "anomalies"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
