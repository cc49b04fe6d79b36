package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/lextri/tritime/internal/adapters/repository"
	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
)

// AnalyzeHandler handles classification requests.
type AnalyzeHandler struct {
	deps Dependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

// analyzeRequest accepts either an inline document or a stored timeline id.
type analyzeRequest struct {
	TimelineID string          `json:"timeline_id,omitempty"`
	Timeline   *codec.Document `json:"timeline,omitempty"`
}

func (a analyzeRequest) validate() error {
	if a.TimelineID == "" && a.Timeline == nil {
		return errors.New("either timeline_id or timeline is required")
	}
	if a.TimelineID != "" && a.Timeline != nil {
		return errors.New("timeline_id and timeline are mutually exclusive")
	}
	return nil
}

// HandleAnalyze handles POST /analyze requests.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}

	var report *anomaly.Report
	var err error
	if req.Timeline != nil {
		report, err = h.deps.AnalyzeDocument(r.Context(), req.Timeline)
	} else {
		var id uuid.UUID
		id, err = uuid.Parse(req.TimelineID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
			return
		}
		report, err = h.deps.AnalyzeStored(r.Context(), id)
	}
	if err != nil {
		switch {
		case errors.Is(err, codec.ErrMalformedDocument):
			writeError(w, http.StatusBadRequest, "malformed_document", err)
		case errors.Is(err, repository.ErrTimelineNotFound):
			writeError(w, http.StatusNotFound, "not_found", err)
		default:
			writeError(w, http.StatusInternalServerError, "analyze_failed", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleAnomalies handles GET /anomalies with optional timeline_id,
// severity and limit query parameters.
func (h *AnalyzeHandler) HandleAnomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	filter := repository.AnomalyFilter{}
	q := r.URL.Query()
	if idStr := q.Get("timeline_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
			return
		}
		filter.TimelineID = id
	}
	if sev := q.Get("severity"); sev != "" {
		filter.Severity = anomaly.Severity(sev)
	}

	found, err := h.deps.Anomalies(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}
