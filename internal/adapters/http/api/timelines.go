package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lextri/tritime/internal/adapters/repository"
	"github.com/lextri/tritime/internal/codec"
)

// TimelinesHandler handles timeline storage requests.
type TimelinesHandler struct {
	deps Dependencies
}

// NewTimelinesHandler creates a new timelines handler.
func NewTimelinesHandler(deps Dependencies) *TimelinesHandler {
	return &TimelinesHandler{deps: deps}
}

type storeResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PointCount int    `json:"point_count"`
}

// HandleTimelines handles POST /timelines (store a document) and
// GET /timelines (list summaries).
func (h *TimelinesHandler) HandleTimelines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var doc codec.Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
			return
		}
		id, err := h.deps.StoreDocument(r.Context(), &doc)
		if err != nil {
			if errors.Is(err, codec.ErrMalformedDocument) {
				writeError(w, http.StatusBadRequest, "malformed_document", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "store_failed", err)
			return
		}
		writeJSON(w, http.StatusCreated, storeResponse{
			ID:         id.String(),
			Name:       doc.Name,
			PointCount: len(doc.Points),
		})

	case http.MethodGet:
		infos, err := h.deps.ListTimelines(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list_failed", err)
			return
		}
		writeJSON(w, http.StatusOK, infos)

	default:
		http.NotFound(w, r)
	}
}

// HandleTimelineByID handles GET /timelines/{id}.
func (h *TimelinesHandler) HandleTimelineByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/timelines/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}

	doc, err := h.deps.GetTimeline(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTimelineNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "load_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
