package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/internal/domain/temporal"
)

// MemoryStore implements Store in process memory. Timelines are kept as
// interchange documents so loads rebuild fresh instances instead of sharing
// points with the caller.
type MemoryStore struct {
	mu        sync.RWMutex
	timelines map[uuid.UUID]*memoryRecord
	anomalies []StoredAnomaly
}

type memoryRecord struct {
	doc       *codec.Document
	createdAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{timelines: make(map[uuid.UUID]*memoryRecord)}
}

// SaveTimeline persists a timeline and returns its storage id.
func (s *MemoryStore) SaveTimeline(_ context.Context, t *temporal.Timeline) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.timelines[id] = &memoryRecord{
		doc:       codec.ToDocument(t),
		createdAt: time.Now(),
	}
	return id, nil
}

// LoadTimeline rebuilds a stored timeline.
func (s *MemoryStore) LoadTimeline(_ context.Context, id uuid.UUID) (*temporal.Timeline, error) {
	s.mu.RLock()
	rec, ok := s.timelines[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTimelineNotFound, id)
	}
	return codec.FromDocument(rec.doc)
}

// ListTimelines returns summaries ordered by creation time.
func (s *MemoryStore) ListTimelines(_ context.Context) ([]TimelineInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]TimelineInfo, 0, len(s.timelines))
	for id, rec := range s.timelines {
		infos = append(infos, TimelineInfo{
			ID:         id,
			Name:       rec.doc.Name,
			PointCount: len(rec.doc.Points),
			CreatedAt:  rec.createdAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.Before(infos[j].CreatedAt) })
	return infos, nil
}

// SaveReport persists the findings of one classification run.
func (s *MemoryStore) SaveReport(_ context.Context, timelineID uuid.UUID, report *anomaly.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timelines[timelineID]; !ok {
		return fmt.Errorf("%w: %s", ErrTimelineNotFound, timelineID)
	}
	now := time.Now()
	for _, a := range report.Anomalies {
		s.anomalies = append(s.anomalies, StoredAnomaly{
			Anomaly:    a,
			TimelineID: timelineID,
			DetectedAt: now,
		})
	}
	return nil
}

// Anomalies returns stored findings matching the filter.
func (s *MemoryStore) Anomalies(_ context.Context, filter AnomalyFilter) ([]StoredAnomaly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []StoredAnomaly
	for _, a := range s.anomalies {
		if filter.TimelineID != uuid.Nil && a.TimelineID != filter.TimelineID {
			continue
		}
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		out = append(out, a)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Close releases store resources. A no-op for the in-memory store.
func (s *MemoryStore) Close() {}
