// Package repository persists timelines and anomaly reports.
//
// The core never imports this package; stores consume the domain model and
// are selected by the caller (in-memory for batch/CLI work, PostgreSQL when
// a database URL is configured).
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/internal/domain/temporal"
)

// TimelineInfo summarizes a stored timeline.
type TimelineInfo struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PointCount int       `json:"point_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// StoredAnomaly is a persisted finding plus its storage context.
type StoredAnomaly struct {
	anomaly.Anomaly

	TimelineID uuid.UUID `json:"timeline_id"`
	DetectedAt time.Time `json:"detected_at"`
}

// AnomalyFilter narrows Anomalies queries. Zero values mean "no filter".
type AnomalyFilter struct {
	TimelineID uuid.UUID
	Severity   anomaly.Severity
	Limit      int
}

// Store provides read/write access to persisted timelines and reports.
type Store interface {
	// SaveTimeline persists a timeline and returns its storage id.
	SaveTimeline(ctx context.Context, t *temporal.Timeline) (uuid.UUID, error)

	// LoadTimeline rebuilds a stored timeline, preserving insertion order.
	// Returns ErrTimelineNotFound for unknown ids.
	LoadTimeline(ctx context.Context, id uuid.UUID) (*temporal.Timeline, error)

	// ListTimelines returns summaries of all stored timelines.
	ListTimelines(ctx context.Context) ([]TimelineInfo, error)

	// SaveReport persists the findings of one classification run.
	SaveReport(ctx context.Context, timelineID uuid.UUID, report *anomaly.Report) error

	// Anomalies returns stored findings matching the filter.
	Anomalies(ctx context.Context, filter AnomalyFilter) ([]StoredAnomaly, error)

	// Close releases store resources.
	Close()
}
