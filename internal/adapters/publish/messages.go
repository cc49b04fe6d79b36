package publish

import (
	"time"

	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
)

// TimelineAnalyzedEvent is published once per classified timeline.
type TimelineAnalyzedEvent struct {
	Timeline    *codec.Document `json:"timeline"`
	Report      *anomaly.Report `json:"report"`
	PublishedAt time.Time       `json:"published_at"`
}

// AnomalyDetectedEvent is published once per finding.
type AnomalyDetectedEvent struct {
	Timeline    string          `json:"timeline"`
	Anomaly     anomaly.Anomaly `json:"anomaly"`
	PublishedAt time.Time       `json:"published_at"`
}
