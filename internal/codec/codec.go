// Package codec converts timelines to and from the canonical interchange
// document, the sole durable format promised to other tools: a JSON object
// with top-level name, points (ordered) and metadata keys.
package codec

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lextri/tritime/internal/domain/temporal"
)

// File permission for saved timeline documents.
const documentFilePermission = 0o600

// Document is the top-level interchange shape.
type Document struct {
	Name     string         `json:"name"`
	Points   []PointRecord  `json:"points"`
	Metadata map[string]any `json:"metadata"`
}

// PointRecord is one point inside a document. Timestamps are RFC 3339
// strings; DecisionTime is null when the event carries no decision.
type PointRecord struct {
	EventID         string         `json:"event_id"`
	ValidTime       string         `json:"valid_time"`
	TransactionTime string         `json:"transaction_time"`
	DecisionTime    *string        `json:"decision_time"`
	EventType       string         `json:"event_type"`
	Data            map[string]any `json:"data"`
}

// ToDocument produces the interchange document for a timeline, preserving
// insertion order. A created timestamp and point_count are injected into
// metadata when the timeline does not already carry them.
func ToDocument(t *temporal.Timeline) *Document {
	points := t.Points()
	records := make([]PointRecord, 0, len(points))
	for _, p := range points {
		rec := PointRecord{
			EventID:         p.EventID,
			ValidTime:       p.ValidTime.Format(time.RFC3339Nano),
			TransactionTime: p.TransactionTime.Format(time.RFC3339Nano),
			EventType:       p.EventType,
			Data:            p.Data,
		}
		if p.DecisionTime != nil {
			dt := p.DecisionTime.Format(time.RFC3339Nano)
			rec.DecisionTime = &dt
		}
		records = append(records, rec)
	}

	metadata := t.Metadata()
	if _, ok := metadata["created"]; !ok {
		metadata["created"] = time.Now().Format(time.RFC3339Nano)
	}
	metadata["point_count"] = len(points)

	return &Document{
		Name:     t.Name(),
		Points:   records,
		Metadata: metadata,
	}
}

// FromDocument rebuilds a timeline from a document. Points missing a
// required timestamp, or carrying one that does not parse, fail with
// ErrMalformedDocument naming the offending event and field. Insertion
// order follows the document's point array exactly. Point options, such as
// the live-ingestion skew guard, are applied to every rebuilt point.
func FromDocument(doc *Document, opts ...temporal.PointOption) (*temporal.Timeline, error) {
	t := temporal.NewTimeline(doc.Name)
	for k, v := range doc.Metadata {
		t.SetMetadata(k, v)
	}

	for i, rec := range doc.Points {
		vt, err := parseRequired(rec.ValidTime, "valid_time", rec.EventID, i)
		if err != nil {
			return nil, err
		}
		tt, err := parseRequired(rec.TransactionTime, "transaction_time", rec.EventID, i)
		if err != nil {
			return nil, err
		}

		p, err := temporal.NewPoint(rec.EventID, vt, tt, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		if rec.DecisionTime != nil {
			dt, perr := time.Parse(time.RFC3339Nano, *rec.DecisionTime)
			if perr != nil {
				return nil, fmt.Errorf("%w: unparseable decision_time %q (event %q)",
					ErrMalformedDocument, *rec.DecisionTime, rec.EventID)
			}
			p.WithDecisionTime(dt)
		}
		p.WithEventType(rec.EventType).WithData(rec.Data)

		if err := t.AddPoint(p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
	}
	return t, nil
}

// Marshal encodes a timeline document as indented JSON bytes.
func Marshal(t *temporal.Timeline) ([]byte, error) {
	data, err := json.MarshalIndent(ToDocument(t), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode timeline %q: %w", t.Name(), err)
	}
	return data, nil
}

// Unmarshal decodes JSON bytes into a timeline.
func Unmarshal(data []byte) (*temporal.Timeline, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return FromDocument(&doc)
}

// SaveFile writes a timeline document to path.
func SaveFile(t *temporal.Timeline, path string) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, documentFilePermission); err != nil {
		return fmt.Errorf("write timeline %q to %s: %w", t.Name(), path, err)
	}
	return nil
}

// LoadFile reads a timeline document from path.
func LoadFile(path string) (*temporal.Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline from %s: %w", path, err)
	}
	return Unmarshal(data)
}

func parseRequired(value, field, eventID string, index int) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: point %d missing %s (event %q)",
			ErrMalformedDocument, index, field, eventID)
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unparseable %s %q (event %q)",
			ErrMalformedDocument, field, value, eventID)
	}
	return ts, nil
}
