// Package publish forwards classified timelines to an external
// observability platform over NATS. The core never depends on this package;
// it consumes the interchange document and the anomaly report.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/pkg/metrics"
)

// Subjects the publisher writes to.
const (
	SubjectTimelineAnalyzed = "tritime.timelines.analyzed"
	SubjectAnomalyDetected  = "tritime.anomalies.detected"
)

// Default connection settings.
const (
	defaultClientName    = "tritime-publisher"
	defaultReconnectWait = 2 * time.Second
	defaultConnTimeout   = 5 * time.Second
)

// Config holds NATS connection configuration.
type Config struct {
	// URL is the NATS server URL (e.g. "nats://localhost:4222").
	URL string

	// Name identifies the connection on the server.
	Name string

	// MaxReconnects bounds reconnection attempts. -1 means unlimited.
	MaxReconnects int

	// ReconnectWait is the delay between reconnection attempts.
	ReconnectWait time.Duration

	// Timeout is the connect timeout.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          defaultClientName,
		MaxReconnects: -1,
		ReconnectWait: defaultReconnectWait,
		Timeout:       defaultConnTimeout,
	}
}

// Publisher forwards timelines and findings over a NATS connection.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS with the given configuration.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Name == "" {
		cfg.Name = defaultClientName
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", cfg.URL, err)
	}
	return &Publisher{conn: conn}, nil
}

// PublishAnalyzed forwards one classified timeline: the full document plus
// report on the timeline subject, then one message per finding on the
// anomaly subject.
func (p *Publisher) PublishAnalyzed(ctx context.Context, doc *codec.Document, report *anomaly.Report) error {
	if err := p.publish(ctx, SubjectTimelineAnalyzed, TimelineAnalyzedEvent{
		Timeline:    doc,
		Report:      report,
		PublishedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	for _, a := range report.Anomalies {
		if err := p.publish(ctx, SubjectAnomalyDetected, AnomalyDetectedEvent{
			Timeline:    doc.Name,
			Anomaly:     a,
			PublishedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// publish marshals data to JSON and publishes it to the subject.
func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish to %s canceled: %w", subject, err)
	}
	bytes, err := json.Marshal(data)
	if err != nil {
		metrics.RecordPublishError()
		return fmt.Errorf("marshal message for %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, bytes); err != nil {
		metrics.RecordPublishError()
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
