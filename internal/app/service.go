// Package app provides the core service that wires the classifier, the
// timeline store and the publisher behind one facade for the HTTP surface
// and the serve command.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lextri/tritime/internal/adapters/publish"
	"github.com/lextri/tritime/internal/adapters/repository"
	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/internal/domain/temporal"
	"github.com/lextri/tritime/pkg/logger"
	"github.com/lextri/tritime/pkg/metrics"
)

// Service implements the dependencies of the HTTP API.
type Service struct {
	classifier *anomaly.Classifier
	store      repository.Store
	publisher  *publish.Publisher
	logger     logger.Logger
	pointOpts  []temporal.PointOption

	// Start-time configuration.
	databaseURL    string
	natsURL        string
	publishEnabled bool

	started bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClassifier sets the classifier. A default-configured one is used
// otherwise.
func WithClassifier(c *anomaly.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithStore injects a pre-built timeline store, bypassing the database URL.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDatabaseURL selects the PostgreSQL store at Start.
func WithDatabaseURL(url string) Option {
	return func(s *Service) { s.databaseURL = url }
}

// WithPublishing enables NATS forwarding of classified timelines.
func WithPublishing(natsURL string) Option {
	return func(s *Service) {
		s.publishEnabled = true
		s.natsURL = natsURL
	}
}

// WithMaxSkew bounds incoming timestamps against the current clock on the
// ingestion paths. Documents carrying timestamps further from now than the
// bound are rejected as malformed. Off unless set.
func WithMaxSkew(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pointOpts = append(s.pointOpts, temporal.WithMaxSkew(d))
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a service with the given options.
func New(opts ...Option) *Service {
	s := &Service{
		classifier: anomaly.NewClassifier(),
		logger:     logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start connects the configured adapters. The in-memory store is used when
// no database URL and no explicit store were provided.
func (s *Service) Start(ctx context.Context) error {
	if s.started {
		return nil
	}

	if s.store == nil {
		if s.databaseURL != "" {
			store, err := repository.NewPostgresStore(ctx, s.databaseURL)
			if err != nil {
				return fmt.Errorf("start timeline store: %w", err)
			}
			s.store = store
			s.logger.Info(ctx, "using postgres timeline store")
		} else {
			s.store = repository.NewMemoryStore()
			s.logger.Info(ctx, "using in-memory timeline store")
		}
	}

	if s.publishEnabled && s.publisher == nil {
		cfg := publish.DefaultConfig()
		cfg.URL = s.natsURL
		pub, err := publish.NewPublisher(cfg)
		if err != nil {
			return fmt.Errorf("start publisher: %w", err)
		}
		s.publisher = pub
		s.logger.Info(ctx, "publishing enabled", logger.String("nats_url", cfg.URL))
	}

	s.started = true
	return nil
}

// Stop releases adapter resources.
func (s *Service) Stop() {
	if s.store != nil {
		s.store.Close()
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.started = false
}

// AnalyzeDocument classifies an interchange document and returns the report.
// When publishing is enabled, the classified timeline is forwarded before
// the report is returned; a publish failure is logged and counted but does
// not fail the analysis.
func (s *Service) AnalyzeDocument(ctx context.Context, doc *codec.Document) (*anomaly.Report, error) {
	t, err := codec.FromDocument(doc, s.pointOpts...)
	if err != nil {
		return nil, err
	}
	return s.analyzeTimeline(ctx, t, doc)
}

// AnalyzeStored loads a stored timeline, classifies it, and persists the
// resulting report alongside it. Stored timelines are already validated, so
// the ingestion skew guard does not apply here.
func (s *Service) AnalyzeStored(ctx context.Context, id uuid.UUID) (*anomaly.Report, error) {
	t, err := s.store.LoadTimeline(ctx, id)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	report, err := s.analyzeTimeline(ctx, t, codec.ToDocument(t))
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveReport(ctx, id, report); err != nil {
		metrics.RecordStoreError()
		return nil, err
	}
	return report, nil
}

func (s *Service) analyzeTimeline(ctx context.Context, t *temporal.Timeline, doc *codec.Document) (*anomaly.Report, error) {
	start := time.Now()
	report, err := s.classifier.Classify(ctx, t)
	if err != nil {
		return nil, err
	}
	metrics.RecordClassifyDuration(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.RecordTimelineAnalyzed(t.PointCount())
	for _, a := range report.Anomalies {
		metrics.RecordAnomaly(string(a.Type), string(a.Severity))
	}

	if s.publisher != nil {
		if perr := s.publisher.PublishAnalyzed(ctx, doc, report); perr != nil {
			s.logger.Warn(ctx, "publish failed", logger.Error(perr))
		}
	}
	return report, nil
}

// StoreDocument persists an interchange document and returns its storage id.
func (s *Service) StoreDocument(ctx context.Context, doc *codec.Document) (uuid.UUID, error) {
	t, err := codec.FromDocument(doc, s.pointOpts...)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := s.store.SaveTimeline(ctx, t)
	if err != nil {
		metrics.RecordStoreError()
		return uuid.Nil, err
	}
	return id, nil
}

// GetTimeline returns a stored timeline as an interchange document.
func (s *Service) GetTimeline(ctx context.Context, id uuid.UUID) (*codec.Document, error) {
	t, err := s.store.LoadTimeline(ctx, id)
	if err != nil {
		return nil, err
	}
	return codec.ToDocument(t), nil
}

// ListTimelines returns summaries of stored timelines.
func (s *Service) ListTimelines(ctx context.Context) ([]repository.TimelineInfo, error) {
	return s.store.ListTimelines(ctx)
}

// Anomalies returns stored findings matching the filter.
func (s *Service) Anomalies(ctx context.Context, filter repository.AnomalyFilter) ([]repository.StoredAnomaly, error) {
	return s.store.Anomalies(ctx, filter)
}
