// Package seeder generates example timelines for demonstrations and tests.
//
// The generated shape is deterministic: n well-behaved points followed by
// three seeded anomalies (time travel, premature decision, large ingestion
// lag). Point payloads carry randomized attributes so downstream consumers
// see realistic data.
package seeder

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/lextri/tritime/internal/domain/temporal"
)

// Shape of the generated timeline.
const (
	defaultNormalPoints = 5
	normalSpacing       = 10 * time.Minute
	normalIngestDelay   = 30 * time.Second
	normalDecisionDelay = 15 * time.Second
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithNormalPoints sets how many well-behaved points precede the anomalies.
func WithNormalPoints(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.normalPoints = n
		}
	}
}

// WithBaseTime anchors the timeline instead of the current clock. Useful
// for reproducible fixtures.
func WithBaseTime(t time.Time) Option {
	return func(g *Generator) {
		if !t.IsZero() {
			g.base = t
		}
	}
}

// WithSeed makes the generated payload attributes reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.faker = gofakeit.New(seed)
	}
}

// Generator builds example timelines.
type Generator struct {
	normalPoints int
	base         time.Time
	faker        *gofakeit.Faker
}

// NewGenerator creates a generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		normalPoints: defaultNormalPoints,
		base:         time.Now().UTC().Truncate(time.Second),
		faker:        gofakeit.New(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ExampleTimeline generates a timeline containing normal flow followed by
// one of each seeded anomaly.
func (g *Generator) ExampleTimeline(name string) (*temporal.Timeline, error) {
	if name == "" {
		name = "Example Timeline"
	}
	t := temporal.NewTimeline(name)

	for i := 0; i < g.normalPoints; i++ {
		vt := g.base.Add(time.Duration(i) * normalSpacing)
		tt := vt.Add(normalIngestDelay)
		p, err := temporal.NewPoint(fmt.Sprintf("evt_%d", i+1), vt, tt)
		if err != nil {
			return nil, err
		}
		p.WithDecisionTime(tt.Add(normalDecisionDelay)).
			WithEventType("status_update").
			WithData(map[string]any{
				"status":  "normal",
				"value":   i * 100,
				"source":  g.faker.AppName(),
				"actor":   g.faker.Username(),
				"comment": g.faker.HackerPhrase(),
			})
		if err := t.AddPoint(p); err != nil {
			return nil, err
		}
	}

	// Transaction recorded five minutes before the fact was true.
	if err := g.addAnomalyPoint(t, "evt_anomaly_1", "time_travel",
		g.base.Add(60*time.Minute), g.base.Add(55*time.Minute),
		ptr(g.base.Add(65*time.Minute))); err != nil {
		return nil, err
	}

	// Decision taken five minutes before the record existed.
	if err := g.addAnomalyPoint(t, "evt_anomaly_2", "premature_decision",
		g.base.Add(70*time.Minute), g.base.Add(80*time.Minute),
		ptr(g.base.Add(75*time.Minute))); err != nil {
		return nil, err
	}

	// Five and a half minutes of ingestion lag.
	if err := g.addAnomalyPoint(t, "evt_anomaly_3", "large_lag",
		g.base.Add(90*time.Minute), g.base.Add(95*time.Minute+30*time.Second),
		ptr(g.base.Add(96*time.Minute))); err != nil {
		return nil, err
	}

	return t, nil
}

func (g *Generator) addAnomalyPoint(t *temporal.Timeline, id, kind string, vt, tt time.Time, dt *time.Time) error {
	p, err := temporal.NewPoint(id, vt, tt)
	if err != nil {
		return err
	}
	if dt != nil {
		p.WithDecisionTime(*dt)
	}
	p.WithEventType("status_update").WithData(map[string]any{
		"status": "anomaly",
		"type":   kind,
		"source": g.faker.AppName(),
		"actor":  g.faker.Username(),
	})
	return t.AddPoint(p)
}

func ptr(t time.Time) *time.Time { return &t }
