package anomaly

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lextri/tritime/internal/domain/temporal"
)

// Rule confidence for the deterministic taxonomy.
const deterministicConfidence = 1.0

// Classifier inspects timelines for temporal anomalies. It is a pure
// reader: classification never mutates the timeline or its points, and the
// same input with the same configuration always yields the same report.
type Classifier struct {
	lagThreshold        time.Duration
	outOfOrderTolerance time.Duration
	workers             int
}

// NewClassifier creates a classifier with the given options. Thresholds are
// explicit values on the classifier rather than process-wide state so calls
// stay pure and testable.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		lagThreshold:        DefaultLagThreshold,
		outOfOrderTolerance: DefaultOutOfOrderTolerance,
		workers:             1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs both passes over the timeline and returns the aggregate
// report. An empty timeline yields an empty report, not an error. Findings
// are ordered deterministically: per-point findings in insertion order
// first, then sequence findings in insertion order.
func (c *Classifier) Classify(ctx context.Context, t *temporal.Timeline) (*Report, error) {
	report := newReport(t.Name())
	points := t.Points()
	if len(points) == 0 {
		return report, nil
	}

	perPoint, err := c.runPointRules(ctx, points)
	if err != nil {
		return nil, err
	}
	for _, findings := range perPoint {
		for _, a := range findings {
			report.add(a)
		}
	}

	for _, a := range c.runSequenceRule(points) {
		report.add(a)
	}
	return report, nil
}

// runPointRules evaluates the per-point rules, fanning out across workers
// when configured. Results are collected per insertion index so the fan-out
// never changes finding order.
func (c *Classifier) runPointRules(ctx context.Context, points []*temporal.Point) ([][]Anomaly, error) {
	perPoint := make([][]Anomaly, len(points))

	if c.workers <= 1 {
		for i, p := range points {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("classification canceled: %w", err)
			}
			perPoint[i] = c.pointFindings(p)
		}
		return perPoint, nil
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				perPoint[i] = c.pointFindings(points[i])
			}
		}()
	}

	var cancelErr error
feed:
	for i := range points {
		if cancelErr = ctx.Err(); cancelErr != nil {
			break feed
		}
		select {
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if cancelErr != nil {
		return nil, fmt.Errorf("classification canceled: %w", cancelErr)
	}
	return perPoint, nil
}

// pointFindings applies the local rules to one point. time_travel and
// ingestion_lag are mutually exclusive on the sign of the delay;
// premature_decision can co-occur with either.
func (c *Classifier) pointFindings(p *temporal.Point) []Anomaly {
	var findings []Anomaly

	delay := p.IngestionDelay()
	switch {
	case delay < 0:
		// Recording happened before the fact was true. Impossible in
		// normal flow, flagged regardless of magnitude.
		findings = append(findings, Anomaly{
			EventID:  p.EventID,
			Type:     TypeTimeTravel,
			Severity: SeverityCritical,
			Description: fmt.Sprintf("transaction time precedes valid time by %s for event %s",
				-delay, p.EventID),
			Confidence: deterministicConfidence,
		})
	case delay > c.lagThreshold:
		severity := SeverityMedium
		if delay > highLagThreshold {
			severity = SeverityHigh
		}
		findings = append(findings, Anomaly{
			EventID:  p.EventID,
			Type:     TypeIngestionLag,
			Severity: severity,
			Description: fmt.Sprintf("lag of %.2f seconds between valid and transaction time for event %s",
				delay.Seconds(), p.EventID),
			Confidence: deterministicConfidence,
		})
	}

	if dd, ok := p.DecisionDelay(); ok && dd < 0 {
		findings = append(findings, Anomaly{
			EventID:  p.EventID,
			Type:     TypePrematureDecision,
			Severity: SeverityHigh,
			Description: fmt.Sprintf("decision made %s before transaction recorded for event %s",
				-dd, p.EventID),
			Confidence: deterministicConfidence,
		})
	}

	return findings
}

// runSequenceRule walks points in insertion order and flags any whose valid
// time falls behind the maximum valid time seen so far by more than the
// tolerance. Ties are not anomalous. This must stay a single ordered scan:
// out of order is defined against insertion history, not a global sort.
func (c *Classifier) runSequenceRule(points []*temporal.Point) []Anomaly {
	var findings []Anomaly
	maxSeen := points[0].ValidTime
	maxSeenID := points[0].EventID

	for _, p := range points[1:] {
		regression := maxSeen.Sub(p.ValidTime)
		if regression > c.outOfOrderTolerance {
			findings = append(findings, Anomaly{
				EventID:  p.EventID,
				Type:     TypeOutOfOrder,
				Severity: SeverityMedium,
				Description: fmt.Sprintf("event %s inserted after %s but its valid time is %.2f seconds earlier",
					p.EventID, maxSeenID, regression.Seconds()),
				Confidence: deterministicConfidence,
			})
		}
		if p.ValidTime.After(maxSeen) {
			maxSeen = p.ValidTime
			maxSeenID = p.EventID
		}
	}
	return findings
}
