// Package temporal contains the tri-temporal data model: points carrying
// valid, transaction and decision timestamps, and the timelines that own them.
package temporal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultEventType is applied when the caller does not categorize a point.
const DefaultEventType = "generic"

// Point represents one observed event in tri-temporal time.
//
// ValidTime is when the fact held true in the domain, TransactionTime is
// when the system recorded it, and DecisionTime (optional) is when an actor
// acted on it. DecisionTime is deliberately unconstrained relative to the
// other two: its position is what the anomaly classifier inspects, so a
// point that violates the natural VT <= TT <= DT order is still well-formed.
type Point struct {
	EventID         string
	ValidTime       time.Time
	TransactionTime time.Time
	DecisionTime    *time.Time
	EventType       string
	Data            map[string]any
}

// PointOption applies a construction option to NewPoint validation.
type PointOption func(*pointValidation)

type pointValidation struct {
	maxSkew time.Duration
	now     func() time.Time
}

// WithMaxSkew bounds how far ValidTime and TransactionTime may sit from the
// current clock during live ingestion. Zero (the default) disables the
// guard, which is required when loading historical timelines. Violations
// fail construction with ErrValidation; this is a garbage-input guard, not
// an anomaly rule.
func WithMaxSkew(d time.Duration) PointOption {
	return func(v *pointValidation) {
		if d > 0 {
			v.maxSkew = d
		}
	}
}

// WithClock overrides the clock used by the skew guard. Intended for tests.
func WithClock(now func() time.Time) PointOption {
	return func(v *pointValidation) {
		if now != nil {
			v.now = now
		}
	}
}

// NewPoint validates and builds a Point. ValidTime and TransactionTime are
// required; a zero value for either fails with ErrValidation. EventID is
// generated when empty, EventType defaults to DefaultEventType, and a nil
// Data map is replaced with an empty one. TransactionTime earlier than
// ValidTime is accepted: flagging it is the classifier's job.
func NewPoint(eventID string, validTime, transactionTime time.Time, opts ...PointOption) (*Point, error) {
	v := &pointValidation{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}

	if validTime.IsZero() {
		return nil, fmt.Errorf("%w: valid_time is required (event %q)", ErrValidation, eventID)
	}
	if transactionTime.IsZero() {
		return nil, fmt.Errorf("%w: transaction_time is required (event %q)", ErrValidation, eventID)
	}

	if v.maxSkew > 0 {
		now := v.now()
		if d := absDuration(validTime.Sub(now)); d > v.maxSkew {
			return nil, fmt.Errorf("%w: valid_time %s from current clock exceeds max skew %s (event %q)",
				ErrValidation, d, v.maxSkew, eventID)
		}
		if d := absDuration(transactionTime.Sub(now)); d > v.maxSkew {
			return nil, fmt.Errorf("%w: transaction_time %s from current clock exceeds max skew %s (event %q)",
				ErrValidation, d, v.maxSkew, eventID)
		}
	}

	if strings.TrimSpace(eventID) == "" {
		eventID = "evt_" + uuid.NewString()
	}

	return &Point{
		EventID:         eventID,
		ValidTime:       validTime,
		TransactionTime: transactionTime,
		EventType:       DefaultEventType,
		Data:            map[string]any{},
	}, nil
}

// WithDecisionTime returns the point with its decision time set.
func (p *Point) WithDecisionTime(dt time.Time) *Point {
	t := dt
	p.DecisionTime = &t
	return p
}

// WithEventType returns the point with a non-default event category.
func (p *Point) WithEventType(eventType string) *Point {
	if eventType != "" {
		p.EventType = eventType
	}
	return p
}

// WithData returns the point with attributes merged into its payload.
func (p *Point) WithData(data map[string]any) *Point {
	for k, val := range data {
		p.Data[k] = val
	}
	return p
}

// IngestionDelay returns TransactionTime - ValidTime. A negative delay means
// the fact was recorded before it was true, which is the time-travel signal.
func (p *Point) IngestionDelay() time.Duration {
	return p.TransactionTime.Sub(p.ValidTime)
}

// DecisionDelay returns DecisionTime - TransactionTime and whether a
// decision time is present. A negative delay means the decision preceded
// the record, which is the premature-decision signal.
func (p *Point) DecisionDelay() (time.Duration, bool) {
	if p.DecisionTime == nil {
		return 0, false
	}
	return p.DecisionTime.Sub(p.TransactionTime), true
}

// Less orders points by ValidTime ascending, with ties broken by EventID so
// the order is total and deterministic.
func (p *Point) Less(other *Point) bool {
	if p.ValidTime.Equal(other.ValidTime) {
		return p.EventID < other.EventID
	}
	return p.ValidTime.Before(other.ValidTime)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
