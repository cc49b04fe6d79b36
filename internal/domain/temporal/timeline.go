package temporal

import (
	"fmt"
	"sort"
	"time"
)

// Timeline is a named, insertion-ordered collection of points. Insertion
// order records the order events were transacted, independent of their
// ValidTime ordering, and is what out-of-order detection walks.
//
// A timeline exclusively owns its points and assumes single-writer access;
// callers that share one instance across goroutines must serialize AddPoint
// themselves.
type Timeline struct {
	name     string
	points   []*Point
	byID     map[string]struct{}
	metadata map[string]any
}

// NewTimeline creates an empty timeline with the given display name.
func NewTimeline(name string) *Timeline {
	return &Timeline{
		name:     name,
		byID:     make(map[string]struct{}),
		metadata: make(map[string]any),
	}
}

// Name returns the timeline's display label.
func (t *Timeline) Name() string { return t.name }

// AddPoint appends a point in call order. It fails with ErrDuplicateID when
// the event id is already present. O(1) amortized via the id index.
func (t *Timeline) AddPoint(p *Point) error {
	if _, exists := t.byID[p.EventID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, p.EventID)
	}
	t.byID[p.EventID] = struct{}{}
	t.points = append(t.points, p)
	return nil
}

// Points returns the points in insertion order. The returned slice is a
// copy; the points themselves are shared and must not be mutated.
func (t *Timeline) Points() []*Point {
	out := make([]*Point, len(t.points))
	copy(out, t.points)
	return out
}

// Point returns the point with the given event id, if present.
func (t *Timeline) Point(eventID string) (*Point, bool) {
	if _, exists := t.byID[eventID]; !exists {
		return nil, false
	}
	for _, p := range t.points {
		if p.EventID == eventID {
			return p, true
		}
	}
	return nil, false
}

// SortedByValidTime returns a fresh slice ordered by Point.Less. The stored
// insertion order is never mutated, so the sequence is restartable: every
// call sorts a new copy.
func (t *Timeline) SortedByValidTime() []*Point {
	sorted := t.Points()
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})
	return sorted
}

// PointCount returns the number of points in the timeline.
func (t *Timeline) PointCount() int { return len(t.points) }

// TimeSpan returns the minimum and maximum ValidTime across all points. It
// fails with ErrEmptyTimeline when the timeline has no points.
func (t *Timeline) TimeSpan() (start, end time.Time, err error) {
	if len(t.points) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: time_span on %q", ErrEmptyTimeline, t.name)
	}
	start, end = t.points[0].ValidTime, t.points[0].ValidTime
	for _, p := range t.points[1:] {
		if p.ValidTime.Before(start) {
			start = p.ValidTime
		}
		if p.ValidTime.After(end) {
			end = p.ValidTime
		}
	}
	return start, end, nil
}

// SetMetadata attaches a caller annotation to the timeline.
func (t *Timeline) SetMetadata(key string, value any) {
	t.metadata[key] = value
}

// Metadata returns a copy of the timeline annotations.
func (t *Timeline) Metadata() map[string]any {
	out := make(map[string]any, len(t.metadata))
	for k, v := range t.metadata {
		out[k] = v
	}
	return out
}
