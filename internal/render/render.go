// Package render draws a timeline and its anomaly report as a text chart.
//
// Rendering is a strict consumer of the core data model: it degrades
// independently (ErrUnavailable) and the core never depends on it.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/internal/domain/temporal"
)

// Sentinel kinds for renderer errors.
var (
	ErrUnavailable = errors.New("renderer unavailable")
)

// Column layout constants for tabwriter.
const (
	minColumnWidth = 2
	columnPadding  = 2
)

const timeLayout = "2006-01-02 15:04:05"

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithHighlighting toggles anomaly markers in the chart. Enabled by default.
func WithHighlighting(enabled bool) Option {
	return func(r *Renderer) { r.highlight = enabled }
}

// Renderer writes text charts for timelines.
type Renderer struct {
	w         io.Writer
	highlight bool
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{w: w, highlight: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws the timeline ordered by valid time, one row per point, with
// anomaly markers when highlighting is on. The report may be nil, in which
// case only the raw timeline is drawn.
func (r *Renderer) Render(t *temporal.Timeline, report *anomaly.Report) error {
	if r.w == nil {
		return fmt.Errorf("%w: no output writer", ErrUnavailable)
	}
	if t.PointCount() == 0 {
		_, err := fmt.Fprintf(r.w, "timeline %q contains no points to render\n", t.Name())
		return err
	}

	if _, err := fmt.Fprintf(r.w, "Temporal Timeline: %s\n\n", t.Name()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.w, minColumnWidth, 0, columnPadding, ' ', 0)
	fmt.Fprintln(tw, "EVENT\tVALID TIME\tTRANSACTION TIME\tDECISION TIME\tFLAGS")

	for _, p := range t.SortedByValidTime() {
		dt := "-"
		if p.DecisionTime != nil {
			dt = p.DecisionTime.Format(timeLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.EventID,
			p.ValidTime.Format(timeLayout),
			p.TransactionTime.Format(timeLayout),
			dt,
			r.flags(report, p.EventID),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if report != nil {
		return r.renderSummary(report)
	}
	return nil
}

func (r *Renderer) flags(report *anomaly.Report, eventID string) string {
	if !r.highlight || report == nil {
		return ""
	}
	findings := report.ForEvent(eventID)
	if len(findings) == 0 {
		return ""
	}
	marks := make([]string, 0, len(findings))
	for _, a := range findings {
		marks = append(marks, fmt.Sprintf("!%s(%s)", a.Type, a.Severity))
	}
	return strings.Join(marks, " ")
}

func (r *Renderer) renderSummary(report *anomaly.Report) error {
	if _, err := fmt.Fprintf(r.w, "\nDetected %d anomalies\n", report.Total); err != nil {
		return err
	}
	for _, a := range report.Anomalies {
		if _, err := fmt.Fprintf(r.w, "  %s: %s (severity: %s, confidence: %.2f)\n",
			strings.ToUpper(string(a.Type)), a.Description, a.Severity, a.Confidence); err != nil {
			return err
		}
	}
	return nil
}

// Span formats a time span for display, tolerating the empty case.
func Span(start, end time.Time) string {
	return fmt.Sprintf("%s .. %s", start.Format(timeLayout), end.Format(timeLayout))
}
