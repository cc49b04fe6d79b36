package render_test

import (
	"context"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/internal/domain/temporal"
	"github.com/lextri/tritime/internal/render"
)

func chartTimeline(tb testing.TB) *temporal.Timeline {
	tb.Helper()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tl := temporal.NewTimeline("orders")

	normal, err := temporal.NewPoint("evt_ok", base, base.Add(30*time.Second))
	if err != nil {
		tb.Fatalf("new point: %v", err)
	}
	normal.WithDecisionTime(base.Add(45 * time.Second))

	travel, err := temporal.NewPoint("evt_travel", base.Add(10*time.Minute), base.Add(9*time.Minute))
	if err != nil {
		tb.Fatalf("new point: %v", err)
	}

	for _, p := range []*temporal.Point{normal, travel} {
		if err := tl.AddPoint(p); err != nil {
			tb.Fatalf("add point: %v", err)
		}
	}
	return tl
}

func TestRender(t *testing.T) {
	Convey("Given a timeline with one anomalous point", t, func() {
		tl := chartTimeline(t)
		report, err := anomaly.NewClassifier().Classify(context.Background(), tl)
		So(err, ShouldBeNil)

		Convey("When rendering with highlighting", func() {
			var buf strings.Builder
			So(render.NewRenderer(&buf).Render(tl, report), ShouldBeNil)
			out := buf.String()

			Convey("Then the chart has a header, one row per point and markers", func() {
				So(out, ShouldContainSubstring, "Temporal Timeline: orders")
				So(out, ShouldContainSubstring, "EVENT")
				So(out, ShouldContainSubstring, "evt_ok")
				So(out, ShouldContainSubstring, "evt_travel")
				So(out, ShouldContainSubstring, "!time_travel(critical)")
				So(out, ShouldContainSubstring, "Detected 1 anomalies")
			})

			Convey("Then a point without a decision time shows a dash", func() {
				for _, line := range strings.Split(out, "\n") {
					if strings.Contains(line, "evt_travel") {
						So(line, ShouldContainSubstring, "-")
					}
				}
			})
		})

		Convey("When rendering with highlighting disabled", func() {
			var buf strings.Builder
			So(render.NewRenderer(&buf, render.WithHighlighting(false)).Render(tl, nil), ShouldBeNil)

			So(buf.String(), ShouldContainSubstring, "evt_travel")
			So(buf.String(), ShouldNotContainSubstring, "!time_travel")
			So(buf.String(), ShouldNotContainSubstring, "Detected")
		})

		Convey("When rendering an empty timeline", func() {
			var buf strings.Builder
			So(render.NewRenderer(&buf).Render(temporal.NewTimeline("bare"), nil), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "contains no points")
		})

		Convey("When the renderer has no writer", func() {
			err := render.NewRenderer(nil).Render(tl, report)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "renderer unavailable")
		})
	})
}

func TestSpan(t *testing.T) {
	Convey("Given a start and end time", t, func() {
		start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		end := start.Add(90 * time.Minute)

		Convey("Then Span formats them for display", func() {
			So(render.Span(start, end), ShouldEqual, "2025-03-01 10:00:00 .. 2025-03-01 11:30:00")
		})
	})
}
