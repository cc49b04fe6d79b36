package temporal_test

import (
	"errors"
	"testing"
	"time"

	temporal "github.com/lextri/tritime/internal/domain/temporal"
	. "github.com/smartystreets/goconvey/convey"
)

func mustPoint(id string, vt, tt time.Time) *temporal.Point {
	p, err := temporal.NewPoint(id, vt, tt)
	if err != nil {
		panic(err)
	}
	return p
}

func TestTimelineAddPoint(t *testing.T) {
	Convey("Given an empty timeline", t, func() {
		tl := temporal.NewTimeline("orders")
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

		Convey("When adding points with unique ids", func() {
			So(tl.AddPoint(mustPoint("a", base, base)), ShouldBeNil)
			So(tl.AddPoint(mustPoint("b", base.Add(time.Minute), base)), ShouldBeNil)

			Convey("Then they are kept in insertion order", func() {
				points := tl.Points()
				So(len(points), ShouldEqual, 2)
				So(points[0].EventID, ShouldEqual, "a")
				So(points[1].EventID, ShouldEqual, "b")
				So(tl.PointCount(), ShouldEqual, 2)
			})
		})

		Convey("When adding a duplicate event id", func() {
			So(tl.AddPoint(mustPoint("a", base, base)), ShouldBeNil)
			err := tl.AddPoint(mustPoint("a", base.Add(time.Hour), base))

			Convey("Then the add fails and names the id", func() {
				So(errors.Is(err, temporal.ErrDuplicateID), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `"a"`)
				So(tl.PointCount(), ShouldEqual, 1)
			})
		})
	})
}

func TestTimelineSortedByValidTime(t *testing.T) {
	Convey("Given a timeline inserted out of valid-time order", t, func() {
		tl := temporal.NewTimeline("orders")
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		So(tl.AddPoint(mustPoint("a", base, base)), ShouldBeNil)
		So(tl.AddPoint(mustPoint("b", base.Add(-10*time.Minute), base)), ShouldBeNil)
		So(tl.AddPoint(mustPoint("c", base.Add(5*time.Minute), base)), ShouldBeNil)

		Convey("When sorting by valid time", func() {
			sorted := tl.SortedByValidTime()

			Convey("Then the sorted view is ordered", func() {
				So(sorted[0].EventID, ShouldEqual, "b")
				So(sorted[1].EventID, ShouldEqual, "a")
				So(sorted[2].EventID, ShouldEqual, "c")
			})

			Convey("And the stored insertion order is untouched", func() {
				points := tl.Points()
				So(points[0].EventID, ShouldEqual, "a")
				So(points[1].EventID, ShouldEqual, "b")
				So(points[2].EventID, ShouldEqual, "c")
			})

			Convey("And the sequence is restartable", func() {
				again := tl.SortedByValidTime()
				So(again[0].EventID, ShouldEqual, "b")
				So(len(again), ShouldEqual, 3)
			})
		})
	})
}

func TestTimelineTimeSpan(t *testing.T) {
	Convey("Given an empty timeline", t, func() {
		tl := temporal.NewTimeline("empty")

		Convey("When asking for the time span", func() {
			_, _, err := tl.TimeSpan()

			Convey("Then it fails with the empty-timeline error", func() {
				So(errors.Is(err, temporal.ErrEmptyTimeline), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "empty")
			})
		})
	})

	Convey("Given a populated timeline", t, func() {
		tl := temporal.NewTimeline("orders")
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		So(tl.AddPoint(mustPoint("a", base, base)), ShouldBeNil)
		So(tl.AddPoint(mustPoint("b", base.Add(-10*time.Minute), base)), ShouldBeNil)
		So(tl.AddPoint(mustPoint("c", base.Add(5*time.Minute), base)), ShouldBeNil)

		Convey("Then the span covers min and max valid time", func() {
			start, end, err := tl.TimeSpan()
			So(err, ShouldBeNil)
			So(start.Equal(base.Add(-10*time.Minute)), ShouldBeTrue)
			So(end.Equal(base.Add(5*time.Minute)), ShouldBeTrue)
		})
	})
}

func TestTimelineMetadata(t *testing.T) {
	Convey("Given a timeline with annotations", t, func() {
		tl := temporal.NewTimeline("orders")
		tl.SetMetadata("source", "ingest-gateway")

		Convey("Then metadata reads back as a copy", func() {
			meta := tl.Metadata()
			So(meta["source"], ShouldEqual, "ingest-gateway")

			meta["source"] = "mutated"
			So(tl.Metadata()["source"], ShouldEqual, "ingest-gateway")
		})
	})
}
