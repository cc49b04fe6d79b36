package temporal_test

import (
	"errors"
	"testing"
	"time"

	temporal "github.com/lextri/tritime/internal/domain/temporal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewPoint(t *testing.T) {
	Convey("Given a base instant", t, func() {
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

		Convey("When constructing with both required timestamps", func() {
			p, err := temporal.NewPoint("evt_1", base, base.Add(30*time.Second))

			Convey("Then the point is valid with defaults applied", func() {
				So(err, ShouldBeNil)
				So(p.EventID, ShouldEqual, "evt_1")
				So(p.EventType, ShouldEqual, temporal.DefaultEventType)
				So(p.Data, ShouldNotBeNil)
				So(p.DecisionTime, ShouldBeNil)
			})
		})

		Convey("When the event id is empty", func() {
			p, err := temporal.NewPoint("", base, base.Add(time.Second))

			Convey("Then an id is generated", func() {
				So(err, ShouldBeNil)
				So(p.EventID, ShouldStartWith, "evt_")
				So(len(p.EventID), ShouldBeGreaterThan, 4)
			})
		})

		Convey("When valid_time is missing", func() {
			_, err := temporal.NewPoint("evt_1", time.Time{}, base)

			Convey("Then construction fails with a validation error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, temporal.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "valid_time")
				So(err.Error(), ShouldContainSubstring, "evt_1")
			})
		})

		Convey("When transaction_time is missing", func() {
			_, err := temporal.NewPoint("evt_1", base, time.Time{})

			Convey("Then construction fails with a validation error", func() {
				So(errors.Is(err, temporal.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "transaction_time")
			})
		})

		Convey("When transaction_time precedes valid_time", func() {
			p, err := temporal.NewPoint("evt_1", base, base.Add(-time.Minute))

			Convey("Then the point is valid; flagging it is the classifier's job", func() {
				So(err, ShouldBeNil)
				So(p.IngestionDelay(), ShouldEqual, -time.Minute)
			})
		})

		Convey("When a max skew guard is configured", func() {
			now := base
			clock := func() time.Time { return now }

			Convey("And the timestamps are within the skew", func() {
				_, err := temporal.NewPoint("evt_1", base.Add(-time.Minute), base,
					temporal.WithMaxSkew(time.Hour), temporal.WithClock(clock))
				So(err, ShouldBeNil)
			})

			Convey("And valid_time exceeds the skew", func() {
				_, err := temporal.NewPoint("evt_1", base.Add(-2*time.Hour), base,
					temporal.WithMaxSkew(time.Hour), temporal.WithClock(clock))
				So(errors.Is(err, temporal.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "max skew")
			})

			Convey("And transaction_time exceeds the skew", func() {
				_, err := temporal.NewPoint("evt_1", base, base.Add(3*time.Hour),
					temporal.WithMaxSkew(time.Hour), temporal.WithClock(clock))
				So(errors.Is(err, temporal.ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestPointDeltas(t *testing.T) {
	Convey("Given a point with all three timestamps", t, func() {
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		p, err := temporal.NewPoint("evt_1", base, base.Add(30*time.Second))
		So(err, ShouldBeNil)
		p.WithDecisionTime(base.Add(45 * time.Second))

		Convey("Then the ingestion delay is TT - VT", func() {
			So(p.IngestionDelay(), ShouldEqual, 30*time.Second)
		})

		Convey("Then the decision delay is DT - TT", func() {
			dd, ok := p.DecisionDelay()
			So(ok, ShouldBeTrue)
			So(dd, ShouldEqual, 15*time.Second)
		})

		Convey("And a premature decision yields a negative delay", func() {
			p.WithDecisionTime(base.Add(10 * time.Second))
			dd, ok := p.DecisionDelay()
			So(ok, ShouldBeTrue)
			So(dd, ShouldEqual, -20*time.Second)
		})
	})

	Convey("Given a point without a decision time", t, func() {
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		p, err := temporal.NewPoint("evt_1", base, base)
		So(err, ShouldBeNil)

		Convey("Then DecisionDelay reports absence", func() {
			_, ok := p.DecisionDelay()
			So(ok, ShouldBeFalse)
		})
	})
}

func TestPointOrdering(t *testing.T) {
	Convey("Given points with distinct valid times", t, func() {
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		a, _ := temporal.NewPoint("a", base, base)
		b, _ := temporal.NewPoint("b", base.Add(time.Minute), base)

		Convey("Then ordering follows valid time", func() {
			So(a.Less(b), ShouldBeTrue)
			So(b.Less(a), ShouldBeFalse)
		})
	})

	Convey("Given points with equal valid times", t, func() {
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		a, _ := temporal.NewPoint("a", base, base)
		b, _ := temporal.NewPoint("b", base, base)

		Convey("Then ties break on event id so the order is total", func() {
			So(a.Less(b), ShouldBeTrue)
			So(b.Less(a), ShouldBeFalse)
		})
	})
}
