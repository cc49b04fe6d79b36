package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lextri/tritime/internal/batch"
	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/internal/domain/temporal"
	"github.com/lextri/tritime/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func writeDocument(tb testing.TB, dir, file, name string, travel bool) {
	tb.Helper()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tt := base.Add(30 * time.Second)
	if travel {
		tt = base.Add(-time.Minute)
	}

	tl := temporal.NewTimeline(name)
	p, err := temporal.NewPoint("evt_1", base, tt)
	if err != nil {
		tb.Fatalf("new point: %v", err)
	}
	if err := tl.AddPoint(p); err != nil {
		tb.Fatalf("add point: %v", err)
	}
	if err := codec.SaveFile(tl, filepath.Join(dir, file)); err != nil {
		tb.Fatalf("save file: %v", err)
	}
}

func TestRun(t *testing.T) {
	Convey("Given a directory of timeline documents", t, func() {
		dir := t.TempDir()
		writeDocument(t, dir, "a_clean.json", "clean", false)
		writeDocument(t, dir, "b_travel.json", "travel", true)

		// Broken and irrelevant entries the runner must tolerate.
		So(os.WriteFile(filepath.Join(dir, "c_broken.json"), []byte("{not json"), 0o600), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o600), ShouldBeNil)
		So(os.Mkdir(filepath.Join(dir, "nested"), 0o750), ShouldBeNil)

		runner := batch.NewRunner(anomaly.NewClassifier(), batch.WithWorkers(2))

		Convey("When running the batch", func() {
			summary, err := runner.Run(context.Background(), dir)
			So(err, ShouldBeNil)

			Convey("Then only top-level json files are processed, in path order", func() {
				So(summary.Files, ShouldEqual, 3)
				So(len(summary.Results), ShouldEqual, 3)
				So(summary.Results[0].Path, ShouldEndWith, "a_clean.json")
				So(summary.Results[1].Path, ShouldEndWith, "b_travel.json")
				So(summary.Results[2].Path, ShouldEndWith, "c_broken.json")
			})

			Convey("Then per-file outcomes are recorded without aborting the run", func() {
				So(summary.Failed, ShouldEqual, 1)
				So(summary.TotalAnomalies, ShouldEqual, 1)

				So(summary.Results[0].Timeline, ShouldEqual, "clean")
				So(summary.Results[0].Report.Total, ShouldEqual, 0)

				So(summary.Results[1].Report.CountsByType[anomaly.TypeTimeTravel], ShouldEqual, 1)

				So(summary.Results[2].Err, ShouldNotBeNil)
				So(summary.Results[2].ErrText, ShouldNotBeEmpty)
				So(summary.Results[2].Report, ShouldBeNil)
			})
		})

		Convey("When the directory does not exist", func() {
			_, err := runner.Run(context.Background(), filepath.Join(dir, "missing"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "read directory")
		})

		Convey("When the context is already canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := runner.Run(ctx, dir)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "batch run canceled")
		})
	})
}
