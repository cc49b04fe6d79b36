package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/lextri/tritime/internal/adapters/http/api"
	"github.com/lextri/tritime/internal/adapters/repository"
	"github.com/lextri/tritime/internal/app"
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

func newTestServer(tb testing.TB) (*httptest.Server, *app.Service) {
	tb.Helper()
	svc := app.New(app.WithStore(repository.NewMemoryStore()))
	if err := svc.Start(context.Background()); err != nil {
		tb.Fatalf("start service: %v", err)
	}
	tb.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	ts := httptest.NewServer(mux)
	tb.Cleanup(ts.Close)
	return ts, svc
}

func sampleDocument(tb testing.TB, travel bool) *codec.Document {
	tb.Helper()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tt := base.Add(30 * time.Second)
	if travel {
		tt = base.Add(-time.Minute)
	}

	tl := temporal.NewTimeline("orders")
	p, err := temporal.NewPoint("evt_1", base, tt)
	if err != nil {
		tb.Fatalf("new point: %v", err)
	}
	if err := tl.AddPoint(p); err != nil {
		tb.Fatalf("add point: %v", err)
	}
	return codec.ToDocument(tl)
}

func postJSON(tb testing.TB, url string, body any) *http.Response {
	tb.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		tb.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		tb.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(tb testing.TB, resp *http.Response, v any) {
	tb.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		tb.Fatalf("decode response: %v", err)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		Convey("GET /healthz reports ok", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var body map[string]string
			decodeBody(t, resp, &body)
			So(body["status"], ShouldEqual, "ok")
		})

		Convey("GET /metrics serves the scrape endpoint", func() {
			resp, err := http.Get(ts.URL + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}

func TestTimelineEndpoints(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		Convey("POST /timelines stores a document", func() {
			resp := postJSON(t, ts.URL+"/timelines", sampleDocument(t, false))
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)

			var stored struct {
				ID         string `json:"id"`
				Name       string `json:"name"`
				PointCount int    `json:"point_count"`
			}
			decodeBody(t, resp, &stored)
			So(stored.Name, ShouldEqual, "orders")
			So(stored.PointCount, ShouldEqual, 1)
			id, err := uuid.Parse(stored.ID)
			So(err, ShouldBeNil)

			Convey("GET /timelines lists it", func() {
				resp, err := http.Get(ts.URL + "/timelines")
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var infos []repository.TimelineInfo
				decodeBody(t, resp, &infos)
				So(len(infos), ShouldEqual, 1)
				So(infos[0].ID, ShouldEqual, id)
			})

			Convey("GET /timelines/{id} returns the document", func() {
				resp, err := http.Get(fmt.Sprintf("%s/timelines/%s", ts.URL, id))
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var doc codec.Document
				decodeBody(t, resp, &doc)
				So(doc.Name, ShouldEqual, "orders")
				So(len(doc.Points), ShouldEqual, 1)
			})
		})

		Convey("POST /timelines rejects a malformed document", func() {
			doc := sampleDocument(t, false)
			doc.Points[0].ValidTime = "yesterday"
			resp := postJSON(t, ts.URL+"/timelines", doc)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /timelines/{id} with an unknown id is 404", func() {
			resp, err := http.Get(fmt.Sprintf("%s/timelines/%s", ts.URL, uuid.New()))
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("GET /timelines/{id} with a garbage id is 400", func() {
			resp, err := http.Get(ts.URL + "/timelines/not-a-uuid")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestAnalyzeEndpoints(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		Convey("POST /analyze with an inline document returns a report", func() {
			resp := postJSON(t, ts.URL+"/analyze", map[string]any{
				"timeline": sampleDocument(t, true),
			})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var report anomaly.Report
			decodeBody(t, resp, &report)
			So(report.Timeline, ShouldEqual, "orders")
			So(report.Total, ShouldEqual, 1)
			So(report.Anomalies[0].Type, ShouldEqual, anomaly.TypeTimeTravel)
		})

		Convey("POST /analyze with a stored id persists findings", func() {
			stored := postJSON(t, ts.URL+"/timelines", sampleDocument(t, true))
			var created struct {
				ID string `json:"id"`
			}
			decodeBody(t, stored, &created)

			resp := postJSON(t, ts.URL+"/analyze", map[string]any{"timeline_id": created.ID})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var report anomaly.Report
			decodeBody(t, resp, &report)
			So(report.Total, ShouldEqual, 1)

			Convey("And GET /anomalies returns them", func() {
				resp, err := http.Get(ts.URL + "/anomalies?timeline_id=" + created.ID)
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var found []repository.StoredAnomaly
				decodeBody(t, resp, &found)
				So(len(found), ShouldEqual, 1)
				So(found[0].Type, ShouldEqual, anomaly.TypeTimeTravel)
			})

			Convey("And a severity filter narrows the query", func() {
				resp, err := http.Get(ts.URL + "/anomalies?severity=low")
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var found []repository.StoredAnomaly
				decodeBody(t, resp, &found)
				So(found, ShouldBeEmpty)
			})
		})

		Convey("POST /analyze with neither id nor document is 400", func() {
			resp := postJSON(t, ts.URL+"/analyze", map[string]any{})
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("POST /analyze with both id and document is 400", func() {
			resp := postJSON(t, ts.URL+"/analyze", map[string]any{
				"timeline_id": uuid.New().String(),
				"timeline":    sampleDocument(t, false),
			})
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("POST /analyze with an unknown stored id is 404", func() {
			resp := postJSON(t, ts.URL+"/analyze", map[string]any{
				"timeline_id": uuid.New().String(),
			})
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}
