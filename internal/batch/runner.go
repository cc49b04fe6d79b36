// Package batch classifies directories of timeline documents on a bounded
// worker pool. Files are independent, so per-file work fans out across
// workers; results are reassembled in path order for deterministic reports.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/pkg/logger"
	"github.com/lextri/tritime/pkg/metrics"
)

// Default runner configuration.
const (
	defaultWorkers = 4
)

// Result is the outcome for one file.
type Result struct {
	Path     string          `json:"path"`
	Timeline string          `json:"timeline,omitempty"`
	Report   *anomaly.Report `json:"report,omitempty"`
	Err      error           `json:"-"`
	ErrText  string          `json:"error,omitempty"`
}

// Summary aggregates a whole run.
type Summary struct {
	Files          int           `json:"files"`
	Failed         int           `json:"failed"`
	TotalAnomalies int           `json:"total_anomalies"`
	Elapsed        time.Duration `json:"elapsed"`
	Results        []Result      `json:"results"`
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithWorkers sets the pool size.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// Runner classifies timeline documents in bulk.
type Runner struct {
	classifier *anomaly.Classifier
	workers    int
	logger     logger.Logger
}

// NewRunner creates a runner around the given classifier.
func NewRunner(classifier *anomaly.Classifier, opts ...Option) *Runner {
	r := &Runner{
		classifier: classifier,
		workers:    defaultWorkers,
		logger:     logger.Get().Named("batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run classifies every .json file directly under dir. A file that fails to
// load or classify is recorded in the summary and does not stop the run;
// only an unreadable directory or a canceled context aborts.
func (r *Runner) Run(ctx context.Context, dir string) (*Summary, error) {
	start := time.Now()

	paths, err := listDocuments(dir)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.processFile(ctx, paths[i])
			}
		}()
	}

	var cancelErr error
feed:
	for i := range paths {
		if cancelErr = ctx.Err(); cancelErr != nil {
			break feed
		}
		select {
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelErr != nil {
		return nil, fmt.Errorf("batch run canceled: %w", cancelErr)
	}

	summary := &Summary{
		Files:   len(paths),
		Elapsed: time.Since(start),
		Results: results,
	}
	for i := range results {
		if results[i].Err != nil {
			results[i].ErrText = results[i].Err.Error()
			summary.Failed++
			continue
		}
		summary.TotalAnomalies += results[i].Report.Total
	}

	r.logger.Info(ctx, "batch run complete",
		logger.Int("files", summary.Files),
		logger.Int("failed", summary.Failed),
		logger.Int("anomalies", summary.TotalAnomalies),
	)
	return summary, nil
}

func (r *Runner) processFile(ctx context.Context, path string) Result {
	res := Result{Path: path}

	t, err := codec.LoadFile(path)
	if err != nil {
		metrics.RecordBatchFile("error")
		res.Err = err
		return res
	}
	res.Timeline = t.Name()

	report, err := r.classifier.Classify(ctx, t)
	if err != nil {
		metrics.RecordBatchFile("error")
		res.Err = err
		return res
	}

	metrics.RecordBatchFile("ok")
	metrics.RecordTimelineAnalyzed(t.PointCount())
	for _, a := range report.Anomalies {
		metrics.RecordAnomaly(string(a.Type), string(a.Severity))
	}
	res.Report = report
	return res
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
