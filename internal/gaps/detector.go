package gaps

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vmunix/gapscan/internal/probe"
	"github.com/vmunix/gapscan/internal/scan"
	"golang.org/x/sync/errgroup"
)

// Detector finds gaps between neighbouring recording files.
type Detector struct {
	prober   probe.Prober
	logger   *slog.Logger
	workers  int
	progress func(path string)
	mu       sync.Mutex // serializes progress callbacks
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithWorkers sets how many files are probed concurrently. Comparison is
// always sequential in path order, so results do not depend on n.
func WithWorkers(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithProgress registers a callback invoked once per path before it is
// probed. Calls are serialized but, with several workers, not ordered.
func WithProgress(fn func(path string)) Option {
	return func(d *Detector) {
		d.progress = fn
	}
}

// NewDetector creates a detector that reads timing through p.
func NewDetector(p probe.Prober, opts ...Option) *Detector {
	d := &Detector{
		prober:  p,
		logger:  slog.Default(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectDir enumerates root and runs Detect over the result.
func (d *Detector) DetectDir(ctx context.Context, root string, th Thresholds) (*Result, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}

	paths, err := scan.Files(root, d.logger)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("enumerated files", "root", root, "count", len(paths))

	result, err := d.Detect(ctx, paths, th)
	if err != nil {
		return nil, err
	}
	result.Root = root
	if result.NoValidFiles() {
		d.logger.Info("no valid video files found", "root", root, "files", len(paths))
	}
	return result, nil
}

// Detect compares each file that has usable timing with the previous such
// file in the order given. Files that fail to probe are skipped and never
// become part of a pair. The only error returned is context cancellation.
func (d *Detector) Detect(ctx context.Context, paths []string, th Thresholds) (*Result, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Gaps: []Gap{}}
	if len(paths) == 0 {
		return result, nil
	}

	next, err := d.outcomes(ctx, paths)
	if err != nil {
		return nil, err
	}

	var (
		cursor    probe.Outcome
		hasCursor bool
	)
	for i := range paths {
		cur, err := next(i)
		if err != nil {
			return nil, err
		}
		result.Scanned++

		if !cur.OK() {
			result.Skipped++
			d.logger.Debug("skipping file", "path", cur.Path, "reason", cur.Err)
			continue
		}
		result.Valid++

		if !hasCursor {
			cursor, hasCursor = cur, true
			continue
		}

		diff := cur.Timing.Start.Sub(cursor.Timing.End())
		if th.Contains(diff) {
			gap := Gap{Previous: cursor.Path, Current: cur.Path, GapMS: diff.Milliseconds()}
			result.Gaps = append(result.Gaps, gap)
			d.logger.Debug("gap detected", "previous", gap.Previous, "current", gap.Current, "gap_ms", gap.GapMS)
		}
		cursor = cur
	}

	return result, nil
}

// outcomes returns an accessor for the probe outcome of paths[i]. With one
// worker, files are probed lazily in order; otherwise all files are probed
// up front with bounded concurrency.
func (d *Detector) outcomes(ctx context.Context, paths []string) (func(i int) (probe.Outcome, error), error) {
	if d.workers <= 1 {
		return func(i int) (probe.Outcome, error) {
			if err := ctx.Err(); err != nil {
				return probe.Outcome{}, err
			}
			d.report(paths[i])
			o := probe.Run(ctx, d.prober, paths[i])
			if err := ctx.Err(); err != nil {
				return probe.Outcome{}, err
			}
			return o, nil
		}, nil
	}

	all := make([]probe.Outcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d.report(path)
			all[i] = probe.Run(gctx, d.prober, path)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return func(i int) (probe.Outcome, error) {
		return all[i], nil
	}, nil
}

func (d *Detector) report(path string) {
	if d.progress == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.progress(path)
}
