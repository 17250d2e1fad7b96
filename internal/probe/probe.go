// Package probe extracts recording timing (encoded start and duration) from
// media files.
package probe

//go:generate mockgen -destination=mocks/mock_prober.go -package=mocks github.com/vmunix/gapscan/internal/probe Prober

import (
	"context"
	"time"
)

// Timing is the recording window encoded in a media file.
type Timing struct {
	Start    time.Time
	Duration time.Duration
}

// End returns the computed end of the recording.
func (t Timing) End() time.Time {
	return t.Start.Add(t.Duration)
}

// Prober reads timing metadata from a file.
// Per-file failures wrap ErrNotExtractable.
type Prober interface {
	Probe(ctx context.Context, path string) (Timing, error)
}

// Outcome is the result of probing one path. A failed probe is a normal
// outcome, not an exceptional one.
type Outcome struct {
	Path   string
	Timing Timing
	Err    error
}

// OK reports whether timing was extracted.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Run probes path with p and packs the result into an Outcome.
func Run(ctx context.Context, p Prober, path string) Outcome {
	timing, err := p.Probe(ctx, path)
	if err != nil {
		return Outcome{Path: path, Err: err}
	}
	return Outcome{Path: path, Timing: timing}
}
