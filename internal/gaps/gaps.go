// Package gaps detects missing footage between consecutive recording segments.
//
// Files are compared in full-path order. For each pair of neighbouring files
// that both carry timing metadata, the next file's encoded start is compared
// with the previous file's computed end; a forward difference strictly inside
// the threshold window is reported as a gap.
package gaps

import (
	"errors"
	"fmt"
	"time"
)

// Default threshold window in milliseconds.
const (
	DefaultLowerMS = 500
	DefaultUpperMS = 30000
)

// ErrInvalidThresholds indicates a threshold window that cannot match anything.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds is the open interval (Lower, Upper) a gap must fall into.
type Thresholds struct {
	Lower time.Duration
	Upper time.Duration
}

// DefaultThresholds returns the 500ms..30s window.
func DefaultThresholds() Thresholds {
	return ThresholdsMS(DefaultLowerMS, DefaultUpperMS)
}

// ThresholdsMS builds a window from millisecond bounds.
func ThresholdsMS(lower, upper int64) Thresholds {
	return Thresholds{
		Lower: time.Duration(lower) * time.Millisecond,
		Upper: time.Duration(upper) * time.Millisecond,
	}
}

// Validate checks Lower < Upper.
func (t Thresholds) Validate() error {
	if t.Lower >= t.Upper {
		return fmt.Errorf("%w: lower %dms must be less than upper %dms",
			ErrInvalidThresholds, t.Lower.Milliseconds(), t.Upper.Milliseconds())
	}
	return nil
}

// Contains reports whether diff lies strictly inside the window.
// A diff equal to either bound is not a gap.
func (t Thresholds) Contains(diff time.Duration) bool {
	return diff > t.Lower && diff < t.Upper
}

// Gap is a flagged pair of neighbouring files.
type Gap struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
	GapMS    int64  `json:"gap_ms"`
}

// Result is the outcome of one detection run.
type Result struct {
	Root    string
	Gaps    []Gap
	Scanned int // paths considered
	Valid   int // paths with usable timing
	Skipped int // paths that failed to probe
}

// Empty reports whether there were no files to consider at all.
func (r *Result) Empty() bool {
	return r.Scanned == 0
}

// NoValidFiles reports whether files were found but none had usable timing.
// An empty directory is not a no-valid-files result, and neither is a run
// that found valid files but no gaps.
func (r *Result) NoValidFiles() bool {
	return r.Scanned > 0 && r.Valid == 0
}
