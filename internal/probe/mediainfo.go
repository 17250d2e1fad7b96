package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultMediaInfoBinary is looked up on PATH when no binary is configured.
const DefaultMediaInfoBinary = "mediainfo"

// MediaInfo probes files by running the mediainfo CLI.
type MediaInfo struct {
	// Binary is the mediainfo executable (name or path).
	Binary string
	// Timeout bounds a single invocation. Zero means no timeout.
	Timeout time.Duration
}

// NewMediaInfo creates a MediaInfo prober.
func NewMediaInfo(binary string, timeout time.Duration) *MediaInfo {
	if binary == "" {
		binary = DefaultMediaInfoBinary
	}
	return &MediaInfo{Binary: binary, Timeout: timeout}
}

// Check verifies the binary can be resolved.
func (m *MediaInfo) Check() error {
	if _, err := exec.LookPath(m.Binary); err != nil {
		return fmt.Errorf("%w: %s", ErrMediaInfoNotFound, m.Binary)
	}
	return nil
}

// Probe runs mediainfo against path.
func (m *MediaInfo) Probe(ctx context.Context, path string) (Timing, error) {
	parent := ctx
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, m.Binary, "--Inform="+InformTemplate, path)
	out, err := cmd.Output()
	if err != nil {
		// Cancellation of the whole run is not a per-file failure.
		if err := parent.Err(); err != nil {
			return Timing{}, err
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Timing{}, fmt.Errorf("%s: %w after %s", path, ErrTimeout, m.Timeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return Timing{}, fmt.Errorf("%w: %s", ErrMediaInfoNotFound, m.Binary)
		}
		return Timing{}, notExtractable(path, "unable to parse for video metadata: %s", exitReason(err))
	}

	return ParseInform(path, out)
}

func exitReason(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
			return msg
		}
	}
	return err.Error()
}
