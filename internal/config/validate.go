// internal/config/validate.go
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// maxDurationMS is the largest millisecond count a time.Duration can hold.
const maxDurationMS = math.MaxInt64 / int64(time.Millisecond)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	for _, th := range []struct {
		key string
		ms  int64
	}{
		{"scan.threshold_lower_ms", c.Scan.ThresholdLowerMS},
		{"scan.threshold_upper_ms", c.Scan.ThresholdUpperMS},
	} {
		if th.ms > maxDurationMS || th.ms < -maxDurationMS {
			errs = append(errs, fmt.Sprintf("%s: out of range, got %d (limit ±%d)", th.key, th.ms, maxDurationMS))
		}
	}

	// Threshold window must be non-empty
	if c.Scan.ThresholdLowerMS >= c.Scan.ThresholdUpperMS {
		errs = append(errs, fmt.Sprintf("scan.threshold_lower_ms: must be less than threshold_upper_ms (%d >= %d)",
			c.Scan.ThresholdLowerMS, c.Scan.ThresholdUpperMS))
	}
	if c.Scan.Workers < 1 {
		errs = append(errs, fmt.Sprintf("scan.workers: must be at least 1, got %d", c.Scan.Workers))
	}

	// Probe validation
	if strings.TrimSpace(c.Probe.MediaInfo) == "" {
		errs = append(errs, "probe.mediainfo: required")
	}
	if c.Probe.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("probe.timeout: must not be negative, got %s", c.Probe.Timeout))
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	return errs
}
