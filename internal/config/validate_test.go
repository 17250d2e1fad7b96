// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Defaults(t *testing.T) {
	errs := Default().Validate()
	assert.Empty(t, errs, "expected defaults to be valid")
}

func TestValidate_Thresholds(t *testing.T) {
	tests := []struct {
		name         string
		lower, upper int64
		wantErr      bool
	}{
		{"default window", 500, 30000, false},
		{"zero lower", 0, 1, false},
		{"negative lower", -100, 100, false},
		{"equal bounds", 500, 500, true},
		{"inverted", 1000, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Scan.ThresholdLowerMS = tt.lower
			cfg.Scan.ThresholdUpperMS = tt.upper
			errs := cfg.Validate()
			assert.Equal(t, tt.wantErr, containsError(errs, "scan.threshold_lower_ms"), "got %v", errs)
		})
	}
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := Default()
	cfg.Scan.ThresholdUpperMS = 9_300_000_000_000_000
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "scan.threshold_upper_ms: out of range"), "got %v", errs)

	cfg = Default()
	cfg.Scan.ThresholdLowerMS = -9_300_000_000_000_000
	errs = cfg.Validate()
	assert.True(t, containsError(errs, "scan.threshold_lower_ms: out of range"), "got %v", errs)

	cfg = Default()
	cfg.Scan.ThresholdUpperMS = maxDurationMS
	assert.Empty(t, cfg.Validate())
}

func TestValidate_Workers(t *testing.T) {
	cfg := Default()
	cfg.Scan.Workers = 0
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "scan.workers"), "expected workers error, got %v", errs)
}

func TestValidate_Probe(t *testing.T) {
	cfg := Default()
	cfg.Probe.MediaInfo = "  "
	cfg.Probe.Timeout = -1
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "probe.mediainfo"), "got %v", errs)
	assert.True(t, containsError(errs, "probe.timeout"), "got %v", errs)
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "verbose"
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "log.level"), "expected log.level error, got %v", errs)

	cfg.Log.Level = "DEBUG"
	assert.Empty(t, cfg.Validate(), "log level is case-insensitive")
}

func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
