package probe

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// EncodedDateLayout is the layout mediainfo uses for Encoded_Date,
// e.g. "UTC 2024-01-01 10:00:00". time.Parse also accepts a fractional
// second right after the seconds field.
const EncodedDateLayout = "MST 2006-01-02 15:04:05"

// InformTemplate asks mediainfo for "<duration ms>|<encoded date>".
const InformTemplate = "General;%Duration%|%Encoded_Date%"

// ParseInform parses the single line produced by InformTemplate.
// path is only used to annotate errors.
func ParseInform(path string, out []byte) (Timing, error) {
	line := strings.TrimSpace(string(out))
	if line == "" {
		return Timing{}, notExtractable(path, "no general track metadata")
	}

	durField, dateField, ok := strings.Cut(line, "|")
	if !ok {
		return Timing{}, notExtractable(path, "unexpected mediainfo output %q", line)
	}
	durField = strings.TrimSpace(durField)
	dateField = strings.TrimSpace(dateField)

	if durField == "" || dateField == "" {
		return Timing{}, notExtractable(path, "missing duration or encoded date")
	}

	start, err := ParseEncodedDate(dateField)
	if err != nil {
		return Timing{}, notExtractable(path, "encoded date %q is not a supported format", dateField)
	}

	dur, err := ParseDurationMS(durField)
	if err != nil {
		return Timing{}, notExtractable(path, "duration %q is not an integer", durField)
	}

	return Timing{Start: start, Duration: dur}, nil
}

// ParseEncodedDate parses an Encoded_Date value in EncodedDateLayout.
// The zone must be UTC, GMT or an abbreviation of the local zone; any
// other name has no known offset and is rejected.
func ParseEncodedDate(s string) (time.Time, error) {
	t, err := time.Parse(EncodedDateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	name, _ := t.Zone()
	if t.Location() == time.UTC || t.Location() == time.Local || name == "GMT" {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unknown time zone %q", name)
}

// ParseDurationMS parses a non-negative integer count of milliseconds.
func ParseDurationMS(s string) (time.Duration, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if ms < 0 || ms > math.MaxInt64/int64(time.Millisecond) {
		return 0, strconv.ErrRange
	}
	return time.Duration(ms) * time.Millisecond, nil
}
