// internal/probe/errors.go
package probe

import (
	"errors"
	"fmt"
)

var (
	// ErrNotExtractable indicates the file has no usable timing metadata.
	// Every per-file probe failure wraps it.
	ErrNotExtractable = errors.New("timing metadata not extractable")

	// ErrMediaInfoNotFound indicates the mediainfo binary could not be resolved.
	ErrMediaInfoNotFound = errors.New("mediainfo binary not found")

	// ErrTimeout indicates mediainfo did not answer within the per-file
	// timeout. It says nothing about the file itself, so it is not cached.
	ErrTimeout = errors.New("mediainfo timed out")
)

// ExtractionError describes why a single file could not be probed.
type ExtractionError struct {
	Path   string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Unwrap lets errors.Is match ErrNotExtractable.
func (e *ExtractionError) Unwrap() error {
	return ErrNotExtractable
}

func notExtractable(path, format string, args ...any) error {
	return &ExtractionError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
