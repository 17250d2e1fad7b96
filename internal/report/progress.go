package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/vmunix/gapscan/internal/gaps"
)

// Progress draws a transient "Processing <path>..." status line.
type Progress struct {
	w       io.Writer
	root    string
	enabled bool
	width   int
}

// NewProgress writes to f only when f is a terminal.
func NewProgress(f *os.File, root string) *Progress {
	enabled := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return &Progress{w: f, root: root, enabled: enabled}
}

// NewProgressWriter always writes to w.
func NewProgressWriter(w io.Writer, root string) *Progress {
	return &Progress{w: w, root: root, enabled: true}
}

// Update replaces the status line with path.
func (p *Progress) Update(path string) {
	if !p.enabled {
		return
	}
	line := fmt.Sprintf("Processing %s...", DisplayPath(p.root, path))
	if len(line) > p.width {
		p.width = len(line)
	}
	_, _ = fmt.Fprintf(p.w, "\r%-*s", p.width, line)
}

// Clear erases the status line.
func (p *Progress) Clear() {
	if !p.enabled || p.width == 0 {
		return
	}
	_, _ = fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", p.width))
	p.width = 0
}

// Summary writes a one-line tally of the run.
func Summary(w io.Writer, result *gaps.Result, elapsed time.Duration) error {
	_, err := fmt.Fprintf(w, "Scanned %s files (%s valid, %s skipped), %s gaps in %s\n",
		humanize.Comma(int64(result.Scanned)),
		humanize.Comma(int64(result.Valid)),
		humanize.Comma(int64(result.Skipped)),
		humanize.Comma(int64(len(result.Gaps))),
		elapsed.Round(time.Millisecond))
	return err
}
