// Package report renders gap detection results.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmunix/gapscan/internal/gaps"
	"golang.org/x/text/unicode/norm"
)

// RootMarker replaces the scanned root in displayed paths.
const RootMarker = "..."

// DisplayPath shortens path by replacing the root prefix with RootMarker.
// Paths are NFC-normalized so decomposed file names print consistently.
func DisplayPath(root, path string) string {
	clean := filepath.Clean(root)
	switch {
	case clean == ".":
	case path == clean:
		path = RootMarker
	case strings.HasPrefix(path, clean+string(filepath.Separator)):
		path = RootMarker + path[len(clean):]
	case clean == string(filepath.Separator) && strings.HasPrefix(path, clean):
		path = RootMarker + path
	}
	return norm.NFC.String(path)
}

// Text writes the human-readable report.
func Text(w io.Writer, result *gaps.Result) error {
	if result.NoValidFiles() {
		_, err := fmt.Fprintf(w, "There were no valid video files in %s!\n", result.Root)
		return err
	}
	if len(result.Gaps) == 0 {
		_, err := fmt.Fprintln(w, "No footage gaps detected!")
		return err
	}
	for _, g := range result.Gaps {
		_, err := fmt.Fprintf(w, "Detected %dms gap between \"%s\" and \"%s\"\n",
			g.GapMS, DisplayPath(result.Root, g.Previous), DisplayPath(result.Root, g.Current))
		if err != nil {
			return err
		}
	}
	return nil
}

// ResultJSON is the JSON representation of a result.
type ResultJSON struct {
	Root         string     `json:"root"`
	Scanned      int        `json:"scanned"`
	Valid        int        `json:"valid"`
	Skipped      int        `json:"skipped"`
	NoValidFiles bool       `json:"no_valid_files"`
	Gaps         []gaps.Gap `json:"gaps"`
}

// JSON writes the result as indented JSON. Paths are written in full.
func JSON(w io.Writer, result *gaps.Result) error {
	out := ResultJSON{
		Root:         result.Root,
		Scanned:      result.Scanned,
		Valid:        result.Valid,
		Skipped:      result.Skipped,
		NoValidFiles: result.NoValidFiles(),
		Gaps:         result.Gaps,
	}
	if out.Gaps == nil {
		out.Gaps = []gaps.Gap{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
