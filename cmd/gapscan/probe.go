package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmunix/gapscan/internal/probe"
)

// ProbeResultJSON is the JSON form of a single probe.
type ProbeResultJSON struct {
	Path       string `json:"path"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newProbeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>...",
		Short: "Show the timing metadata read from files",
		Long: `Read the encoded start time and duration of each file, exactly as
'gapscan scan' does, and print them. Useful to see why a file is skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbeCmd(cmd, opts, args)
		},
	}
}

func runProbeCmd(cmd *cobra.Command, opts *rootOptions, paths []string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := validate(cfg); err != nil {
		return err
	}

	mediaInfo := probe.NewMediaInfo(cfg.Probe.MediaInfo, cfg.Probe.Timeout)
	if err := mediaInfo.Check(); err != nil {
		return err
	}

	outcomes := make([]probe.Outcome, 0, len(paths))
	for _, path := range paths {
		outcomes = append(outcomes, probe.Run(cmd.Context(), mediaInfo, path))
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printProbeJSON(out, outcomes)
	}
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printProbeHuman(out, o)
	}
	return nil
}

func printProbeHuman(w io.Writer, o probe.Outcome) {
	fmt.Fprintln(w, o.Path)
	if !o.OK() {
		fmt.Fprintf(w, "  Error:    %v\n", o.Err)
		return
	}
	fmt.Fprintf(w, "  Start:    %s\n", o.Timing.Start.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "  Duration: %dms\n", o.Timing.Duration.Milliseconds())
	fmt.Fprintf(w, "  End:      %s\n", o.Timing.End().Format(time.RFC3339Nano))
}

func printProbeJSON(w io.Writer, outcomes []probe.Outcome) error {
	results := make([]ProbeResultJSON, 0, len(outcomes))
	for _, o := range outcomes {
		r := ProbeResultJSON{Path: o.Path}
		if o.OK() {
			r.Start = o.Timing.Start.Format(time.RFC3339Nano)
			r.End = o.Timing.End().Format(time.RFC3339Nano)
			r.DurationMS = o.Timing.Duration.Milliseconds()
		} else {
			r.Error = o.Err.Error()
		}
		results = append(results, r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
