package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vmunix/gapscan/internal/gaps"
	"github.com/vmunix/gapscan/internal/probe"
	"github.com/vmunix/gapscan/internal/report"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan --dir <directory>",
		Short: "Flag files that appear to have a gap in footage from the previous file",
		Long: `Scan a directory of recordings for gaps in footage.

Files are ordered by full path. Each file with readable timing metadata is
compared with the previous such file; when it starts more than the lower
threshold and less than the upper threshold after the previous file ended,
the pair is reported. Files without metadata are skipped.

Examples:
  gapscan scan -d /mnt/dashcam
  gapscan scan -d /srv/cctv/front -l 1000 -u 60000 --workers 8
  gapscan scan -d /srv/cctv --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScanCmd(cmd, opts)
		},
	}

	cmd.Flags().StringP("dir", "d", "", "Directory containing the video recording files")
	cmd.Flags().Int64P("threshold-lower", "l", gaps.DefaultLowerMS, "Minimum gap size to flag, in milliseconds (exclusive)")
	cmd.Flags().Int64P("threshold-upper", "u", gaps.DefaultUpperMS, "Maximum gap size to flag, in milliseconds (exclusive)")
	cmd.Flags().IntP("workers", "w", 1, "Number of files probed concurrently")
	cmd.Flags().String("cache", "", "Probe cache database path (overrides config)")
	cmd.Flags().Bool("no-cache", false, "Disable the probe cache")
	cmd.Flags().Bool("summary", false, "Print a summary line to stderr")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func runScanCmd(cmd *cobra.Command, opts *rootOptions) error {
	dir, _ := cmd.Flags().GetString("dir")
	showSummary, _ := cmd.Flags().GetBool("summary")

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	// Flags override config only when given explicitly.
	flags := cmd.Flags()
	if flags.Changed("threshold-lower") {
		cfg.Scan.ThresholdLowerMS, _ = flags.GetInt64("threshold-lower")
	}
	if flags.Changed("threshold-upper") {
		cfg.Scan.ThresholdUpperMS, _ = flags.GetInt64("threshold-upper")
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("cache") {
		cfg.Cache.Path, _ = flags.GetString("cache")
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		cfg.Cache.Path = ""
	}
	if err := validate(cfg); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level).With("run", uuid.NewString())

	mediaInfo := probe.NewMediaInfo(cfg.Probe.MediaInfo, cfg.Probe.Timeout)
	if err := mediaInfo.Check(); err != nil {
		return err
	}

	var prober probe.Prober = mediaInfo
	if cfg.Cache.Path != "" {
		cache, err := probe.OpenCache(cfg.Cache.Path, logger.With("component", "cache"))
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()
		prober = cache.Wrap(mediaInfo)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := newProgress(cmd.ErrOrStderr(), dir)
	detector := gaps.NewDetector(prober,
		gaps.WithLogger(logger.With("component", "detector")),
		gaps.WithWorkers(cfg.Scan.Workers),
		gaps.WithProgress(progress.Update),
	)

	th := gaps.ThresholdsMS(cfg.Scan.ThresholdLowerMS, cfg.Scan.ThresholdUpperMS)
	start := time.Now()
	result, err := detector.DetectDir(ctx, dir, th)
	progress.Clear()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("scan interrupted: %w", context.Cause(ctx))
		}
		return fmt.Errorf("scan %s: %w", dir, err)
	}
	logger.Info("scan complete",
		"root", dir,
		"scanned", result.Scanned,
		"valid", result.Valid,
		"gaps", len(result.Gaps),
		"duration_ms", time.Since(start).Milliseconds())

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return report.JSON(out, result)
	}
	if err := report.Text(out, result); err != nil {
		return err
	}
	if showSummary {
		return report.Summary(cmd.ErrOrStderr(), result, time.Since(start))
	}
	return nil
}

// newProgress shows a status line only when w is a terminal.
func newProgress(w io.Writer, root string) *report.Progress {
	if f, ok := w.(*os.File); ok {
		return report.NewProgress(f, root)
	}
	return report.NewProgressWriter(io.Discard, root)
}
