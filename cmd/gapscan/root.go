package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmunix/gapscan/internal/config"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gapscan",
		Short: "Find missing footage between recording segments",
		Long: `gapscan - find missing footage between recording segments

Walks a directory of continuous-capture recordings (dashcam, security
camera, ...) split into files, reads each file's encoded start time and
duration, and flags neighbouring files where the next recording starts
noticeably later than the previous one ended.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: discovered)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	cmd.Version = version
	cmd.SetVersionTemplate("gapscan {{.Version}}\n")

	cmd.AddCommand(
		newScanCmd(opts),
		newProbeCmd(opts),
		newCacheCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// loadConfig resolves the config file and applies the --log-level override.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, _, err := config.Resolve(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// validate re-checks cfg after command-line overrides.
func validate(cfg *config.Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return &config.ConfigError{Errors: errs}
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}
