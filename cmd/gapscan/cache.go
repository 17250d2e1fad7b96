package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vmunix/gapscan/internal/probe"
)

var errNoCache = errors.New("no probe cache configured (set [cache] path or pass --cache)")

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the probe cache",
	}
	cmd.PersistentFlags().String("cache", "", "Probe cache database path (overrides config)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached probe results",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cache, err := openCache(cmd, opts)
				if err != nil {
					return err
				}
				defer func() { _ = cache.Close() }()

				n, err := cache.Clear()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached entries\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show how many probe results are cached",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cache, err := openCache(cmd, opts)
				if err != nil {
					return err
				}
				defer func() { _ = cache.Close() }()

				n, err := cache.Count()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d cached entries\n", n)
				return nil
			},
		},
	)
	return cmd
}

func openCache(cmd *cobra.Command, opts *rootOptions) (*probe.Cache, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("cache") {
		cfg.Cache.Path, _ = cmd.Flags().GetString("cache")
	}
	if cfg.Cache.Path == "" {
		return nil, errNoCache
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	return probe.OpenCache(cfg.Cache.Path, logger)
}
