// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CaltechOpticalObservatories/nirc2-frames/internal/archive"
	"github.com/CaltechOpticalObservatories/nirc2-frames/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "nirc2-frames/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls...]",
	Short: "Download cube files from an archive",
	Long: `Fetch downloads .fits cube files from archive URLs into the data
directory. Existing files are skipped, rate-limited requests are retried
with backoff, and partial downloads are never left behind.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().String("data-dir", "", "base directory for fetched cubes (default from config: data)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more cube URLs")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("data_dir")
	}

	cfg := types.ArchiveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		DataDir:       dataDir,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	result := archive.FetchBatch(cmd.Context(), client, args, cfg, cmd.OutOrStdout())
	if result.HasFailures() {
		return fmt.Errorf("%d cube(s) failed to download", result.Failed)
	}
	return nil
}
