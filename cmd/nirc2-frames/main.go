// Copyright Caltech Optical Observatories, 2026. All rights reserved.

// Package main is the entry point for the nirc2-frames CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the nirc2-frames CLI.
var rootCmd = &cobra.Command{
	Use:   "nirc2-frames",
	Short: "Load, reduce, and catalog NIRC2 multi-extension FITS cubes",
	Long: `nirc2-frames works with the multi-extension FITS cubes written by the
camera-interface camerad daemon for the NIRC2 instrument. Each cube holds a
metadata-only primary HDU and one 3-D image extension per coadd.

Each operation is a subcommand: load stacks a cube's extensions into a 4-D
frame array, inspect dumps header cards, reduce collapses readout samples
according to the detector sampling mode, scan/query/export maintain a SQLite
catalog of cube metadata, and fetch downloads cubes from an archive.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./nirc2-frames.yaml or ~/.config/nirc2-frames/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nirc2-frames")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nirc2-frames"))
		}
	}

	viper.SetEnvPrefix("NIRC2_FRAMES")
	viper.AutomaticEnv()

	viper.SetDefault("catalog_dir", "catalog")
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("max_results", 20)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
