package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of nirc2-frames",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nirc2-frames %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
