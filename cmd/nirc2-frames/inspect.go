// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CaltechOpticalObservatories/nirc2-frames/internal/cube"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [cube.fits]",
	Short: "Dump the header cards of one HDU",
	Long: `Inspect prints the header cards of the selected HDU in file order.
HDU 0 is the primary header; extensions start at 1.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Int("hdu", 0, "HDU index (0 = primary)")
	inspectCmd.Flags().Bool("json", false, "output cards as JSON")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	hdu, _ := cmd.Flags().GetInt("hdu")

	cards, err := cube.Cards(args[0], hdu)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cards)
	}

	for _, card := range cards {
		if card.Comment != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s = %-20v / %s\n", card.Name, card.Value, card.Comment)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s = %v\n", card.Name, card.Value)
		}
	}
	return nil
}
