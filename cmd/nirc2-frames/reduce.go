// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"
	"github.com/spf13/cobra"

	"github.com/CaltechOpticalObservatories/nirc2-frames/internal/cube"
	"github.com/CaltechOpticalObservatories/nirc2-frames/internal/reduce"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [cube.fits]",
	Short: "Collapse a cube's readout samples by sampling mode",
	Long: `Reduce loads a cube and collapses each extension's readout samples
into a single plane: last sample for SINGLE, last-minus-first for CDS,
averaged pair differences for MCDS, and a least-squares slope fit for UTR.
The mode defaults to the cube's SAMPMODE keyword and can be overridden.

With --coadd the reduced extensions are summed into one plane. With --out
the result is written as a FITS file with one image extension per plane.`,
	Args: cobra.ExactArgs(1),
	RunE: runReduce,
}

func init() {
	reduceCmd.Flags().String("mode", "", "override sampling mode: SINGLE, CDS, MCDS, UTR, or a numeric value")
	reduceCmd.Flags().Bool("coadd", false, "sum the reduced extensions into one plane")
	reduceCmd.Flags().String("out", "", "write the reduced result to this FITS file")

	rootCmd.AddCommand(reduceCmd)
}

func runReduce(cmd *cobra.Command, args []string) error {
	path := args[0]

	rec, err := cube.Probe(path)
	if err != nil {
		return err
	}

	mode := cube.SampMode(rec.SampMode)
	if override, _ := cmd.Flags().GetString("mode"); override != "" {
		mode, err = cube.ParseSampMode(override)
		if err != nil {
			return err
		}
	}
	if mode == cube.SampModeNone {
		return fmt.Errorf("%s has no SAMPMODE keyword; use --mode to force one", path)
	}

	stack, err := cube.Load(path, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if stack.Empty() {
		return fmt.Errorf("%s has no frame data", path)
	}

	img, err := reduce.Apply(stack, mode, rec.ITime)
	if err != nil {
		return err
	}

	if coadd, _ := cmd.Flags().GetBool("coadd"); coadd {
		img = reduce.Coadd(img)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "reduced %s with %s: %d plane(s) of %dx%d\n",
		path, mode, img.NExt, img.Height, img.Width)

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		return nil
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	cards := []fitsio.Card{
		{Name: cube.KeySampMode, Value: int(mode), Comment: mode.String()},
		{Name: cube.KeyITime, Value: rec.ITime, Comment: "integration time per coadd in sec"},
		{Name: "REDUCED", Value: true, Comment: "samples collapsed by nirc2-frames"},
	}
	if err := reduce.WriteFITS(out, img, cards); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
	return nil
}
