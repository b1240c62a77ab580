// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CaltechOpticalObservatories/nirc2-frames/internal/catalog"
	"github.com/CaltechOpticalObservatories/nirc2-frames/internal/cube"
	"github.com/CaltechOpticalObservatories/nirc2-frames/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the frame catalog (scan, query, export)",
	Long: `Catalog maintains a local SQLite database of header-level cube
metadata. Use subcommands to scan a directory tree, query by sample mode
and geometry, or export the records.`,
}

// --- scan subcommand ---

var catalogScanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Index the cube files under a directory tree",
	Long: `Scan walks a directory tree for .fits files, reads each file's
headers, and upserts a record per cube. Unchanged files are skipped on
subsequent runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogScan,
}

func runCatalogScan(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Scan(context.Background(), args[0], os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d cube(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var catalogQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the frame catalog with structured filters",
	Long: `Query searches the catalog by sample mode, minimum extension count,
OBJECT keyword, or path substring.`,
	RunE: runCatalogQuery,
}

func runCatalogQuery(cmd *cobra.Command, args []string) error {
	opts, err := queryOptsFromFlags(cmd)
	if err != nil {
		return err
	}
	if opts.IsEmpty() {
		return fmt.Errorf("filter required: provide --mode, --min-ext, --object, or --path")
	}

	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []types.FrameRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-40s  %-6s  %-14s  %-6s  %-8s  %s\n",
		"Path", "Exts", "Shape", "Mode", "ITime", "Object")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range results {
		p := r.Path
		if len(p) > 40 {
			p = "..." + p[len(p)-37:]
		}
		shape := fmt.Sprintf("%dx%dx%d", r.Depth, r.Height, r.Width)
		fmt.Fprintf(os.Stdout, "%-40s  %-6d  %-14s  %-6s  %-8.3f  %s\n",
			p, r.Extensions, shape, cube.SampMode(r.SampMode), r.ITime, r.Object)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the frame catalog to YAML or JSON",
	Long: `Export writes the catalog (or a filtered subset) to
<catalog-dir>/index/export.yaml or export.json. Supports the same filter
flags as query for partial exports.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := catalogConfig(cmd)
	store, err := catalog.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := queryOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.yaml\n", cfg.CatalogDir)
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.json\n", cfg.CatalogDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")
	if catalogDir == "" {
		catalogDir = viper.GetString("catalog_dir")
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults <= 0 {
		maxResults = viper.GetInt("max_results")
	}

	return types.CatalogConfig{
		CatalogDir: catalogDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command) (catalog.QueryOptions, error) {
	modeStr, _ := cmd.Flags().GetString("mode")
	minExt, _ := cmd.Flags().GetInt("min-ext")
	object, _ := cmd.Flags().GetString("object")
	pathLike, _ := cmd.Flags().GetString("path")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := catalog.QueryOptions{
		MinExtensions: minExt,
		Object:        object,
		PathLike:      pathLike,
		MaxResults:    limit,
	}
	if modeStr != "" {
		mode, err := cube.ParseSampMode(modeStr)
		if err != nil {
			return catalog.QueryOptions{}, err
		}
		opts.SampMode = int(mode)
	}
	return opts, nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", "", "base directory for the catalog (default from config: catalog)")
	catalogCmd.PersistentFlags().Int("max-results", 0, "maximum number of query results (default from config: 20)")

	// Query flags.
	catalogQueryCmd.Flags().String("mode", "", "filter by sample mode: SINGLE, CDS, MCDS, UTR, RXV, RXRV")
	catalogQueryCmd.Flags().Int("min-ext", 0, "keep cubes with at least this many extensions")
	catalogQueryCmd.Flags().String("object", "", "filter by OBJECT keyword")
	catalogQueryCmd.Flags().String("path", "", "filter by path substring")
	catalogQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("mode", "", "filter by sample mode for partial export")
	catalogExportCmd.Flags().Int("min-ext", 0, "minimum extension count for partial export")
	catalogExportCmd.Flags().String("object", "", "filter by OBJECT keyword for partial export")
	catalogExportCmd.Flags().String("path", "", "filter by path substring for partial export")
	catalogExportCmd.Flags().Int("limit", 0, "maximum records to export (0 = all)")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogScanCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
