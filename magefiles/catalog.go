//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Scan builds the CLI and indexes data/raw into the frame catalog.
func Scan() error {
	mg.Deps(Build)
	return runCLI("catalog", "scan", "data/raw", "--catalog-dir", "catalog")
}

// Export builds the CLI and writes the catalog to catalog/index/export.yaml.
func Export() error {
	mg.Deps(Build)
	return runCLI("catalog", "export", "--catalog-dir", "catalog")
}

func runCLI(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", binName, args, err)
	}
	return nil
}
