// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout for individual HTTP requests.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ArchiveConfig holds settings for the archive fetch stage.
type ArchiveConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the pause between consecutive downloads.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// DataDir is the base directory for fetched cubes (contains raw/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxRetries bounds 429 retry attempts per request. Zero uses the
	// package default.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CatalogConfig holds settings for the frame catalog stage.
type CatalogConfig struct {
	// CatalogDir is the base directory for the catalog (contains index/).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults limits query result counts. Zero uses the store default.
	MaxResults int `json:"max_results" yaml:"max_results"`
}
