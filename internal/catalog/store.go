// Copyright Caltech Optical Observatories, 2026. All rights reserved.

// Package catalog persists header-level metadata for NIRC2 cube files in
// a SQLite database, so a night's worth of cubes can be queried by sample
// mode and geometry without re-reading every file.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/CaltechOpticalObservatories/nirc2-frames/internal/cube"
	"github.com/CaltechOpticalObservatories/nirc2-frames/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "frames.db"
)

// Store manages the frame catalog SQLite database.
type Store struct {
	db         *sql.DB
	catalogDir string
	maxResults int
}

// NewStore opens or creates the catalog database at
// catalogDir/index/frames.db, creating the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CatalogDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		catalogDir: cfg.CatalogDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS frames (
			path TEXT PRIMARY KEY,
			extensions INTEGER NOT NULL,
			depth INTEGER,
			height INTEGER,
			width INTEGER,
			sampmode INTEGER,
			itime REAL,
			coadds INTEGER,
			multisam INTEGER,
			object TEXT,
			file_mod_time TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_frames_sampmode ON frames(sampmode)`,
		`CREATE INDEX IF NOT EXISTS idx_frames_object ON frames(object)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ScanSummary holds counts from a catalog scan run.
type ScanSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of cube files processed.
func (s ScanSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Scan walks root for .fits/.fit files and upserts a FrameRecord for each.
// Files whose modification time matches the stored record are skipped, so
// repeated scans only touch new and changed cubes. Per-file failures are
// reported to w and counted, not fatal.
func (s *Store) Scan(ctx context.Context, root string, w io.Writer) (ScanSummary, error) {
	var summary ScanSummary

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".fits" && ext != ".fit" {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		info, err := d.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			return nil
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM frames WHERE path = ?`, path,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", path)
			summary.Skipped++
			return nil
		}
		isUpdate := err == nil

		rec, err := cube.Probe(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			return nil
		}

		if err := s.upsert(ctx, rec, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			return nil
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d extensions)\n", path, rec.Extensions)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d extensions)\n", path, rec.Extensions)
			summary.Indexed++
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("scanning %s: %w", root, err)
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) upsert(ctx context.Context, rec *types.FrameRecord, modTime string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO frames (path, extensions, depth, height, width, sampmode,
			itime, coadds, multisam, object, file_mod_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			extensions=excluded.extensions, depth=excluded.depth,
			height=excluded.height, width=excluded.width,
			sampmode=excluded.sampmode, itime=excluded.itime,
			coadds=excluded.coadds, multisam=excluded.multisam,
			object=excluded.object, file_mod_time=excluded.file_mod_time`,
		rec.Path, rec.Extensions, rec.Depth, rec.Height, rec.Width,
		rec.SampMode, rec.ITime, rec.Coadds, rec.Multisam, rec.Object, modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting frame record: %w", err)
	}
	return nil
}
