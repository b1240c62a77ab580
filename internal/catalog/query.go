// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CaltechOpticalObservatories/nirc2-frames/pkg/types"
)

// QueryOptions holds structured filters for catalog queries.
type QueryOptions struct {
	// SampMode filters by numeric sample mode. Zero means no filter.
	SampMode int

	// MinExtensions keeps only cubes with at least this many extensions.
	MinExtensions int

	// Object filters by exact OBJECT keyword value.
	Object string

	// PathLike keeps cubes whose path contains this substring.
	PathLike string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no filters.
func (q QueryOptions) IsEmpty() bool {
	return q.SampMode == 0 && q.MinExtensions == 0 && q.Object == "" && q.PathLike == ""
}

// Query returns catalog records matching opts, ordered by path.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.FrameRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT path, extensions, depth, height, width, sampmode,
		itime, coadds, multisam, object, file_mod_time FROM frames WHERE 1=1`)

	if opts.SampMode != 0 {
		qb.WriteString(` AND sampmode = ?`)
		args = append(args, opts.SampMode)
	}
	if opts.MinExtensions > 0 {
		qb.WriteString(` AND extensions >= ?`)
		args = append(args, opts.MinExtensions)
	}
	if opts.Object != "" {
		qb.WriteString(` AND object = ?`)
		args = append(args, opts.Object)
	}
	if opts.PathLike != "" {
		qb.WriteString(` AND path LIKE ?`)
		args = append(args, "%"+opts.PathLike+"%")
	}

	qb.WriteString(` ORDER BY path LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []types.FrameRecord
	for rows.Next() {
		var (
			rec     types.FrameRecord
			modTime string
		)
		if err := rows.Scan(&rec.Path, &rec.Extensions, &rec.Depth, &rec.Height,
			&rec.Width, &rec.SampMode, &rec.ITime, &rec.Coadds, &rec.Multisam,
			&rec.Object, &modTime); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, modTime); err == nil {
			rec.ModTime = t
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return results, nil
}
