// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/CaltechOpticalObservatories/nirc2-frames/pkg/types"
)

// writeCube writes a small FITS cube with the given primary cards and
// next extensions of 2x2x2 int32 samples.
func writeCube(t *testing.T, path string, cards []fitsio.Card, next int) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	f, err := fitsio.Create(out)
	require.NoError(t, err)
	defer f.Close()

	primary := fitsio.NewImage(8, []int{})
	defer primary.Close()
	require.NoError(t, primary.Header().Append(cards...))
	require.NoError(t, f.Write(primary))

	for e := 0; e < next; e++ {
		img := fitsio.NewImage(32, []int{2, 2, 2})
		data := make([]int32, 8)
		for i := range data {
			data[i] = int32(e*100 + i)
		}
		require.NoError(t, img.Write(&data))
		require.NoError(t, f.Write(img))
		img.Close()
	}
}

func sampCards(mode int, object string) []fitsio.Card {
	return []fitsio.Card{
		{Name: "SAMPMODE", Value: mode, Comment: "sampling mode"},
		{Name: "OBJECT", Value: object},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.CatalogConfig{CatalogDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScanIndexesCubes(t *testing.T) {
	dataDir := t.TempDir()
	writeCube(t, filepath.Join(dataDir, "n0001.fits"), sampCards(2, "NGC 1068"), 2)
	writeCube(t, filepath.Join(dataDir, "night2", "n0002.fits"), sampCards(3, "Vega"), 4)
	writeCube(t, filepath.Join(dataDir, "notes.txt"), nil, 0)

	s := newTestStore(t)
	var log bytes.Buffer
	summary, err := s.Scan(context.Background(), dataDir, &log)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Indexed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Total())
	assert.Contains(t, log.String(), "n0001.fits (2 extensions)")
	assert.Contains(t, log.String(), "indexed: 2")
}

func TestScanSkipsUnchanged(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "n0001.fits")
	writeCube(t, path, sampCards(2, "NGC 1068"), 2)

	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Scan(ctx, dataDir, &bytes.Buffer{})
	require.NoError(t, err)

	var log bytes.Buffer
	summary, err := s.Scan(ctx, dataDir, &log)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Indexed)
	assert.Contains(t, log.String(), "skipped")
}

func TestScanUpdatesChanged(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "n0001.fits")
	writeCube(t, path, sampCards(2, "NGC 1068"), 2)

	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Scan(ctx, dataDir, &bytes.Buffer{})
	require.NoError(t, err)

	// Rewrite with more extensions and push the mod time forward.
	writeCube(t, path, sampCards(3, "NGC 1068"), 4)
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	summary, err := s.Scan(ctx, dataDir, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	recs, err := s.Query(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 4, recs[0].Extensions)
	assert.Equal(t, 3, recs[0].SampMode)
}

func TestScanCountsFailures(t *testing.T) {
	dataDir := t.TempDir()
	writeCube(t, filepath.Join(dataDir, "good.fits"), sampCards(2, "Vega"), 1)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "bad.fits"), []byte("not a FITS file"), 0o644))

	s := newTestStore(t)
	var log bytes.Buffer
	summary, err := s.Scan(context.Background(), dataDir, &log)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, log.String(), "failed")
}

func TestScanHonorsContext(t *testing.T) {
	dataDir := t.TempDir()
	writeCube(t, filepath.Join(dataDir, "n0001.fits"), sampCards(2, "Vega"), 1)

	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scan(ctx, dataDir, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryFilters(t *testing.T) {
	dataDir := t.TempDir()
	writeCube(t, filepath.Join(dataDir, "n0001.fits"), sampCards(2, "NGC 1068"), 2)
	writeCube(t, filepath.Join(dataDir, "n0002.fits"), sampCards(3, "NGC 1068"), 6)
	writeCube(t, filepath.Join(dataDir, "n0003.fits"), sampCards(2, "Vega"), 2)

	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Scan(ctx, dataDir, &bytes.Buffer{})
	require.NoError(t, err)

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{
			name: "all",
			opts: QueryOptions{},
			want: []string{"n0001.fits", "n0002.fits", "n0003.fits"},
		},
		{
			name: "by mode",
			opts: QueryOptions{SampMode: 3},
			want: []string{"n0002.fits"},
		},
		{
			name: "by object",
			opts: QueryOptions{Object: "Vega"},
			want: []string{"n0003.fits"},
		},
		{
			name: "by min extensions",
			opts: QueryOptions{MinExtensions: 3},
			want: []string{"n0002.fits"},
		},
		{
			name: "by path substring",
			opts: QueryOptions{PathLike: "n0001"},
			want: []string{"n0001.fits"},
		},
		{
			name: "combined",
			opts: QueryOptions{SampMode: 2, Object: "NGC 1068"},
			want: []string{"n0001.fits"},
		},
		{
			name: "limited",
			opts: QueryOptions{MaxResults: 2},
			want: []string{"n0001.fits", "n0002.fits"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.Query(ctx, tt.opts)
			require.NoError(t, err)
			var got []string
			for _, rec := range recs {
				got = append(got, filepath.Base(rec.Path))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	assert.True(t, QueryOptions{}.IsEmpty())
	assert.True(t, QueryOptions{MaxResults: 5}.IsEmpty())
	assert.False(t, QueryOptions{SampMode: 2}.IsEmpty())
	assert.False(t, QueryOptions{Object: "Vega"}.IsEmpty())
}

func TestExportYAML(t *testing.T) {
	dataDir := t.TempDir()
	writeCube(t, filepath.Join(dataDir, "n0001.fits"), sampCards(2, "NGC 1068"), 2)

	catalogDir := t.TempDir()
	s, err := NewStore(types.CatalogConfig{CatalogDir: catalogDir})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.Scan(ctx, dataDir, &bytes.Buffer{})
	require.NoError(t, err)

	require.NoError(t, s.ExportYAML(ctx, QueryOptions{}))

	data, err := os.ReadFile(filepath.Join(catalogDir, "index", "export.yaml"))
	require.NoError(t, err)

	var entries []types.FrameRecord
	require.NoError(t, yaml.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].SampMode)
	assert.Equal(t, "NGC 1068", entries[0].Object)
}

func TestExportJSON(t *testing.T) {
	dataDir := t.TempDir()
	writeCube(t, filepath.Join(dataDir, "n0001.fits"), sampCards(4, "Vega"), 8)

	catalogDir := t.TempDir()
	s, err := NewStore(types.CatalogConfig{CatalogDir: catalogDir})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.Scan(ctx, dataDir, &bytes.Buffer{})
	require.NoError(t, err)

	require.NoError(t, s.ExportJSON(ctx, QueryOptions{}))

	data, err := os.ReadFile(filepath.Join(catalogDir, "index", "export.json"))
	require.NoError(t, err)

	var entries []types.FrameRecord
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 8, entries[0].Extensions)
}
