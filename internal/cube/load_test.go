// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package cube

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// extBlock is one extension's pixel data and declared shape.
type extBlock struct {
	dims Shape
	data []int32
}

// ramp fills an extension block with a deterministic pixel pattern.
func ramp(dims Shape, offset int32) extBlock {
	data := make([]int32, dims.extLen())
	for i := range data {
		data[i] = offset + int32(i)
	}
	return extBlock{dims: dims, data: data}
}

// writeCube writes a NIRC2-style cube fixture: a metadata-only primary HDU
// with the given cards, then one 32-bit image extension per block.
func writeCube(t *testing.T, path string, cards []fitsio.Card, exts []extBlock) {
	t.Helper()

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

	for _, ext := range exts {
		img := fitsio.NewImage(32, []int{ext.dims.X, ext.dims.Y, ext.dims.Z})
		data := ext.data
		require.NoError(t, img.Write(&data))
		require.NoError(t, f.Write(img))
		img.Close()
	}
}

func sampModeCard(mode int) fitsio.Card {
	return fitsio.Card{Name: KeySampMode, Value: mode, Comment: "1:SINGLE 2:CDS 3:MCDS 4:UTR 5:RXV 6:RXRV"}
}

func TestLoadStacksExtensions(t *testing.T) {
	dims := Shape{Z: 3, Y: 4, X: 5}
	exts := []extBlock{ramp(dims, 0), ramp(dims, 1000), ramp(dims, -2000)}

	path := filepath.Join(t.TempDir(), "cube.fits")
	writeCube(t, path, []fitsio.Card{sampModeCard(2)}, exts)

	var log bytes.Buffer
	stack, err := Load(path, &log)
	require.NoError(t, err)

	assert.False(t, stack.Empty())
	assert.Equal(t, 3, stack.NExt)
	assert.Equal(t, dims, stack.Dims)

	for e, ext := range exts {
		assert.Equal(t, ext.data, stack.Ext(e), "extension %d", e+1)
	}

	// Spot-check the (e, z, y, x) indexing against the flat layout.
	assert.Equal(t, exts[1].data[(2*dims.Y+3)*dims.X+4], stack.At(1, 2, 3, 4))

	// Progress output carries the shape and each extension index.
	assert.Contains(t, log.String(), "stack shape (3, 3, 4, 5)")
	for _, line := range []string{"0\n", "1\n", "2\n"} {
		assert.Contains(t, log.String(), line)
	}
}

func TestLoadMissingSampMode(t *testing.T) {
	dims := Shape{Z: 2, Y: 2, X: 2}
	path := filepath.Join(t.TempDir(), "nomode.fits")
	writeCube(t, path, []fitsio.Card{{Name: "OBSERVER", Value: "keck"}}, []extBlock{ramp(dims, 0)})

	var log bytes.Buffer
	stack, err := Load(path, &log)
	require.NoError(t, err)

	assert.True(t, stack.Empty())
	assert.Equal(t, 0, stack.Len())
	// The notice is emitted exactly once.
	assert.Equal(t, 1, strings.Count(log.String(), "no SAMPMODE keyword"))
}

func TestLoadShapeMismatch(t *testing.T) {
	want := Shape{Z: 2, Y: 3, X: 4}
	other := Shape{Z: 2, Y: 3, X: 5}
	path := filepath.Join(t.TempDir(), "mismatch.fits")
	writeCube(t, path, []fitsio.Card{sampModeCard(3)}, []extBlock{
		ramp(want, 0), ramp(other, 100),
	})

	var log bytes.Buffer
	stack, err := Load(path, &log)
	require.Error(t, err)
	assert.Nil(t, stack)

	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 2, shapeErr.Ext)
	assert.Equal(t, want, shapeErr.Want)
	assert.Equal(t, other, shapeErr.Got)
}

func TestLoadMissingFile(t *testing.T) {
	var log bytes.Buffer
	_, err := Load(filepath.Join(t.TempDir(), "absent.fits"), &log)
	require.Error(t, err)
	assert.Empty(t, log.String(), "no diagnostics before the file opens")
}

func TestLoadNoExtensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.fits")
	writeCube(t, path, []fitsio.Card{sampModeCard(1)}, nil)

	var log bytes.Buffer
	_, err := Load(path, &log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extension HDUs")
}

// writeTypedCube writes a one-extension cube whose pixel data is stored
// at the given BITPIX. src must be a pointer to a slice of the matching
// native type with dims.extLen() elements.
func writeTypedCube(t *testing.T, path string, bitpix int, dims Shape, src any) {
	t.Helper()

	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	f, err := fitsio.Create(out)
	require.NoError(t, err)
	primary := fitsio.NewImage(8, []int{})
	require.NoError(t, primary.Header().Append(sampModeCard(2)))
	require.NoError(t, f.Write(primary))
	primary.Close()

	img := fitsio.NewImage(bitpix, []int{dims.X, dims.Y, dims.Z})
	require.NoError(t, img.Write(src))
	require.NoError(t, f.Write(img))
	img.Close()
	require.NoError(t, f.Close())
}

func TestLoadConvertsInt16(t *testing.T) {
	// A 16-bit cube must load bit-exactly into the int32 stack.
	dims := Shape{Z: 2, Y: 2, X: 3}
	src := make([]int16, dims.extLen())
	for i := range src {
		src[i] = int16(i - 6)
	}

	path := filepath.Join(t.TempDir(), "int16.fits")
	writeTypedCube(t, path, 16, dims, &src)

	var log bytes.Buffer
	stack, err := Load(path, &log)
	require.NoError(t, err)

	for i, v := range src {
		assert.Equal(t, int32(v), stack.Ext(0)[i])
	}
}

func TestLoadConvertsInt64(t *testing.T) {
	dims := Shape{Z: 1, Y: 2, X: 2}
	src := []int64{0, 40000, -40000, 1 << 20}

	path := filepath.Join(t.TempDir(), "int64.fits")
	writeTypedCube(t, path, 64, dims, &src)

	var log bytes.Buffer
	stack, err := Load(path, &log)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 40000, -40000, 1 << 20}, stack.Ext(0))
}

func TestLoadConvertsFloat64(t *testing.T) {
	// Floating-point cubes truncate toward zero, matching int32 conversion.
	dims := Shape{Z: 1, Y: 2, X: 2}
	src := []float64{0.0, 2.75, -2.75, 1234.0}

	path := filepath.Join(t.TempDir(), "float64.fits")
	writeTypedCube(t, path, -64, dims, &src)

	var log bytes.Buffer
	stack, err := Load(path, &log)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 2, -2, 1234}, stack.Ext(0))
}

func TestLoadConvertsFloat32(t *testing.T) {
	dims := Shape{Z: 1, Y: 2, X: 2}
	src := []float32{0.5, -0.5, 100.25, -3}

	path := filepath.Join(t.TempDir(), "float32.fits")
	writeTypedCube(t, path, -32, dims, &src)

	var log bytes.Buffer
	stack, err := Load(path, &log)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 0, 100, -3}, stack.Ext(0))
}

func TestLoadIdempotent(t *testing.T) {
	dims := Shape{Z: 2, Y: 3, X: 3}
	path := filepath.Join(t.TempDir(), "twice.fits")
	writeCube(t, path, []fitsio.Card{sampModeCard(4)}, []extBlock{ramp(dims, 7), ramp(dims, -7)})

	var log1, log2 bytes.Buffer
	first, err := Load(path, &log1)
	require.NoError(t, err)
	second, err := Load(path, &log2)
	require.NoError(t, err)

	assert.Equal(t, first.NExt, second.NExt)
	assert.Equal(t, first.Dims, second.Dims)
	for e := 0; e < first.NExt; e++ {
		assert.Equal(t, first.Ext(e), second.Ext(e))
	}
	assert.Equal(t, log1.String(), log2.String())
}
