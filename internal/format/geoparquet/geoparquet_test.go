package geoparquet

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingold/geobench/internal/frame"
)

func randomFrame(t *testing.T, n int) *frame.GeoFrame {
	t.Helper()
	r := rand.New(rand.NewSource(42))
	f := frame.WithCapacity(n)
	for i := 0; i < n; i++ {
		f.Append(int64(i), orb.Point{-180 + r.Float64()*360, -90 + r.Float64()*180})
	}
	return f
}

func TestRoundTrip(t *testing.T) {
	in := randomFrame(t, 1000)
	path := filepath.Join(t.TempDir(), "points.parquet")

	opts := DefaultOptions()
	opts.RowGroupSize = 300 // several row groups and chunks

	require.NoError(t, WriteFile(path, in, opts))

	out, err := ReadFile(context.Background(), path, opts)
	require.NoError(t, err)

	require.Equal(t, in.Len(), out.Len())
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Geometry, out.Geometry)
}

func TestWrite_GeoMetadata(t *testing.T) {
	in := frame.WithCapacity(2)
	in.Append(0, orb.Point{-5, -3})
	in.Append(1, orb.Point{7, 4})
	path := filepath.Join(t.TempDir(), "meta.parquet")

	require.NoError(t, WriteFile(path, in, nil))

	rdr, err := file.OpenParquetFile(path, false)
	require.NoError(t, err)
	defer func() { _ = rdr.Close() }()

	md, err := readMetadata(rdr)
	require.NoError(t, err)

	assert.Equal(t, Version, md.Version)
	assert.Equal(t, "geometry", md.PrimaryColumn)

	col := md.Columns["geometry"]
	assert.Equal(t, EncodingWKB, col.Encoding)
	assert.Equal(t, []string{"Point"}, col.GeometryTypes)
	assert.Equal(t, []float64{-5, -3, 7, 4}, col.BBox)
}

func TestRoundTrip_NullGeometry(t *testing.T) {
	in := frame.WithCapacity(3)
	in.Append(10, orb.Point{1, 1})
	in.Append(11, nil)
	in.Append(12, orb.Point{2, 2})
	path := filepath.Join(t.TempDir(), "nulls.parquet")

	require.NoError(t, WriteFile(path, in, nil))

	out, err := ReadFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, out.ID)
	assert.Nil(t, out.Geometry[1])
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.parquet"), nil)
	assert.Error(t, err)
}

func TestReadFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.parquet")
	require.NoError(t, os.WriteFile(path, []byte("definitely not parquet"), 0o644))

	_, err := ReadFile(context.Background(), path, nil)
	assert.Error(t, err)
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		err  error
	}{
		{"valid", `{"version":"1.0.0","primary_column":"geom","columns":{"geom":{"encoding":"WKB","geometry_types":[]}}}`, nil},
		{"not json", `{`, ErrInvalidGeoMetadata},
		{"no primary", `{"version":"1.0.0","columns":{}}`, ErrInvalidGeoMetadata},
		{"undescribed primary", `{"version":"1.0.0","primary_column":"geom","columns":{}}`, ErrInvalidGeoMetadata},
		{"geoarrow", `{"version":"1.1.0","primary_column":"geom","columns":{"geom":{"encoding":"point","geometry_types":["Point"]}}}`, ErrUnsupportedEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMetadata(tt.raw)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
