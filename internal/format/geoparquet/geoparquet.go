// Package geoparquet reads and writes point frames as GeoParquet files:
// an INT64 id column and a WKB geometry column described by the "geo"
// file metadata.
package geoparquet

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/tingold/geobench/internal/frame"
)

// Common errors returned by this package.
var (
	ErrMissingGeoMetadata  = errors.New("geoparquet: file has no geo metadata")
	ErrInvalidGeoMetadata  = errors.New("geoparquet: invalid geo metadata")
	ErrUnsupportedEncoding = errors.New("geoparquet: unsupported geometry encoding")
	ErrMissingColumn       = errors.New("geoparquet: column not found")
	ErrColumnType          = errors.New("geoparquet: unexpected column type")
)

// Options configures GeoParquet writing and reading.
type Options struct {
	IDColumn       string
	GeometryColumn string
	RowGroupSize   int64
	Compression    compress.Compression
}

// DefaultOptions returns the column layout used by common GeoParquet writers.
func DefaultOptions() *Options {
	return &Options{
		IDColumn:       "id",
		GeometryColumn: "geometry",
		RowGroupSize:   64 * 1024,
		Compression:    compress.Codecs.Snappy,
	}
}

// WriteFile writes the frame to path, replacing any existing file.
func WriteFile(path string, f *frame.GeoFrame, opts *Options) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(out, f, opts); err != nil {
		_ = out.Close()
		return err
	}

	// The parquet writer may already have closed the file.
	if err := out.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

// Write writes the frame as GeoParquet to w.
func Write(w io.Writer, f *frame.GeoFrame, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	geo, err := json.Marshal(newMetadata(f, opts))
	if err != nil {
		return err
	}

	md := arrow.NewMetadata([]string{MetadataKey}, []string{string(geo)})
	schema := arrow.NewSchema([]arrow.Field{
		{Name: opts.IDColumn, Type: arrow.PrimitiveTypes.Int64},
		{Name: opts.GeometryColumn, Type: arrow.BinaryTypes.Binary, Nullable: true},
	}, &md)

	props := parquet.NewWriterProperties(
		parquet.WithCompression(opts.Compression),
		parquet.WithMaxRowGroupLength(opts.RowGroupSize),
	)

	fw, err := pqarrow.NewFileWriter(schema, w, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return err
	}

	mem := memory.DefaultAllocator
	batch := int(opts.RowGroupSize)
	if batch <= 0 {
		batch = f.Len()
	}

	for start := 0; start < f.Len(); start += batch {
		end := min(start+batch, f.Len())

		rec, err := buildRecord(mem, schema, f, start, end)
		if err != nil {
			_ = fw.Close()
			return err
		}

		err = fw.Write(rec)
		rec.Release()
		if err != nil {
			_ = fw.Close()
			return err
		}
	}

	return fw.Close()
}

func buildRecord(mem memory.Allocator, schema *arrow.Schema, f *frame.GeoFrame, start, end int) (arrow.Record, error) {
	ids := array.NewInt64Builder(mem)
	defer ids.Release()
	geoms := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer geoms.Release()

	ids.AppendValues(f.ID[start:end], nil)

	for _, g := range f.Geometry[start:end] {
		if g == nil {
			geoms.AppendNull()
			continue
		}
		data, err := wkb.Marshal(g, binary.LittleEndian)
		if err != nil {
			return nil, err
		}
		geoms.Append(data)
	}

	idArr := ids.NewInt64Array()
	defer idArr.Release()
	geomArr := geoms.NewBinaryArray()
	defer geomArr.Release()

	return array.NewRecord(schema, []arrow.Array{idArr, geomArr}, int64(end-start)), nil
}

func newMetadata(f *frame.GeoFrame, opts *Options) *Metadata {
	col := ColumnMetadata{
		Encoding:      EncodingWKB,
		GeometryTypes: f.GeometryTypes(),
	}
	if col.GeometryTypes == nil {
		col.GeometryTypes = []string{}
	}
	if f.Len() > 0 {
		b := f.Bound()
		col.BBox = []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
	}

	return &Metadata{
		Version:       Version,
		PrimaryColumn: opts.GeometryColumn,
		Columns:       map[string]ColumnMetadata{opts.GeometryColumn: col},
	}
}

// ReadFile reads a GeoParquet file into a frame. The geometry column is the
// primary column named by the geo metadata. Without an id column, row
// numbers are used as ids.
func ReadFile(ctx context.Context, path string, opts *Options) (*frame.GeoFrame, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rdr.Close() }()

	md, err := readMetadata(rdr)
	if err != nil {
		return nil, err
	}

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: 64 * 1024}, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	n := int(tbl.NumRows())

	geomIdx := tbl.Schema().FieldIndices(md.PrimaryColumn)
	if len(geomIdx) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, md.PrimaryColumn)
	}
	geoms, err := readGeometries(tbl.Column(geomIdx[0]), n)
	if err != nil {
		return nil, err
	}

	var ids []int64
	if idIdx := tbl.Schema().FieldIndices(opts.IDColumn); len(idIdx) > 0 {
		ids, err = readIDs(tbl.Column(idIdx[0]), n)
		if err != nil {
			return nil, err
		}
	} else {
		ids = make([]int64, n)
		for i := range ids {
			ids[i] = int64(i)
		}
	}

	return frame.New(ids, geoms)
}

func readMetadata(rdr *file.Reader) (*Metadata, error) {
	for _, kv := range rdr.MetaData().KeyValueMetadata() {
		if kv.GetKey() == MetadataKey {
			return parseMetadata(kv.GetValue())
		}
	}
	return nil, ErrMissingGeoMetadata
}

func readGeometries(col *arrow.Column, n int) ([]orb.Geometry, error) {
	geoms := make([]orb.Geometry, 0, n)
	for _, chunk := range col.Data().Chunks() {
		bin, ok := chunk.(*array.Binary)
		if !ok {
			return nil, fmt.Errorf("%w: geometry column is %s", ErrColumnType, chunk.DataType())
		}
		for i := 0; i < bin.Len(); i++ {
			if bin.IsNull(i) {
				geoms = append(geoms, nil)
				continue
			}
			g, err := wkb.Unmarshal(bin.Value(i))
			if err != nil {
				return nil, fmt.Errorf("geoparquet: row %d: %w", len(geoms), err)
			}
			geoms = append(geoms, g)
		}
	}
	return geoms, nil
}

func readIDs(col *arrow.Column, n int) ([]int64, error) {
	ids := make([]int64, 0, n)
	for _, chunk := range col.Data().Chunks() {
		arr, ok := chunk.(*array.Int64)
		if !ok {
			return nil, fmt.Errorf("%w: id column is %s", ErrColumnType, chunk.DataType())
		}
		ids = append(ids, arr.Int64Values()...)
	}
	return ids, nil
}
