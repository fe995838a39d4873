// Package format enumerates the on-disk formats a dataset is persisted in
// and dispatches reads and writes to the per-format packages.
package format

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tingold/geobench/internal/format/flatgeobuf"
	"github.com/tingold/geobench/internal/format/geoparquet"
	"github.com/tingold/geobench/internal/format/shapefile"
	"github.com/tingold/geobench/internal/frame"
)

// ErrUnknownFormat is returned for names and values outside the enumeration.
var ErrUnknownFormat = errors.New("format: unknown format")

// Format identifies a geospatial file format.
type Format int

const (
	Shapefile Format = iota
	GeoParquet
	FlatGeobuf
)

// All lists every supported format.
var All = []Format{Shapefile, GeoParquet, FlatGeobuf}

func (f Format) String() string {
	switch f {
	case Shapefile:
		return "Shapefile"
	case GeoParquet:
		return "GeoParquet"
	case FlatGeobuf:
		return "FlatGeobuf"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file extension, including the dot.
func (f Format) Ext() string {
	switch f {
	case Shapefile:
		return ".shp"
	case GeoParquet:
		return ".parquet"
	case FlatGeobuf:
		return ".fgb"
	default:
		return ""
	}
}

// Parse resolves a format name or common alias, case-insensitively.
func Parse(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "shapefile", "shp":
		return Shapefile, nil
	case "geoparquet", "parquet":
		return GeoParquet, nil
	case "flatgeobuf", "fgb":
		return FlatGeobuf, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ParseAll parses a list of names, preserving order.
func ParseAll(names []string) ([]Format, error) {
	formats := make([]Format, 0, len(names))
	for _, name := range names {
		f, err := Parse(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// Source is a dataset persisted in one format.
type Source struct {
	Format Format
	Path   string
}

// NewSource returns the source for dir/base in format f.
func NewSource(f Format, dir, base string) Source {
	return Source{Format: f, Path: filepath.Join(dir, base+f.Ext())}
}

// Files returns every file backing the source.
func (s Source) Files() []string {
	if s.Format == Shapefile {
		return append([]string{s.Path}, shapefile.SidecarPaths(s.Path)...)
	}
	return []string{s.Path}
}

// Size returns the total size in bytes of the source's files.
func (s Source) Size() (int64, error) {
	var total int64
	for _, p := range s.Files() {
		info, err := os.Stat(p)
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// Write persists the frame to the source, replacing existing files.
func Write(src Source, f *frame.GeoFrame) error {
	var err error
	switch src.Format {
	case Shapefile:
		err = shapefile.WriteFile(src.Path, f)
	case GeoParquet:
		err = geoparquet.WriteFile(src.Path, f, geoparquet.DefaultOptions())
	case FlatGeobuf:
		err = writeFlatGeobuf(src.Path, f)
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownFormat, src.Format)
	}
	if err != nil {
		return fmt.Errorf("write %s %s: %w", src.Format, src.Path, err)
	}
	return nil
}

// Read loads the source into a frame.
func Read(ctx context.Context, src Source) (*frame.GeoFrame, error) {
	var (
		f   *frame.GeoFrame
		err error
	)
	switch src.Format {
	case Shapefile:
		f, err = shapefile.ReadFile(src.Path)
	case GeoParquet:
		f, err = geoparquet.ReadFile(ctx, src.Path, geoparquet.DefaultOptions())
	case FlatGeobuf:
		f, err = readFlatGeobuf(src.Path)
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownFormat, src.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", src.Format, src.Path, err)
	}
	return f, nil
}

func writeFlatGeobuf(path string, f *frame.GeoFrame) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := flatgeobuf.Write(out, f, flatgeobuf.DefaultOptions()); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func readFlatGeobuf(path string) (*frame.GeoFrame, error) {
	r, err := flatgeobuf.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return r.ReadAll()
}
