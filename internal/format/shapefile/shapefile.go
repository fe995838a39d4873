// Package shapefile reads and writes point frames as ESRI Shapefiles.
//
// A dataset written to points.shp also produces points.shx (record index),
// points.dbf (attribute table with the numeric id field) and points.prj
// (WGS84 coordinate system).
package shapefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/tingold/geobench/internal/frame"
)

// Common errors returned by this package.
var (
	ErrUnsupportedGeometry = errors.New("shapefile: unsupported geometry type")
	ErrUnsupportedShape    = errors.New("shapefile: unsupported shape type")
	ErrInvalidID           = errors.New("shapefile: invalid id attribute")
	ErrShortWrite          = errors.New("shapefile: file shorter than its records")
)

// IDField is the DBF field holding the record id.
const IDField = "id"

// idFieldWidth fits any int32 in DBF numeric notation.
const idFieldWidth = 11

// Fixed layout sizes, in bytes, of a point shapefile with one DBF field.
const (
	fileHeaderSize  = 100
	pointRecordSize = 28 // record header, shape type, x, y
	indexRecordSize = 8
	dbfHeaderSize   = 33 + 32
	dbfRecordSize   = 1 + idFieldWidth
)

// WGS84 is the .prj contents for EPSG:4326.
const WGS84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// Sidecars lists the files that accompany a .shp file.
var Sidecars = []string{".shx", ".dbf", ".prj"}

// WriteFile writes the frame to path (a .shp file) and its sidecar files.
// Only point geometries can be written.
func WriteFile(path string, f *frame.GeoFrame) error {
	for i, g := range f.Geometry {
		if _, ok := g.(orb.Point); !ok {
			return fmt.Errorf("%w: row %d is %T", ErrUnsupportedGeometry, i, g)
		}
	}

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return err
	}

	if err := w.SetFields([]shp.Field{shp.NumberField(IDField, idFieldWidth)}); err != nil {
		w.Close()
		return err
	}

	for i, g := range f.Geometry {
		p := g.(orb.Point)
		row := w.Write(&shp.Point{X: p[0], Y: p[1]})
		// The DBF writer only formats int, float64 and string values.
		if err := w.WriteAttribute(int(row), 0, int(f.ID[i])); err != nil {
			w.Close()
			return fmt.Errorf("shapefile: row %d: %w", i, err)
		}
	}

	w.Close()

	if err := renameDBF(path); err != nil {
		return err
	}
	if err := checkSizes(path, int64(f.Len())); err != nil {
		return err
	}

	return os.WriteFile(sidecar(path, ".prj"), []byte(WGS84), 0o644)
}

// renameDBF moves the attribute table go-shp creates as "<base>dbf" to
// "<base>.dbf", where readers look for it.
func renameDBF(path string) error {
	base := strings.TrimSuffix(path, ".shp")
	err := os.Rename(base+"dbf", base+".dbf")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// checkSizes compares the written files with the size n records need.
// go-shp drops write errors, so a full disk only shows up here.
func checkSizes(path string, n int64) error {
	want := map[string]int64{
		path:                  fileHeaderSize + n*pointRecordSize,
		sidecar(path, ".shx"): fileHeaderSize + n*indexRecordSize,
		sidecar(path, ".dbf"): dbfHeaderSize + n*dbfRecordSize,
	}
	for p, size := range want {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.Size() < size {
			return fmt.Errorf("%w: %s has %d bytes, want %d", ErrShortWrite, p, info.Size(), size)
		}
	}
	return nil
}

// ReadFile reads a point shapefile into a frame. Files without an id field
// use record numbers as ids.
func ReadFile(path string) (*frame.GeoFrame, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	idCol := -1
	for i, field := range r.Fields() {
		if strings.EqualFold(field.String(), IDField) {
			idCol = i
			break
		}
	}

	out := frame.WithCapacity(0)
	for r.Next() {
		n, s := r.Shape()

		p, ok := s.(*shp.Point)
		if !ok {
			return nil, fmt.Errorf("%w: record %d is %T", ErrUnsupportedShape, n, s)
		}

		id := int64(n)
		if idCol >= 0 {
			id, err = parseID(r.ReadAttribute(n, idCol))
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", n, err)
			}
		}

		out.Append(id, orb.Point{p.X, p.Y})
	}

	if err := r.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func parseID(raw string) (int64, error) {
	raw = strings.Trim(raw, " \x00")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Some writers emit numeric fields as decimals ("12.0").
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
		}
		id = int64(f)
	}
	return id, nil
}

// SidecarPaths returns the paths of the files written next to path.
func SidecarPaths(path string) []string {
	paths := make([]string, 0, len(Sidecars))
	for _, ext := range Sidecars {
		paths = append(paths, sidecar(path, ext))
	}
	return paths
}

func sidecar(path, ext string) string {
	return strings.TrimSuffix(path, ".shp") + ext
}
