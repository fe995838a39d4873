// Package frame provides an in-memory geo dataframe: an id column and a
// geometry column of equal length, with a spatial intersects predicate that
// yields a row selection.
package frame

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/paulmach/orb"
)

// ErrLengthMismatch is returned when the id and geometry columns differ.
var ErrLengthMismatch = errors.New("frame: id and geometry columns differ in length")

// GeoFrame holds one record per row: ID[i] belongs to Geometry[i].
type GeoFrame struct {
	ID       []int64
	Geometry []orb.Geometry
}

// New creates a frame from parallel columns. The slices are not copied.
func New(ids []int64, geoms []orb.Geometry) (*GeoFrame, error) {
	if len(ids) != len(geoms) {
		return nil, fmt.Errorf("%w: %d ids, %d geometries", ErrLengthMismatch, len(ids), len(geoms))
	}
	return &GeoFrame{ID: ids, Geometry: geoms}, nil
}

// WithCapacity returns an empty frame with room for n rows.
func WithCapacity(n int) *GeoFrame {
	return &GeoFrame{
		ID:       make([]int64, 0, n),
		Geometry: make([]orb.Geometry, 0, n),
	}
}

// Append adds a row.
func (f *GeoFrame) Append(id int64, g orb.Geometry) {
	f.ID = append(f.ID, id)
	f.Geometry = append(f.Geometry, g)
}

// Len returns the number of rows.
func (f *GeoFrame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.ID)
}

// Bound returns the envelope of all non-nil geometries.
// An empty frame returns the zero bound.
func (f *GeoFrame) Bound() orb.Bound {
	var (
		b     orb.Bound
		found bool
	)
	for _, g := range f.Geometry {
		if g == nil {
			continue
		}
		if !found {
			b = g.Bound()
			found = true
			continue
		}
		b = b.Union(g.Bound())
	}
	return b
}

// GeometryTypes returns the distinct geometry type names in first-seen order.
func (f *GeoFrame) GeometryTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, g := range f.Geometry {
		if g == nil {
			continue
		}
		name := g.GeoJSONType()
		if !seen[name] {
			seen[name] = true
			types = append(types, name)
		}
	}
	return types
}

// Intersects evaluates the intersects predicate of every row against b and
// returns the matching row positions.
func (f *GeoFrame) Intersects(b orb.Bound) *roaring64.Bitmap {
	sel := roaring64.New()
	for i, g := range f.Geometry {
		if Intersects(g, b) {
			sel.Add(uint64(i))
		}
	}
	return sel
}

// Take returns a new frame holding the selected rows in row order.
func (f *GeoFrame) Take(sel *roaring64.Bitmap) *GeoFrame {
	n := uint64(f.Len())
	out := WithCapacity(int(min(sel.GetCardinality(), n)))
	it := sel.Iterator()
	for it.HasNext() {
		i := it.Next()
		if i >= n {
			break
		}
		out.Append(f.ID[i], f.Geometry[i])
	}
	return out
}

// Filter returns the rows whose geometry intersects b.
func (f *GeoFrame) Filter(b orb.Bound) *GeoFrame {
	return f.Take(f.Intersects(b))
}
