package flatgeobuf

import (
	flatgeobuf "github.com/flatgeobuf/flatgeobuf/src/go"
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/paulmach/orb"

	"github.com/tingold/geobench/internal/frame"
)

// Reader provides read access to a FlatGeobuf file.
type Reader struct {
	fgb *flatgeobuf.FlatGeoBuf
}

// NewReader creates a reader from a file path.
// The file is memory-mapped.
func NewReader(path string) (*Reader, error) {
	fgb, err := flatgeobuf.New(path)
	if err != nil {
		return nil, err
	}

	return &Reader{fgb: fgb}, nil
}

// ReadAll reads every feature into a frame. Features come back in the
// index's Hilbert order, not write order.
//
// The underlying library can only enumerate features through the index, so
// files written without one return ErrNoIndex.
func (r *Reader) ReadAll() (*frame.GeoFrame, error) {
	h := r.fgb.Header()
	if h == nil {
		return nil, ErrInvalidData
	}

	// Without an index the header may also report zero features.
	if h.IndexNodeSize() == 0 {
		return nil, ErrNoIndex
	}

	if h.FeaturesCount() == 0 {
		return frame.WithCapacity(0), nil
	}

	if h.EnvelopeLength() < 4 {
		return nil, ErrInvalidData
	}

	return r.search(h, h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3))
}

func (r *Reader) search(h *flattypes.Header, minX, minY, maxX, maxY float64) (*frame.GeoFrame, error) {
	features, err := r.fgb.Search(minX, minY, maxX, maxY)
	if err != nil {
		return nil, err
	}

	out := frame.WithCapacity(len(features))
	for i, f := range features {
		id, geom := featureRow(f, h)
		if geom == nil {
			continue
		}
		if id < 0 {
			id = int64(i)
		}
		out.Append(id, geom)
	}

	return out, nil
}

// Close releases the reader. The library has no explicit close for the
// mapping; dropping the reference lets the finalizer unmap it.
func (r *Reader) Close() error {
	r.fgb = nil
	return nil
}

// featureRow extracts the id and geometry of a feature.
// The id is -1 when the feature has no id property.
func featureRow(f *flattypes.Feature, h *flattypes.Header) (int64, orb.Geometry) {
	if f == nil {
		return -1, nil
	}

	var geomObj flattypes.Geometry
	geom := geometryFromFGB(f.Geometry(&geomObj), h.GeometryType())
	if geom == nil {
		return -1, nil
	}

	propsLen := f.PropertiesLength()
	if propsLen == 0 {
		return -1, geom
	}

	props := make([]byte, propsLen)
	for i := 0; i < propsLen; i++ {
		props[i] = byte(f.Properties(i))
	}

	id, ok := decodeID(props, h)
	if !ok {
		return -1, geom
	}
	return id, geom
}
