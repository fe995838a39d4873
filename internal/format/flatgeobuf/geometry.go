package flatgeobuf

import (
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
)

// geometryType maps a frame geometry to its FlatGeobuf type.
// Only point geometries are stored; everything else is Unknown.
func geometryType(geom orb.Geometry) flattypes.GeometryType {
	switch geom.(type) {
	case orb.Point:
		return flattypes.GeometryTypePoint
	case orb.MultiPoint:
		return flattypes.GeometryTypeMultiPoint
	default:
		return flattypes.GeometryTypeUnknown
	}
}

// layerGeometryType returns the header geometry type for a set of geometries:
// the common type, or Unknown when they are mixed.
func layerGeometryType(geoms []orb.Geometry) (flattypes.GeometryType, error) {
	layer := flattypes.GeometryTypeUnknown
	mixed := false
	for i, g := range geoms {
		t := geometryType(g)
		if t == flattypes.GeometryTypeUnknown {
			return flattypes.GeometryTypeUnknown, ErrUnsupportedType
		}
		if i == 0 {
			layer = t
		} else if t != layer {
			mixed = true
		}
	}
	if mixed {
		return flattypes.GeometryTypeUnknown, nil
	}
	return layer, nil
}

// geometryToFGB converts a point geometry to a FlatGeobuf writer.Geometry.
func geometryToFGB(geom orb.Geometry, builder *flatbuffers.Builder) *writer.Geometry {
	g := writer.NewGeometry(builder)

	switch v := geom.(type) {
	case orb.Point:
		g.SetType(flattypes.GeometryTypePoint)
		g.SetXY([]float64{v[0], v[1]})

	case orb.MultiPoint:
		g.SetType(flattypes.GeometryTypeMultiPoint)
		xy := make([]float64, 0, len(v)*2)
		for _, p := range v {
			xy = append(xy, p[0], p[1])
		}
		g.SetXY(xy)

	default:
		return nil
	}

	return g
}

// geometryFromFGB converts a stored geometry back to orb. Features in a
// typed layer may omit their own type, so the layer type is the fallback.
func geometryFromFGB(fgbGeom *flattypes.Geometry, layer flattypes.GeometryType) orb.Geometry {
	if fgbGeom == nil {
		return nil
	}

	geomType := fgbGeom.Type()
	if geomType == flattypes.GeometryTypeUnknown {
		geomType = layer
	}

	xyLen := fgbGeom.XyLength()

	switch geomType {
	case flattypes.GeometryTypePoint:
		if xyLen < 2 {
			return nil
		}
		return orb.Point{fgbGeom.Xy(0), fgbGeom.Xy(1)}

	case flattypes.GeometryTypeMultiPoint:
		mp := make(orb.MultiPoint, 0, xyLen/2)
		for i := 0; i+1 < xyLen; i += 2 {
			mp = append(mp, orb.Point{fgbGeom.Xy(i), fgbGeom.Xy(i + 1)})
		}
		return mp

	default:
		return nil
	}
}
