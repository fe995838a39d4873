package flatgeobuf

import (
	"io"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/tingold/geobench/internal/frame"
)

// Write writes the frame as a FlatGeobuf layer. Every row becomes one
// feature with its id stored in the IDColumn property.
func Write(w io.Writer, f *frame.GeoFrame, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	if f.Len() == 0 {
		return ErrEmpty
	}

	geomType, err := layerGeometryType(f.Geometry)
	if err != nil {
		return err
	}

	builder := flatbuffers.NewBuilder(4096)

	header := writer.NewHeader(builder)
	header.SetGeometryType(geomType)

	if opts.Name != "" {
		header.SetName(opts.Name)
	}
	if opts.Description != "" {
		header.SetDescription(opts.Description)
	}

	col := writer.NewColumn(builder)
	col.SetName(IDColumn)
	col.SetTitle(IDColumn)
	col.SetType(flattypes.ColumnTypeLong)
	col.SetNullable(false)
	header.SetColumns([]*writer.Column{col})

	if opts.CRS != nil {
		crs := writer.NewCrs(builder)
		crs.SetOrg("EPSG")
		if opts.CRS.Code > 0 {
			crs.SetCode(int32(opts.CRS.Code))
		}
		if opts.CRS.Name != "" {
			crs.SetName(opts.CRS.Name)
		}
		if opts.CRS.Description != "" {
			crs.SetDescription(opts.CRS.Description)
		}
		header.SetCrs(crs)
	}

	gen := &frameFeatureGenerator{frame: f}

	_, err = writer.NewWriter(header, opts.IncludeIndex, gen, nil).Write(w)
	return err
}

// frameFeatureGenerator yields one feature per frame row.
type frameFeatureGenerator struct {
	frame *frame.GeoFrame
	index int
}

func (g *frameFeatureGenerator) Generate() *writer.Feature {
	for g.index < g.frame.Len() {
		i := g.index
		g.index++

		builder := flatbuffers.NewBuilder(256)
		fgbGeom := geometryToFGB(g.frame.Geometry[i], builder)
		if fgbGeom == nil {
			continue
		}

		feature := writer.NewFeature(builder)
		feature.SetGeometry(fgbGeom)
		feature.SetProperties(encodeID(g.frame.ID[i], 0))
		return feature
	}

	return nil
}
