package geoparquet

import (
	"encoding/json"
	"fmt"
)

// MetadataKey is the parquet file metadata key holding the GeoParquet JSON.
const MetadataKey = "geo"

// Version is the GeoParquet specification version written by this package.
const Version = "1.0.0"

// EncodingWKB is the only geometry encoding this package reads and writes.
const EncodingWKB = "WKB"

// Metadata is the file-level "geo" metadata document.
type Metadata struct {
	Version       string                    `json:"version"`
	PrimaryColumn string                    `json:"primary_column"`
	Columns       map[string]ColumnMetadata `json:"columns"`
}

// ColumnMetadata describes one geometry column. A missing CRS means
// OGC:CRS84, i.e. longitude/latitude on WGS84.
type ColumnMetadata struct {
	Encoding      string          `json:"encoding"`
	GeometryTypes []string        `json:"geometry_types"`
	CRS           json.RawMessage `json:"crs,omitempty"`
	BBox          []float64       `json:"bbox,omitempty"`
}

func parseMetadata(raw string) (*Metadata, error) {
	var md Metadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeoMetadata, err)
	}

	if md.PrimaryColumn == "" {
		return nil, fmt.Errorf("%w: no primary column", ErrInvalidGeoMetadata)
	}

	col, ok := md.Columns[md.PrimaryColumn]
	if !ok {
		return nil, fmt.Errorf("%w: primary column %q not described", ErrInvalidGeoMetadata, md.PrimaryColumn)
	}

	if col.Encoding != EncodingWKB {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, col.Encoding)
	}

	return &md, nil
}
