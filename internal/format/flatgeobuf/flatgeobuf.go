// Package flatgeobuf reads and writes point frames as FlatGeobuf files.
// Each feature carries its geometry and a Long "id" column.
package flatgeobuf

import (
	"errors"
)

// IDColumn is the name of the property column holding the record id.
const IDColumn = "id"

// Common errors returned by this package.
var (
	ErrEmpty           = errors.New("flatgeobuf: no features to write")
	ErrUnsupportedType = errors.New("flatgeobuf: unsupported geometry type")
	ErrInvalidData     = errors.New("flatgeobuf: invalid data")
	ErrNoIndex         = errors.New("flatgeobuf: file has no spatial index")
)

// CRS represents a coordinate reference system.
type CRS struct {
	Code        int    // EPSG code (e.g., 4326 for WGS84)
	Name        string // CRS name
	Description string
}

// WGS84 returns the standard WGS84 CRS (EPSG:4326).
func WGS84() *CRS {
	return &CRS{
		Code: 4326,
		Name: "WGS 84",
	}
}

// Options configures FlatGeobuf writing.
type Options struct {
	Name         string // Layer name
	Description  string // Layer description
	IncludeIndex bool   // Include packed R-tree; required by Reader.ReadAll
	CRS          *CRS
}

// DefaultOptions returns the options used for benchmark datasets.
func DefaultOptions() *Options {
	return &Options{
		Name:         "points",
		IncludeIndex: true,
		CRS:          WGS84(),
	}
}
