package frame

import (
	"github.com/paulmach/orb"
)

// Intersects reports whether g and the rectangle b share at least one point.
// Boundaries count: a point lying on an edge of b intersects it.
//
// Points and multipoints are tested exactly. Other geometry types are tested
// by envelope, which is exact for the point datasets this package is used for
// and a superset otherwise.
func Intersects(g orb.Geometry, b orb.Bound) bool {
	switch v := g.(type) {
	case nil:
		return false
	case orb.Point:
		return b.Contains(v)
	case orb.MultiPoint:
		for _, p := range v {
			if b.Contains(p) {
				return true
			}
		}
		return false
	case orb.Bound:
		return b.Intersects(v)
	default:
		return b.Intersects(g.Bound())
	}
}
