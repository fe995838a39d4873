// Package dataset generates the synthetic point dataset used by the benchmark.
package dataset

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/paulmach/orb"

	"github.com/tingold/geobench/internal/frame"
)

// ErrInvalidCount is returned when the requested point count is not positive.
var ErrInvalidCount = errors.New("dataset: point count must be positive")

// World is the longitude/latitude domain points are drawn from.
var World = orb.Bound{
	Min: orb.Point{-180, -90},
	Max: orb.Point{180, 90},
}

// Generate returns n points drawn independently and uniformly from World.
// Row i has id i.
func Generate(n int, r *rand.Rand) (*frame.GeoFrame, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}

	ids := make([]int64, n)
	geoms := make([]orb.Geometry, n)
	for i := 0; i < n; i++ {
		ids[i] = int64(i)
		geoms[i] = randomPoint(r, World)
	}

	return frame.New(ids, geoms)
}

// NewRand returns a source for Generate. A zero seed picks a random one.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = rand.Int63()
	}
	return rand.New(rand.NewSource(seed))
}

func randomPoint(r *rand.Rand, b orb.Bound) orb.Point {
	x := b.Min[0] + r.Float64()*(b.Max[0]-b.Min[0])
	y := b.Min[1] + r.Float64()*(b.Max[1]-b.Min[1])
	return orb.Point{x, y}
}
