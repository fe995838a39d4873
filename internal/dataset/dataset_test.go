package dataset

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_IDsAreSequential(t *testing.T) {
	for _, n := range []int{1, 2, 10, 1000} {
		f, err := Generate(n, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		require.Equal(t, n, f.Len())

		seen := make(map[int64]bool, n)
		for i, id := range f.ID {
			assert.Equal(t, int64(i), id)
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
	}
}

func TestGenerate_PointsWithinWorld(t *testing.T) {
	f, err := Generate(10000, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for i, g := range f.Geometry {
		p, ok := g.(orb.Point)
		require.True(t, ok, "row %d is %T", i, g)
		assert.GreaterOrEqual(t, p.Lon(), -180.0)
		assert.LessOrEqual(t, p.Lon(), 180.0)
		assert.GreaterOrEqual(t, p.Lat(), -90.0)
		assert.LessOrEqual(t, p.Lat(), 90.0)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(100, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	b, err := Generate(100, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, a.Geometry, b.Geometry)
}

func TestGenerate_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Generate(n, rand.New(rand.NewSource(1)))
		assert.ErrorIs(t, err, ErrInvalidCount)
	}
}

func TestGenerate_RegionDensity(t *testing.T) {
	region := orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}

	f, err := Generate(1000, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	count := 0
	for _, g := range f.Geometry {
		if region.Contains(g.(orb.Point)) {
			count++
		}
	}

	// Expected 1000 * (20/360) * (20/180) ≈ 6.2, standard deviation ≈ 2.5.
	assert.GreaterOrEqual(t, count, 1)
	assert.LessOrEqual(t, count, 25)
}

func TestNewRand(t *testing.T) {
	assert.Equal(t, NewRand(5).Int63(), NewRand(5).Int63())
	assert.NotNil(t, NewRand(0))
}
