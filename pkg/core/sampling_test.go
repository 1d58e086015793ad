package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomSampler_Range(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(7)))
	for i := 0; i < 1000; i++ {
		v := sampler.Get1D()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestRandomSampler_Deterministic(t *testing.T) {
	a := NewSeededSampler(42)
	b := NewSeededSampler(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Get3D(), b.Get3D())
	}
}

func TestRandomVecBounded(t *testing.T) {
	sampler := NewSeededSampler(3)
	for i := 0; i < 1000; i++ {
		v := RandomVecBounded(sampler, -2, 5)
		for _, c := range []float64{v.X, v.Y, v.Z} {
			require.GreaterOrEqual(t, c, -2.0)
			require.Less(t, c, 5.0)
		}
	}
}

func TestRandomInUnitSphere(t *testing.T) {
	sampler := NewSeededSampler(11)
	var mean Vec3
	const n = 20000
	for i := 0; i < n; i++ {
		p := RandomInUnitSphere(sampler)
		require.Less(t, p.LengthSquared(), 1.0)
		mean = mean.Add(p)
	}

	// Uniform ball is centred on the origin
	mean = mean.Divide(n)
	assert.InDelta(t, 0, mean.X, 0.02)
	assert.InDelta(t, 0, mean.Y, 0.02)
	assert.InDelta(t, 0, mean.Z, 0.02)
}

func TestRandomInHemisphere(t *testing.T) {
	sampler := NewSeededSampler(5)
	normals := []Vec3{
		NewVec3(0, 1, 0),
		NewVec3(0, 0, -1),
		NewVec3(1, -1, 1).Normalize(),
	}

	for _, normal := range normals {
		for i := 0; i < 500; i++ {
			p := RandomInHemisphere(normal, sampler)
			assert.GreaterOrEqual(t, p.Dot(normal), 0.0)
			assert.LessOrEqual(t, p.LengthSquared(), 1.0)

			u := RandomUnitVectorInHemisphere(normal, sampler)
			assert.InDelta(t, 1.0, u.Length(), 1e-9)
			assert.GreaterOrEqual(t, u.Dot(normal), 0.0)
		}
	}
}
