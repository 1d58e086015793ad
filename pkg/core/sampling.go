package core

import (
	"math/rand"
)

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic source
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// RandomVec returns a vector with each component uniform in [0, 1)
func RandomVec(sampler Sampler) Vec3 {
	return sampler.Get3D()
}

// RandomVecBounded returns a vector with each component uniform in [min, max)
func RandomVecBounded(sampler Sampler, minVal, maxVal float64) Vec3 {
	u := sampler.Get3D()
	span := maxVal - minVal
	return Vec3{
		X: minVal + span*u.X,
		Y: minVal + span*u.Y,
		Z: minVal + span*u.Z,
	}
}

// RandomInUnitSphere returns a uniformly distributed point strictly inside the unit ball
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for {
		// Generate random point in [-1,1]³ cube, accept if inside the ball
		p := RandomVecBounded(sampler, -1, 1)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// RandomInHemisphere returns a point in the unit ball on the same side as normal
func RandomInHemisphere(normal Vec3, sampler Sampler) Vec3 {
	inUnitSphere := RandomInUnitSphere(sampler)
	if inUnitSphere.Dot(normal) > 0.0 {
		return inUnitSphere
	}
	return inUnitSphere.Negate()
}

// RandomUnitVectorInHemisphere returns a unit direction on the same side as normal
func RandomUnitVectorInHemisphere(normal Vec3, sampler Sampler) Vec3 {
	return RandomInHemisphere(normal, sampler).Normalize()
}
