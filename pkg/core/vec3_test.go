package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func assertVecInDelta(t *testing.T, expected, actual Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, delta, "X of %v", actual)
	assert.InDelta(t, expected.Y, actual.Y, delta, "Y of %v", actual)
	assert.InDelta(t, expected.Z, actual.Z, delta, "Z of %v", actual)
}

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	assert.Equal(t, NewVec3(5, -3, 9), a.Add(b))
	assert.Equal(t, NewVec3(-3, 7, -3), a.Subtract(b))
	assert.Equal(t, NewVec3(2, 4, 6), a.Multiply(2))
	assert.Equal(t, NewVec3(0.5, 1, 1.5), a.Divide(2))
	assert.Equal(t, NewVec3(4, -10, 18), a.MultiplyVec(b))
	assert.Equal(t, NewVec3(-1, -2, -3), a.Negate())
	assert.Equal(t, 12.0, a.Dot(b))
	assert.Equal(t, 14.0, a.LengthSquared())
	assert.InDelta(t, math.Sqrt(14), a.Length(), tolerance)
}

func TestVec3_Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	z := NewVec3(0, 0, 1)

	assert.Equal(t, z, x.Cross(y))
	assert.Equal(t, x, y.Cross(z))
	assert.Equal(t, y, z.Cross(x))
	assert.Equal(t, z.Negate(), y.Cross(x))
}

func TestVec3_NormalizeHasUnitLength(t *testing.T) {
	vectors := []Vec3{
		NewVec3(1, 0, 0),
		NewVec3(3, 4, 0),
		NewVec3(-2, 7, 0.5),
		NewVec3(1e-6, -1e-6, 1e-6),
		NewVec3(1e6, 2e6, -3e6),
	}

	for _, v := range vectors {
		assert.InDelta(t, 1.0, v.Normalize().Length(), 1e-12, "normalize(%v)", v)
	}

	assert.Equal(t, Vec3{}, Vec3{}.Normalize(), "zero vector has no direction")
}

func TestVec3_NearZero(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"zero", NewVec3(0, 0, 0), true},
		{"tiny", NewVec3(1e-9, -1e-9, 5e-9), true},
		{"one component large", NewVec3(1e-9, 1e-7, 0), false},
		{"unit", NewVec3(1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.v.NearZero())
		})
	}
}

func TestVec3_GammaAndClamp(t *testing.T) {
	c := NewColor(0.25, 4.0, 0.0).GammaCorrect(2.0)
	assertVecInDelta(t, NewColor(0.5, 2.0, 0.0), c, tolerance)

	clamped := c.Clamp(0, 1)
	assert.Equal(t, NewColor(0.5, 1.0, 0.0), clamped)

	assert.Equal(t, NewColor(0, 0, 1), NewColor(-3, 0, 7).Clamp(0, 1))
}

func TestReflect_IsInvolution(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 1, 0),
		NewVec3(1, 1, 0).Normalize(),
		NewVec3(-0.3, 0.2, 0.9).Normalize(),
	}
	vectors := []Vec3{
		NewVec3(1, -1, 0),
		NewVec3(0.2, 0.5, -3),
		NewVec3(-7, 0, 1),
	}

	for _, n := range normals {
		for _, v := range vectors {
			assertVecInDelta(t, v, Reflect(Reflect(v, n), n), 1e-12)
		}
	}
}

func TestReflect_MirrorsAboutNormal(t *testing.T) {
	v := NewVec3(1, -1, 0)
	n := NewVec3(0, 1, 0)
	assert.Equal(t, NewVec3(1, 1, 0), Reflect(v, n))
}

func TestRefract(t *testing.T) {
	n := NewVec3(0, 1, 0)

	t.Run("normal incidence passes straight through", func(t *testing.T) {
		uv := NewVec3(0, -1, 0)
		assertVecInDelta(t, uv, Refract(uv, n, 1.0/1.5), tolerance)
	})

	t.Run("equal indices do not bend", func(t *testing.T) {
		uv := NewVec3(1, -1, 0).Normalize()
		assertVecInDelta(t, uv, Refract(uv, n, 1.0), tolerance)
	})

	t.Run("obeys snell's law", func(t *testing.T) {
		ratio := 1.0 / 1.5
		uv := NewVec3(math.Sin(math.Pi/6), -math.Cos(math.Pi/6), 0)
		refracted := Refract(uv, n, ratio)

		sinIn := math.Sin(math.Pi / 6)
		sinOut := refracted.X / refracted.Length()
		assert.InDelta(t, ratio*sinIn, sinOut, 1e-12)
		assert.Less(t, refracted.Y, 0.0, "refracted ray continues into the surface")
	})
}
