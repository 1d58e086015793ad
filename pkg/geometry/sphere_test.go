package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grey = material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))

func TestSphere_HitStraightAhead(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, grey)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	require.True(t, isHit)
	assert.InDelta(t, 0.5, hit.T, 1e-9)
	assert.True(t, hit.FrontFace)
	assert.InDelta(t, 1.0, hit.Normal.Z, 1e-9)
	assert.Same(t, grey, hit.Material)
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, grey)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_ZeroDirection(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, grey)

	// From inside the sphere the quadratic degenerates to 0/0
	for _, origin := range []core.Vec3{core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 0)} {
		hit, isHit := sphere.Hit(core.NewRay(origin, core.Vec3{}), 0.001, math.Inf(1))
		assert.False(t, isHit, "origin %v", origin)
		assert.Nil(t, hit)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, grey)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected frontFace=%v, got %v", tt.expectedFront, hit.FrontFace)
			}
			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_IntervalSelectsFartherRoot(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -3), 1.0, grey)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 2.5, 10)
	require.True(t, isHit)
	assert.InDelta(t, 4.0, hit.T, 1e-9)

	_, isHit = sphere.Hit(ray, 0.001, 1.5)
	assert.False(t, isHit, "both roots lie beyond tMax")
}

func TestSphere_NegativeRadiusFlipsNormal(t *testing.T) {
	// The intersection distance is unchanged, only the outward normal flips.
	hollow := NewSphere(core.NewVec3(0, 0, -1), -0.45, grey)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hit, isHit := hollow.Hit(ray, 0.001, math.Inf(1))
	require.True(t, isHit)
	assert.InDelta(t, 0.55, hit.T, 1e-9)

	// Outward normal is (0,0,-1), along the ray, so the hit reads as a back face
	assert.False(t, hit.FrontFace)
	assert.InDelta(t, 1.0, hit.Normal.Z, 1e-9)
}
