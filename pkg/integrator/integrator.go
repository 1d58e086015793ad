package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// World is what an integrator needs from a scene: intersection and the escape colour
type World interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
	BackgroundColor(ray core.Ray) core.Color
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray
	RayColor(ray core.Ray, world World, sampler core.Sampler) core.Color
}
