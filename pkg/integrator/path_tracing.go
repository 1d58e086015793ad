package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// MinHitDistance keeps scattered rays from re-hitting the surface they left
const MinHitDistance = 0.001

// PathTracingIntegrator follows one scattered ray per bounce until it is absorbed,
// escapes, or runs out of bounces
type PathTracingIntegrator struct {
	maxDepth int
}

// NewPathTracingIntegrator creates a new path tracing integrator with a bounce budget
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{maxDepth: maxDepth}
}

// MaxDepth returns the bounce budget
func (pt *PathTracingIntegrator) MaxDepth() int {
	return pt.maxDepth
}

// RayColor computes the color for a single ray using the configured bounce budget
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world World, sampler core.Sampler) core.Color {
	return RayColor(ray, world, sampler, pt.maxDepth)
}

// RayColor returns emitted plus attenuated scattered light along ray. A path that
// runs out of bounces contributes black.
func RayColor(ray core.Ray, world World, sampler core.Sampler, depth int) core.Color {
	if depth <= 0 {
		return core.Color{}
	}

	hit, isHit := world.Hit(ray, MinHitDistance, math.Inf(1))
	if !isHit {
		return world.BackgroundColor(ray)
	}

	emitted := hit.Material.Emit()

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return emitted
	}

	return emitted.Add(scatter.Attenuation.MultiplyVec(
		RayColor(scatter.Scattered, world, sampler, depth-1)))
}
