package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Material is the closed set of surface responses: Lambertian, Metal, Dielectric and DiffuseLight.
// Materials are immutable after construction and may be shared by any number of shapes.
type Material interface {
	// Scatter decides whether the path continues. When it does, the result carries the
	// attenuation applied to light returning along the scattered ray.
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)

	// Emit returns the light emitted by the surface. Black for everything except DiffuseLight.
	Emit() core.Color

	sealed()
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray   // The scattered ray
	Attenuation core.Color // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal, always facing against the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the outward-facing side
	Material  Material  // Shared material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

var black = core.NewColor(0, 0, 0)
