package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// DiffuseLight represents a light-emitting material. It never scatters.
type DiffuseLight struct {
	Emission core.Color // Emitted light color/intensity
}

// NewDiffuseLight creates a new emissive material
func NewDiffuseLight(emission core.Color) *DiffuseLight {
	return &DiffuseLight{Emission: emission}
}

// Scatter always declines: light paths end at an emitter
func (e *DiffuseLight) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	return ScatterResult{}, false
}

// Emit returns the emitted light for this material
func (e *DiffuseLight) Emit() core.Color {
	return e.Emission
}

func (e *DiffuseLight) sealed() {}
