package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Shape is the closed set of hittable primitives: Sphere and AxisRect.
// Hit reports the nearest intersection with t in [tMin, tMax]; it never fails.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)

	sealed()
}
