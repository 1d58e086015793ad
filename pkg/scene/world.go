package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// World is the ordered list of shapes a ray can strike plus the colour seen on a miss.
// It is read-only while rendering.
type World struct {
	Shapes     []geometry.Shape
	Background Background
}

// NewWorld creates an empty world with the given background; nil means black
func NewWorld(background Background) *World {
	if background == nil {
		background = SolidBackground{}
	}
	return &World{Background: background}
}

// Add appends shapes in order. Order only matters for equal-t ties.
func (w *World) Add(shapes ...geometry.Shape) {
	w.Shapes = append(w.Shapes, shapes...)
}

// Hit returns the nearest intersection in [tMin, tMax]
func (w *World) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closest *material.HitRecord
	closestSoFar := tMax

	for _, shape := range w.Shapes {
		hit, isHit := shape.Hit(ray, tMin, closestSoFar)
		// Bounds are inclusive, so an equal t must not displace an earlier shape
		if isHit && (closest == nil || hit.T < closestSoFar) {
			closest = hit
			closestSoFar = hit.T
		}
	}

	return closest, closest != nil
}

// BackgroundColor returns the colour for a ray that escaped the scene
func (w *World) BackgroundColor(ray core.Ray) core.Color {
	if w.Background == nil {
		return core.Color{}
	}
	return w.Background.Color(ray)
}
