package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// InspectResponse describes the first surface seen through a preview pixel
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	MaterialType string         `json:"materialType,omitempty"`
	GeometryType string         `json:"geometryType,omitempty"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	FrontFace    bool           `json:"frontFace"`
	Properties   map[string]any `json:"properties,omitempty"`
}

func vecJSON(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Color) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

func materialInfo(mat material.Material) (string, map[string]any) {
	properties := make(map[string]any)
	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vecJSON(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties
	case *material.Metal:
		properties["albedo"] = vecJSON(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties
	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		return "dielectric", properties
	case *material.DiffuseLight:
		properties["emission"] = vecJSON(m.Emission)
		properties["color"] = hexColor(m.Emission)
		return "diffuse_light", properties
	}
	return "unknown", properties
}

func geometryInfo(shape geometry.Shape) (string, map[string]any) {
	properties := make(map[string]any)
	switch g := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vecJSON(g.Center)
		properties["radius"] = g.Radius
		return "sphere", properties
	case *geometry.AxisRect:
		properties["plane"] = g.Plane.String()
		properties["a"] = [2]float64{g.A0, g.A1}
		properties["b"] = [2]float64{g.B0, g.B1}
		properties["k"] = g.K
		return "rect", properties
	}
	return "unknown", properties
}

// inspectPixel casts an unjittered ray through pixel (x, y), counted from the top-left
func inspectPixel(sc *scene.Scene, width, height, x, y int) InspectResponse {
	s := (float64(x) + 0.5) / float64(width)
	t := (float64(height-1-y) + 0.5) / float64(height)
	ray := sc.Camera.GetRay(s, t)

	hit, ok := sc.World.Hit(ray, integrator.MinHitDistance, math.Inf(1))
	if !ok {
		return InspectResponse{Hit: false}
	}

	resp := InspectResponse{
		Hit:        true,
		Point:      vecJSON(hit.Point),
		Normal:     vecJSON(hit.Normal),
		Distance:   hit.T,
		FrontFace:  hit.FrontFace,
		Properties: map[string]any{},
	}
	var materialProps map[string]any
	resp.MaterialType, materialProps = materialInfo(hit.Material)
	resp.Properties["material"] = materialProps

	// The world reports only the hit record, so find the shape that produced it.
	for _, shape := range sc.World.Shapes {
		if shapeHit, ok := shape.Hit(ray, integrator.MinHitDistance, hit.T); ok && shapeHit.T == hit.T {
			var geometryProps map[string]any
			resp.GeometryType, geometryProps = geometryInfo(shape)
			resp.Properties["geometry"] = geometryProps
			break
		}
	}
	return resp
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sc, width, height := s.current, s.width, s.height
	s.mu.Unlock()
	if sc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no scene is loaded"})
		return
	}

	x, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid x coordinate"})
		return
	}
	y, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid y coordinate"})
		return
	}
	if x < 0 || x >= width || y < 0 || y >= height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pixel coordinates out of bounds"})
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sc, width, height, x, y))
}
