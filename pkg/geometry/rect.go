package geometry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ErrDegenerateRect is returned when a rectangle's bounds are inverted
var ErrDegenerateRect = errors.New("degenerate rectangle")

// Plane selects the orientation of an axis-aligned rectangle
type Plane int

const (
	PlaneXY Plane = iota // spans X and Y at fixed Z
	PlaneXZ              // spans X and Z at fixed Y
	PlaneYZ              // spans Y and Z at fixed X
)

// ParsePlane parses "xy", "xz" or "yz"
func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(s) {
	case "xy":
		return PlaneXY, nil
	case "xz":
		return PlaneXZ, nil
	case "yz":
		return PlaneYZ, nil
	}
	return 0, fmt.Errorf("unknown plane %q (want xy, xz or yz)", s)
}

// String returns the lowercase axis pair
func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "xy"
	case PlaneXZ:
		return "xz"
	case PlaneYZ:
		return "yz"
	}
	return fmt.Sprintf("Plane(%d)", int(p))
}

// axes returns the indices of the two in-plane axes and the fixed axis
func (p Plane) axes() (a, b, k int) {
	switch p {
	case PlaneXZ:
		return 0, 2, 1
	case PlaneYZ:
		return 1, 2, 0
	default:
		return 0, 1, 2
	}
}

// AxisRect is a rectangle lying in a coordinate plane at depth K, bounded by
// [A0, A1] on the first in-plane axis and [B0, B1] on the second.
type AxisRect struct {
	Plane    Plane
	A0, A1   float64
	B0, B1   float64
	K        float64
	Material material.Material

	normal core.Vec3
}

// NewAxisRect creates a new axis-aligned rectangle
func NewAxisRect(plane Plane, a0, a1, b0, b1, k float64, mat material.Material) (*AxisRect, error) {
	if a0 > a1 || b0 > b1 {
		return nil, fmt.Errorf("%w: %s bounds [%g,%g]x[%g,%g]", ErrDegenerateRect, plane, a0, a1, b0, b1)
	}

	var normal core.Vec3
	switch plane {
	case PlaneXY:
		normal = core.NewVec3(0, 0, 1)
	case PlaneXZ:
		normal = core.NewVec3(0, 1, 0)
	case PlaneYZ:
		normal = core.NewVec3(1, 0, 0)
	default:
		return nil, fmt.Errorf("%w: unknown plane %d", ErrDegenerateRect, int(plane))
	}

	return &AxisRect{
		Plane:    plane,
		A0:       a0,
		A1:       a1,
		B0:       b0,
		B1:       b1,
		K:        k,
		Material: mat,
		normal:   normal,
	}, nil
}

// Hit tests if a ray intersects with the rectangle
func (r *AxisRect) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	ia, ib, ik := r.Plane.axes()
	origin := components(ray.Origin)
	direction := components(ray.Direction)

	// Parallel rays never cross the plane
	if direction[ik] == 0 {
		return nil, false
	}

	t := (r.K - origin[ik]) / direction[ik]
	if t < tMin || t > tMax {
		return nil, false
	}

	a := origin[ia] + t*direction[ia]
	b := origin[ib] + t*direction[ib]
	if a < r.A0 || a > r.A1 || b < r.B0 || b > r.B1 {
		return nil, false
	}

	hitRecord := &material.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: r.Material,
	}
	hitRecord.SetFaceNormal(ray, r.normal)

	return hitRecord, true
}

func (r *AxisRect) sealed() {}

func components(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
