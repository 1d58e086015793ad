package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrDegenerateCamera is returned when a camera basis cannot be built
var ErrDegenerateCamera = errors.New("degenerate camera")

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center      core.Vec3 // Eye position
	LookAt      core.Vec3 // Target point
	Up          core.Vec3 // World up; zero means +Y
	Width       int       // Image width in pixels
	AspectRatio float64   // Width / height
	VFov        float64   // Vertical field of view in degrees
}

// Height returns the image height implied by width and aspect ratio (at least 1)
func (c CameraConfig) Height() int {
	if c.AspectRatio <= 0 {
		return max(1, c.Width)
	}
	return max(1, int(float64(c.Width)/c.AspectRatio))
}

// MergeCameraConfig overlays the non-zero fields of override onto base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if !override.Center.IsZero() {
		result.Center = override.Center
	}
	if !override.LookAt.IsZero() {
		result.LookAt = override.LookAt
	}
	if !override.Up.IsZero() {
		result.Up = override.Up
	}
	if override.Width > 0 {
		result.Width = override.Width
	}
	if override.AspectRatio > 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov > 0 {
		result.VFov = override.VFov
	}
	return result
}

// Camera generates primary rays. It is immutable once built.
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	w               core.Vec3
}

// NewCamera derives the viewing basis from the configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if config.Up.IsZero() {
		config.Up = core.NewVec3(0, 1, 0)
	}
	if config.VFov <= 0 || config.VFov >= 180 {
		return nil, fmt.Errorf("%w: vertical fov %g must be in (0, 180)", ErrDegenerateCamera, config.VFov)
	}
	if config.AspectRatio <= 0 {
		return nil, fmt.Errorf("%w: aspect ratio %g must be positive", ErrDegenerateCamera, config.AspectRatio)
	}

	view := config.Center.Subtract(config.LookAt)
	if view.NearZero() {
		return nil, fmt.Errorf("%w: eye %v and target %v coincide", ErrDegenerateCamera, config.Center, config.LookAt)
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2.0 * math.Tan(theta/2)
	viewportWidth := config.AspectRatio * viewportHeight

	w := view.Normalize()
	side := config.Up.Cross(w)
	if side.NearZero() {
		return nil, fmt.Errorf("%w: up %v is parallel to the view direction", ErrDegenerateCamera, config.Up)
	}
	u := side.Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Divide(2)).
		Subtract(vertical.Divide(2)).
		Subtract(w)

	return &Camera{
		config:          config,
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		w:               w,
	}, nil
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1.
// (0, 0) is the bottom-left of the viewport.
func (c *Camera) GetRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction)
}

// GetCameraForward returns the unit view direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}
