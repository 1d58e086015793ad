package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Background is the colour policy for rays that miss every shape:
// SolidBackground or GradientBackground.
type Background interface {
	Color(ray core.Ray) core.Color

	sealed()
}

// SolidBackground returns the same colour in every direction
type SolidBackground struct {
	Value core.Color
}

// NewSolidBackground creates a constant background
func NewSolidBackground(c core.Color) SolidBackground {
	return SolidBackground{Value: c}
}

// Color returns the constant colour
func (b SolidBackground) Color(ray core.Ray) core.Color {
	return b.Value
}

func (b SolidBackground) sealed() {}

// GradientBackground blends from Bottom (looking straight down) to Top (straight up)
type GradientBackground struct {
	Top    core.Color
	Bottom core.Color
}

// NewGradientBackground creates a vertical sky gradient
func NewGradientBackground(top, bottom core.Color) GradientBackground {
	return GradientBackground{Top: top, Bottom: bottom}
}

// Color interpolates on the height of the unit ray direction
func (b GradientBackground) Color(ray core.Ray) core.Color {
	unitDirection := ray.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return b.Bottom.Multiply(1.0 - t).Add(b.Top.Multiply(t))
}

func (b GradientBackground) sealed() {}

// NewSkyBackground returns the white-to-blue sky used by the outdoor scenes
func NewSkyBackground() GradientBackground {
	return NewGradientBackground(core.NewColor(0.5, 0.7, 1.0), core.NewColor(1.0, 1.0, 1.0))
}
