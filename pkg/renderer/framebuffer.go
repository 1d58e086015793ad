package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Framebuffer holds the averaged linear colour of every pixel. Row j = 0 is the
// bottom of the image, matching camera screen coordinates.
type Framebuffer struct {
	width  int
	height int
	pixels []PixelStats
}

// NewFramebuffer creates an empty framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]PixelStats, width*height),
	}
}

// Width returns the framebuffer width in pixels
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the framebuffer height in pixels
func (fb *Framebuffer) Height() int { return fb.height }

// Pixel returns the accumulator for pixel (i, j), j counted from the bottom
func (fb *Framebuffer) Pixel(i, j int) *PixelStats {
	return &fb.pixels[j*fb.width+i]
}

// Color returns the averaged linear colour of pixel (i, j)
func (fb *Framebuffer) Color(i, j int) core.Color {
	return fb.Pixel(i, j).GetColor()
}

// Reset clears all accumulated samples
func (fb *Framebuffer) Reset() {
	clear(fb.pixels)
}

// ToRGB returns 3 bytes per pixel, row-major, top row first
func (fb *Framebuffer) ToRGB() []byte {
	rgb := make([]byte, 0, fb.width*fb.height*3)
	for row := 0; row < fb.height; row++ {
		j := fb.height - 1 - row
		for i := 0; i < fb.width; i++ {
			r, g, b := ColorToRGB(fb.Color(i, j))
			rgb = append(rgb, r, g, b)
		}
	}
	return rgb
}

// Image returns the framebuffer as an opaque image with the top row at y = 0
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for j := 0; j < fb.height; j++ {
		for i := 0; i < fb.width; i++ {
			r, g, b := ColorToRGB(fb.Color(i, j))
			img.SetRGBA(i, fb.height-1-j, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// ColorToRGB converts a linear colour to display bytes: gamma 2, clamp to [0, 1]
// and scale by 255.99. NaN channels become 0.
func ColorToRGB(c core.Color) (r, g, b uint8) {
	return channelToByte(c.X), channelToByte(c.Y), channelToByte(c.Z)
}

func channelToByte(v float64) uint8 {
	v = math.Sqrt(v)
	if math.IsNaN(v) {
		return 0
	}
	return uint8(255.99 * max(0, min(1, v)))
}

// Comparison summarises the per-channel byte differences against a reference image
type Comparison struct {
	MaxDiff  int     // Largest single channel difference
	MeanDiff float64 // Mean absolute channel difference
	Within   bool    // MeanDiff <= tolerance
}

// CompareTo compares the framebuffer's output bytes with a reference image of the
// same size. tolerance bounds the mean absolute channel difference.
func (fb *Framebuffer) CompareTo(ref image.Image, tolerance float64) (Comparison, error) {
	bounds := ref.Bounds()
	if bounds.Dx() != fb.width || bounds.Dy() != fb.height {
		return Comparison{}, fmt.Errorf("reference is %dx%d, render is %dx%d",
			bounds.Dx(), bounds.Dy(), fb.width, fb.height)
	}

	rgb := fb.ToRGB()
	var total int
	var result Comparison
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			c := color.RGBAModel.Convert(ref.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.RGBA)
			offset := (y*fb.width + x) * 3
			for k, refValue := range [3]uint8{c.R, c.G, c.B} {
				diff := absDiff(rgb[offset+k], refValue)
				total += diff
				result.MaxDiff = max(result.MaxDiff, diff)
			}
		}
	}

	if len(rgb) > 0 {
		result.MeanDiff = float64(total) / float64(len(rgb))
	}
	result.Within = result.MeanDiff <= tolerance
	return result, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
