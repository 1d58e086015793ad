package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewCornellScene creates a classic Cornell box with rectangle walls and a ceiling light
func NewCornellScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(278, 278, -800), // Position camera outside the box looking in
		LookAt:      core.NewVec3(278, 278, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1.0,
		VFov:        40.0,
	}

	samplingConfig := SamplingConfig{
		SamplesPerPixel: 200,
		MaxDepth:        50,
	}

	world := NewWorld(NewSolidBackground(core.NewColor(0, 0, 0)))

	white := material.NewLambertian(core.NewColor(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewColor(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewColor(0.12, 0.45, 0.15))
	light := material.NewDiffuseLight(core.NewColor(15, 15, 15))

	// Standard 555 unit box
	const boxSize = 555.0
	walls := []struct {
		plane          geometry.Plane
		a0, a1, b0, b1 float64
		k              float64
		mat            material.Material
	}{
		{geometry.PlaneYZ, 0, boxSize, 0, boxSize, boxSize, green}, // right
		{geometry.PlaneYZ, 0, boxSize, 0, boxSize, 0, red},         // left
		{geometry.PlaneXZ, 213, 343, 227, 332, boxSize - 1, light}, // ceiling light
		{geometry.PlaneXZ, 0, boxSize, 0, boxSize, 0, white},       // floor
		{geometry.PlaneXZ, 0, boxSize, 0, boxSize, boxSize, white}, // ceiling
		{geometry.PlaneXY, 0, boxSize, 0, boxSize, boxSize, white}, // back
	}

	for _, w := range walls {
		rect, err := geometry.NewAxisRect(w.plane, w.a0, w.a1, w.b0, w.b1, w.k, w.mat)
		if err != nil {
			return nil, err
		}
		world.Add(rect)
	}

	world.Add(
		geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5, material.NewMetal(core.NewColor(0.8, 0.8, 0.9), 0.0)),
		geometry.NewSphere(core.NewVec3(370, 90, 351), 90, material.NewDielectric(1.5)),
	)

	return newScene("cornell", defaultCameraConfig, samplingConfig, world, cameraOverrides)
}
