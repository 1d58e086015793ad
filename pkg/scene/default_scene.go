package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewDefaultScene creates the reference scene: a diffuse sphere resting on a large
// ground sphere, seen from the origin down -Z under a sky gradient.
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        90.0,
	}

	samplingConfig := SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        10,
	}

	world := NewWorld(NewSkyBackground())

	diffuse := material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))
	world.Add(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, diffuse),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, diffuse),
	)

	return newScene("default", defaultCameraConfig, samplingConfig, world, cameraOverrides)
}

// NewMaterialsScene shows every material side by side: a hollow glass shell on the
// left, a diffuse sphere in the centre and fuzzy gold metal on the right.
func NewMaterialsScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(-2, 2, 1),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        20.0,
	}

	samplingConfig := SamplingConfig{
		SamplesPerPixel: 200,
		MaxDepth:        50,
	}

	world := NewWorld(NewSkyBackground())

	ground := material.NewLambertian(core.NewColor(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewColor(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.5)
	gold := material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 0.3)
	silver := material.NewMetal(core.NewColor(0.8, 0.8, 0.8), 0.0)

	world.Add(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center),
		// Hollow shell: the negative radius flips the inner wall's normals
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, glass),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, gold),
		geometry.NewSphere(core.NewVec3(0.3, -0.35, -0.4), 0.15, silver),
	)

	return newScene("materials", defaultCameraConfig, samplingConfig, world, cameraOverrides)
}

// NewLightScene creates an emissive sphere that fills the whole frame on a black background
func NewLightScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       160,
		AspectRatio: 16.0 / 9.0,
		VFov:        90.0,
	}

	samplingConfig := SamplingConfig{
		SamplesPerPixel: 1,
		MaxDepth:        1,
	}

	world := NewWorld(NewSolidBackground(core.NewColor(0, 0, 0)))

	// The camera sits inside the sphere, so every primary ray strikes it
	light := material.NewDiffuseLight(core.NewColor(4, 2, 1))
	world.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 10, light))

	return newScene("light", defaultCameraConfig, samplingConfig, world, cameraOverrides)
}
