package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boxScene = `// Scene: Box
CAM 278 278 -800 278 278 0 40
MAT white lambertian 0.73 0.73 0.73
MAT glow light 15 15 15
MAT glass dielectric 1 1 1 1.5
MAT chrome metal 0.8 0.8 0.9 0.1

OBJ rect white xz 0 555 0 555 0
OBJ rect glow xz 213 343 227 332 554
OBJ sphere glass 370 90 351 90
OBJ sphere chrome 185 82.5 169 82.5
BG 0.1 0.1 0.1
`

func TestParse_BoxScene(t *testing.T) {
	s, err := Parse(strings.NewReader(boxScene), Options{})
	require.NoError(t, err)

	assert.Equal(t, core.NewVec3(278, 278, -800), s.CameraConfig.Center)
	assert.Equal(t, core.NewVec3(278, 278, 0), s.CameraConfig.LookAt)
	assert.Equal(t, 40.0, s.CameraConfig.VFov)
	assert.Equal(t, 16.0/9.0, s.CameraConfig.AspectRatio)

	require.Len(t, s.World.Shapes, 4)

	floor, ok := s.World.Shapes[0].(*geometry.AxisRect)
	require.True(t, ok)
	assert.Equal(t, geometry.PlaneXZ, floor.Plane)
	assert.IsType(t, &material.Lambertian{}, floor.Material)

	light, ok := s.World.Shapes[1].(*geometry.AxisRect)
	require.True(t, ok)
	assert.Equal(t, core.NewColor(15, 15, 15), light.Material.Emit())

	glass, ok := s.World.Shapes[2].(*geometry.Sphere)
	require.True(t, ok)
	require.IsType(t, &material.Dielectric{}, glass.Material)
	assert.Equal(t, 1.5, glass.Material.(*material.Dielectric).RefractiveIndex)

	chrome := s.World.Shapes[3].(*geometry.Sphere)
	assert.Equal(t, 0.1, chrome.Material.(*material.Metal).Fuzz)

	assert.Equal(t, NewSolidBackground(core.NewColor(0.1, 0.1, 0.1)), s.World.Background)
}

func TestParse_Defaults(t *testing.T) {
	s, err := Parse(strings.NewReader("MAT m lambertian 1 1 1 // trailing tokens are not comments\n"), Options{})
	assert.Error(t, err, "MAT takes at most one extra value")
	assert.Nil(t, s)

	s, err = Parse(strings.NewReader("MAT m metal 1 1 1\nOBJ sphere m 0 0 5 1\n"), Options{})
	require.NoError(t, err)

	// No CAM: eye at the origin looking down +Z with a 90 degree fov
	assert.Equal(t, core.NewVec3(0, 0, 0), s.CameraConfig.Center)
	assert.Equal(t, core.NewVec3(0, 0, 1), s.CameraConfig.LookAt)
	assert.Equal(t, 90.0, s.CameraConfig.VFov)

	// Missing extra value defaults to 1, which the metal clamps to full fuzz
	sphere := s.World.Shapes[0].(*geometry.Sphere)
	assert.Equal(t, 1.0, sphere.Material.(*material.Metal).Fuzz)

	// No BG: black
	assert.Equal(t, core.Color{}, s.World.BackgroundColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))))
}

func TestParse_RepeatAndRanges(t *testing.T) {
	src := `MAT m lambertian 0.5 0.5 0.5
~ 5
OBJ sphere m -10_10 0 -5_-1 0.1_0.2
~ 0
OBJ sphere m 100 100 100 1
BG gradient 0.5 0.7 1 1 1 1
`
	s, err := Parse(strings.NewReader(src), Options{Seed: 7})
	require.NoError(t, err)
	require.Len(t, s.World.Shapes, 5, "~ 0 skips the following line")

	centers := make(map[core.Vec3]bool)
	for _, shape := range s.World.Shapes {
		sphere := shape.(*geometry.Sphere)
		assert.GreaterOrEqual(t, sphere.Center.X, -10.0)
		assert.LessOrEqual(t, sphere.Center.X, 10.0)
		assert.GreaterOrEqual(t, sphere.Center.Z, -5.0)
		assert.LessOrEqual(t, sphere.Center.Z, -1.0)
		assert.GreaterOrEqual(t, sphere.Radius, 0.1)
		assert.LessOrEqual(t, sphere.Radius, 0.2)
		centers[sphere.Center] = true
	}
	assert.Len(t, centers, 5, "ranges are drawn again on every repetition")

	assert.IsType(t, GradientBackground{}, s.World.Background)

	// Same seed, same scene
	again, err := Parse(strings.NewReader(src), Options{Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, s.World.Shapes[3].(*geometry.Sphere).Center, again.World.Shapes[3].(*geometry.Sphere).Center)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"unknown command", "\n\nFOO 1 2 3", "line 3: unknown command"},
		{"unknown material kind", "MAT m plastic 1 1 1", "unknown material kind"},
		{"undefined material", "OBJ sphere nope 0 0 0 1", "unknown material"},
		{"unknown object", "MAT m lambertian 1 1 1\nOBJ cube m 0 0 0 1", "line 2: unknown object kind"},
		{"bad plane", "MAT m lambertian 1 1 1\nOBJ rect m xx 0 1 0 1 0", "unknown plane"},
		{"degenerate rect", "MAT m lambertian 1 1 1\nOBJ rect m xy 1 0 0 1 0", "degenerate rectangle"},
		{"bad number", "CAM 0 0 0 0 0 one 90", "invalid number"},
		{"inverted range", "CAM 0 0 0 0 0 -1 90_10", "invalid range"},
		{"short camera", "CAM 0 0 0", "CAM wants 7 values"},
		{"dangling repeat", "~ 3", "repeat has no following line"},
		{"negative repeat", "~ -1\nBG 0 0 0", "invalid repeat count"},
		{"degenerate camera", "CAM 1 1 1 1 1 1 90", "degenerate camera"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Parse(strings.NewReader("OBJ sphere nope 0 0 0 1"), Options{})
	assert.ErrorIs(t, err, ErrUnknownMaterial)
	_, err = Parse(strings.NewReader("CAM 1 1 1 1 1 1 90"), Options{})
	assert.ErrorIs(t, err, geometry.ErrDegenerateCamera)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.scene")
	require.NoError(t, os.WriteFile(path, []byte(boxScene), 0o644))

	s, err := NewScene(path, Options{Camera: geometry.CameraConfig{Width: 200, AspectRatio: 1}})
	require.NoError(t, err)
	assert.Equal(t, "box", s.Name)
	assert.Equal(t, 200, s.CameraConfig.Width)
	assert.Equal(t, 200, s.CameraConfig.Height())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.scene"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile_BundledScenes(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "scenes", "*"+SceneFileExt))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadFile(path, Options{Seed: 1})
			require.NoError(t, err)
			assert.NotEmpty(t, s.World.Shapes)

			info, err := ParseSceneMetadata(path)
			require.NoError(t, err)
			assert.NotEmpty(t, info.Description)
		})
	}
}
